package main

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/gam"
	"github.com/katalvlaran/gappedaligner/internal/models"
)

var dnaModelsByName = map[string]models.ModelType{
	models.Ungapped.String():           models.Ungapped,
	models.AffineLocal.String():        models.AffineLocal,
	models.AffineGlobal.String():       models.AffineGlobal,
	models.AffineEndsFreeQuery.String(): models.AffineEndsFreeQuery,
	models.Est2Genome.String():         models.Est2Genome,
	models.NER.String():                models.NER,
}

// parseModel resolves the --model flag to a models.ModelType, restricted to
// the DNA/DNA models: the codon-aware model types need a translation table,
// which is out of scope for this demo (see package doc comment).
func parseModel(name string) (models.ModelType, error) {
	t, ok := dnaModelsByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown or unsupported --model %q (supported: ungapped, affine:local, affine:global, affine:bestfit, est2genome, ner)", name)
	}
	return t, nil
}

func parseRefinement(name string) (gam.RefineMode, error) {
	switch name {
	case "none":
		return gam.RefineNone, nil
	case "region":
		return gam.RefineRegion, nil
	case "full":
		return gam.RefineFull, nil
	default:
		return 0, fmt.Errorf("unknown --refine %q (supported: none, region, full)", name)
	}
}
