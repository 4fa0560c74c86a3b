package subopt

import "testing"

func TestIndexBlocksRecordedCells(t *testing.T) {
	idx := New()
	if idx.Find(5, 5) {
		t.Fatal("empty index should block nothing")
	}
	idx.AddAlignment([][2]int{{3, 4}, {4, 5}, {5, 6}})
	if !idx.Find(4, 5) {
		t.Fatal("expected (4,5) to be blocked")
	}
	if idx.Find(4, 4) {
		t.Fatal("(4,4) was never recorded, should not be blocked")
	}
}

func TestIndexAccumulatesAcrossAlignments(t *testing.T) {
	idx := New()
	idx.AddAlignment([][2]int{{0, 0}})
	idx.AddAlignment([][2]int{{10, 10}})
	if !idx.Find(0, 0) || !idx.Find(10, 10) {
		t.Fatal("both alignments' cells should remain blocked")
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 recorded cells, got %d", idx.Len())
	}
}

func TestOverlapsAlignment(t *testing.T) {
	idx := New()
	idx.AddAlignment([][2]int{{20, 30}})
	if !idx.OverlapsAlignment(15, 25, 25, 35) {
		t.Fatal("expected rectangle to overlap the blocked cell")
	}
	if idx.OverlapsAlignment(0, 5, 0, 5) {
		t.Fatal("rectangle far from the blocked cell should not overlap")
	}
}

func TestRowViewMatchesIndex(t *testing.T) {
	idx := New()
	idx.AddAlignment([][2]int{{7, 100}, {8, 100}})
	row := idx.Row()
	row.SetRow(100)
	if !row.IsBlocked(7) || !row.IsBlocked(8) {
		t.Fatal("expected both query positions blocked on row 100")
	}
	if row.IsBlocked(9) {
		t.Fatal("query position 9 was never blocked on row 100")
	}
	row.SetRow(101)
	if row.IsBlocked(7) {
		t.Fatal("row 101 should have nothing blocked")
	}
}
