package grid

import (
	"errors"
	"reflect"
	"testing"

	"dataflow-cli/internal/model"
)

func clump(id int, link model.Link) model.Clump {
	return model.Clump{ID: id, Name: "c", Link: link}
}

func mustBuild(t *testing.T, clumps []model.Clump) (*Grid, ColumnIndex) {
	t.Helper()
	g, idx, err := Build(clumps)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g, idx
}

func assertCells(t *testing.T, g *Grid, want [][]int) {
	t.Helper()
	if got := g.Cells(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected grid:\n got %v\nwant %v", got, want)
	}
}

func scenario3() []model.Clump {
	return []model.Clump{
		clump(1, model.Root()),
		clump(2, model.Below(1)),
		clump(3, model.LeftOf(2)),
	}
}

func TestBuild_Scenarios(t *testing.T) {
	g, idx := mustBuild(t, scenario3()[:1])
	assertCells(t, g, [][]int{{1}})
	if !reflect.DeepEqual(idx, ColumnIndex{1: 1}) {
		t.Fatalf("unexpected index: %v", idx)
	}

	g, _ = mustBuild(t, scenario3()[:2])
	assertCells(t, g, [][]int{{1}, {2}})

	g, idx = mustBuild(t, scenario3())
	assertCells(t, g, [][]int{{1, 0}, {2, 3}})
	if idx[3] != 2 {
		t.Fatalf("expected clump 3 in column 2, got %d", idx[3])
	}

	g, _ = mustBuild(t, append(scenario3(), clump(4, model.Below(1))))
	assertCells(t, g, [][]int{{1, 0}, {2, 3}, {4, 0}})
}

func TestBuild_Empty(t *testing.T) {
	g, idx := mustBuild(t, nil)
	if g.Rows() != 0 || g.Columns() != 1 {
		t.Fatalf("expected 0x1 grid, got %dx%d", g.Rows(), g.Columns())
	}
	if len(idx) != 0 {
		t.Fatalf("expected empty index, got %v", idx)
	}
}

func TestBuild_LastColumnInsertsBelowLastEntry(t *testing.T) {
	g, _ := mustBuild(t, []model.Clump{
		clump(1, model.Root()),
		clump(2, model.LeftOf(1)),
		clump(3, model.Below(1)),
		clump(4, model.Below(2)),
	})
	// 4 lands directly under 2, pushing the row holding 3 down.
	assertCells(t, g, [][]int{{1, 2}, {0, 4}, {3, 0}})
}

func TestBuild_MiddleColumnClearsRightHandRows(t *testing.T) {
	g, _ := mustBuild(t, []model.Clump{
		clump(1, model.Root()),
		clump(2, model.LeftOf(1)),
		clump(3, model.LeftOf(2)),
		clump(4, model.Below(3)),
		clump(5, model.Below(4)),
		clump(6, model.Below(2)),
	})
	assertCells(t, g, [][]int{
		{1, 2, 3},
		{0, 0, 4},
		{0, 0, 5},
		{0, 6, 0},
	})
}

func TestBuild_LeftLinkAppendsColumn(t *testing.T) {
	g, idx := mustBuild(t, []model.Clump{
		clump(1, model.Root()),
		clump(2, model.LeftOf(1)),
		clump(3, model.Below(2)),
		clump(4, model.LeftOf(3)),
	})
	assertCells(t, g, [][]int{{1, 2, 0}, {0, 3, 4}})
	if idx[4] != 3 {
		t.Fatalf("expected clump 4 in column 3, got %d", idx[4])
	}
}

func TestBuild_InvariantViolations(t *testing.T) {
	cases := map[string][]model.Clump{
		"missing left parent":  {clump(1, model.Root()), clump(2, model.LeftOf(9))},
		"missing above parent": {clump(1, model.Root()), clump(2, model.Below(9))},
		"parent placed later":  {clump(1, model.Root()), clump(2, model.Below(3)), clump(3, model.Below(1))},
		"occupied right slot":  {clump(1, model.Root()), clump(2, model.LeftOf(1)), clump(3, model.LeftOf(1))},
		"duplicate id":         {clump(1, model.Root()), clump(1, model.Below(1))},
		"non-positive id":      {clump(0, model.Root())},
	}
	for name, clumps := range cases {
		g, idx, err := Build(clumps)
		if err == nil {
			t.Fatalf("%s: expected error, got grid %v", name, g.Cells())
		}
		if !errors.Is(err, ErrInvariant) {
			t.Fatalf("%s: expected ErrInvariant, got %v", name, err)
		}
		var pe *PlacementError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected *PlacementError, got %T", name, err)
		}
		if g != nil || idx != nil {
			t.Fatalf("%s: expected no partial result", name)
		}
	}
}

func complexStore() []model.Clump {
	return []model.Clump{
		clump(1, model.Root()),
		clump(2, model.LeftOf(1)),
		clump(3, model.LeftOf(2)),
		clump(4, model.Below(2)),
		clump(5, model.Below(3)),
		clump(6, model.Below(4)),
		clump(7, model.LeftOf(5)),
		clump(8, model.Below(1)),
		clump(9, model.LeftOf(8)),
		clump(10, model.Below(9)),
	}
}

func TestBuild_IdempotentAndRectangular(t *testing.T) {
	clumps := complexStore()
	g1, idx1 := mustBuild(t, clumps)
	g2, idx2 := mustBuild(t, clumps)
	if !g1.Equal(g2) {
		t.Fatalf("rebuild differs:\n%s\n--\n%s", g1, g2)
	}
	if !reflect.DeepEqual(idx1, idx2) {
		t.Fatalf("index differs: %v vs %v", idx1, idx2)
	}
	for i, row := range g1.Cells() {
		if len(row) != g1.Columns() {
			t.Fatalf("row %d has %d cells, want %d", i+1, len(row), g1.Columns())
		}
	}
}

func TestBuild_ColumnMonotonicity(t *testing.T) {
	clumps := complexStore()
	g, idx := mustBuild(t, clumps)
	for _, c := range clumps {
		want := 1
		switch c.Link.Kind {
		case model.LinkLeft:
			want = idx[c.Link.Parent] + 1
		case model.LinkAbove:
			want = idx[c.Link.Parent]
		}
		if idx[c.ID] != want {
			t.Fatalf("clump %d: column %d, want %d", c.ID, idx[c.ID], want)
		}
		if _, col, ok := g.Find(c.ID); !ok || col != idx[c.ID] {
			t.Fatalf("clump %d: grid column %d (found=%v), index column %d", c.ID, col, ok, idx[c.ID])
		}
	}
}

func TestBuild_LeftLinkedSharesParentRow(t *testing.T) {
	clumps := complexStore()
	g, _ := mustBuild(t, clumps)
	for _, c := range clumps {
		if c.Link.Kind != model.LinkLeft {
			continue
		}
		r, _, _ := g.Find(c.ID)
		pr, _, _ := g.Find(c.Link.Parent)
		if r != pr {
			t.Fatalf("clump %d on row %d, parent %d on row %d", c.ID, r, c.Link.Parent, pr)
		}
		if g.RightOf(c.Link.Parent) != c.ID {
			t.Fatalf("expected %d right of %d", c.ID, c.Link.Parent)
		}
	}
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	clumps := complexStore()
	before := append([]model.Clump(nil), clumps...)
	mustBuild(t, clumps)
	if !reflect.DeepEqual(before, clumps) {
		t.Fatalf("input mutated")
	}
}

func TestQueries(t *testing.T) {
	g, _ := mustBuild(t, scenario3())

	if g.Rows() != 2 || g.Columns() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", g.Rows(), g.Columns())
	}
	if got := g.LastInColumn(1); got != 2 {
		t.Fatalf("LastInColumn(1)=%d, want 2", got)
	}
	if got := g.LastInColumn(2); got != 3 {
		t.Fatalf("LastInColumn(2)=%d, want 3", got)
	}
	if got := g.LastInColumn(7); got != 0 {
		t.Fatalf("LastInColumn(7)=%d, want 0", got)
	}
	if got := g.Below(1); got != 2 {
		t.Fatalf("Below(1)=%d, want 2", got)
	}
	if got := g.Below(2); got != 0 {
		t.Fatalf("Below(2)=%d, want 0 at bottom edge", got)
	}
	if got := g.Below(42); got != 0 {
		t.Fatalf("Below(42)=%d, want 0 for unknown id", got)
	}
	if got := g.RightOf(2); got != 3 {
		t.Fatalf("RightOf(2)=%d, want 3", got)
	}
	if got := g.RightOf(3); got != 0 {
		t.Fatalf("RightOf(3)=%d, want 0", got)
	}
	if p, ok := g.ColumnParent(2); !ok || p != 3 {
		t.Fatalf("ColumnParent(2)=%d,%v want 3,true", p, ok)
	}
	if _, ok := g.ColumnParent(3); ok {
		t.Fatalf("expected no parent for column outside the grid")
	}
	if got := g.At(0, 1); got != 0 {
		t.Fatalf("At out of bounds = %d", got)
	}

	cells := g.Cells()
	cells[0][0] = 99
	if g.At(1, 1) != 1 {
		t.Fatalf("Cells must return a copy")
	}
}
