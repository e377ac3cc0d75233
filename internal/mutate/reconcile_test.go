package mutate

import (
	"errors"
	"reflect"
	"testing"

	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/model"
)

func TestReconcile_FirstClump(t *testing.T) {
	out, err := Reconcile(nil, clump(1, model.Root()), nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1})

	if _, err := Reconcile(nil, clump(1, model.Below(7)), nil); !errors.As(err, new(NotFoundError)) {
		t.Fatalf("expected NotFoundError for linked first clump, got %v", err)
	}
}

func TestReconcile_BuildsScenarios(t *testing.T) {
	var clumps []model.Clump
	for _, c := range scenario3() {
		var err error
		clumps, err = Reconcile(clumps, c, nil)
		if err != nil {
			t.Fatalf("add %d: %v", c.ID, err)
		}
	}
	assertIDs(t, clumps, []int{1, 2, 3})
	g := assertPlacedByLinks(t, clumps)
	if want := [][]int{{1, 0}, {2, 3}}; !reflect.DeepEqual(g.Cells(), want) {
		t.Fatalf("unexpected grid %v", g.Cells())
	}
}

func TestReconcile_AddBelowSplicesBetweenParentAndSibling(t *testing.T) {
	out, err := Reconcile(scenario3(), clump(4, model.Below(1)), nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 4, 2, 3})
	if got := find(t, out, 2).Link; got != model.Below(4) {
		t.Fatalf("expected 2 re-pointed below 4, got %s", got)
	}
	g := assertPlacedByLinks(t, out)
	if want := [][]int{{1, 0}, {4, 0}, {2, 3}}; !reflect.DeepEqual(g.Cells(), want) {
		t.Fatalf("unexpected grid %v", g.Cells())
	}
}

func TestReconcile_AddBelowMiddleOfChain(t *testing.T) {
	out, err := Reconcile(complexStore(), clump(11, model.Below(2)), nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 11, 3, 4, 5, 6, 7, 8, 9, 10})
	if got := find(t, out, 4).Link; got != model.Below(11) {
		t.Fatalf("expected 4 below 11, got %s", got)
	}
	g := assertPlacedByLinks(t, out)
	want := [][]int{
		{1, 2, 3, 0},
		{0, 0, 5, 7},
		{0, 11, 0, 0},
		{0, 4, 0, 0},
		{0, 6, 0, 0},
		{8, 9, 0, 0},
		{0, 10, 0, 0},
	}
	if !reflect.DeepEqual(g.Cells(), want) {
		t.Fatalf("unexpected grid:\n got %v\nwant %v", g.Cells(), want)
	}
}

func TestReconcile_AddRightOf(t *testing.T) {
	out, err := Reconcile(complexStore(), clump(11, model.LeftOf(6)), nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 3, 4, 5, 6, 11, 7, 8, 9, 10})
	g := assertPlacedByLinks(t, out)
	if r, c, _ := g.Find(11); r != 4 || c != 3 {
		t.Fatalf("expected 11 at (4,3), got (%d,%d)", r, c)
	}
}

func TestReconcile_EditInPlace(t *testing.T) {
	in := complexStore()
	orig := in[4]
	upd := orig
	upd.Name = "renamed"
	upd.Code = "x := 1"
	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, ids(in))
	if out[4].Name != "renamed" || out[4].Code != "x := 1" {
		t.Fatalf("edit not applied: %+v", out[4])
	}
	if in[4].Name != "c" {
		t.Fatalf("input modified: %+v", in[4])
	}
}

func TestReconcile_RelinkBelowMovesChainAndRightSubtree(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 4)
	upd := orig
	upd.Link = model.Below(8)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 3, 5, 7, 8, 4, 6, 9, 10})
	g := assertPlacedByLinks(t, out)
	want := [][]int{
		{1, 2, 3, 0},
		{0, 0, 5, 7},
		{8, 9, 0, 0},
		{0, 10, 0, 0},
		{4, 0, 0, 0},
		{6, 0, 0, 0},
	}
	if !reflect.DeepEqual(g.Cells(), want) {
		t.Fatalf("unexpected grid:\n got %v\nwant %v", g.Cells(), want)
	}
}

func TestReconcile_RelinkBelowBringsRightNeighbour(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 8)
	upd := orig
	upd.Link = model.Below(2)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	// 9 and 10 hang off 8 and travel with it; 4 used to sit below 2.
	assertIDs(t, out, []int{1, 2, 8, 9, 10, 3, 4, 5, 6, 7})
	if got := find(t, out, 4).Link; got != model.Below(8) {
		t.Fatalf("expected 4 re-pointed below 8, got %s", got)
	}
	assertPlacedByLinks(t, out)
}

func TestReconcile_RelinkBelowKeepsChainOrder(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 5)
	upd := orig
	upd.Link = model.Below(4)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 3, 4, 5, 7, 6, 8, 9, 10})
	if got := find(t, out, 6).Link; got != model.Below(5) {
		t.Fatalf("expected 6 re-pointed below 5, got %s", got)
	}
	g := assertPlacedByLinks(t, out)
	if g.Columns() != 3 {
		t.Fatalf("expected column 4 to disappear, got %d columns", g.Columns())
	}
}

func TestReconcile_RelinkRightOfMovesFullTail(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 9)
	upd := orig
	upd.Link = model.LeftOf(6)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 3, 4, 5, 6, 9, 10, 7, 8})
	g := assertPlacedByLinks(t, out)
	want := [][]int{
		{1, 2, 3, 0},
		{0, 0, 5, 7},
		{0, 4, 0, 0},
		{0, 6, 9, 0},
		{0, 0, 10, 0},
		{8, 0, 0, 0},
	}
	if !reflect.DeepEqual(g.Cells(), want) {
		t.Fatalf("unexpected grid:\n got %v\nwant %v", g.Cells(), want)
	}
}

func TestReconcile_RelinkRightOfGrowsColumns(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 10)
	upd := orig
	upd.Link = model.LeftOf(7)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	assertIDs(t, out, []int{1, 2, 3, 4, 5, 6, 7, 10, 8, 9})
	g := assertPlacedByLinks(t, out)
	if g.Columns() != 5 || g.Rows() != 5 {
		t.Fatalf("expected 5x5 grid, got %dx%d", g.Rows(), g.Columns())
	}
}

func TestReconcile_NoDataLossOnRelink(t *testing.T) {
	in := complexStore()
	orig := find(t, in, 3)
	upd := orig
	upd.Link = model.LeftOf(10)
	below := grid.IDsBelow(in, 3)

	out, err := Reconcile(in, upd, &orig)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d clumps, got %d", len(in), len(out))
	}
	seen := map[int]int{}
	pos := map[int]int{}
	for i, c := range out {
		seen[c.ID]++
		pos[c.ID] = i
	}
	for _, c := range in {
		if seen[c.ID] != 1 {
			t.Fatalf("clump %d appears %d times", c.ID, seen[c.ID])
		}
	}
	for i := 1; i < len(below); i++ {
		if pos[below[i-1]] > pos[below[i]] {
			t.Fatalf("below-chain %v out of order in %v", below, ids(out))
		}
	}
	assertPlacedByLinks(t, out)
}

// Every legal relink of every clump must replay cleanly.
func TestReconcile_EveryRelinkRoundTrips(t *testing.T) {
	in := complexStore()
	ok := 0
	for _, c := range in[1:] {
		for p := 1; p <= len(in); p++ {
			for _, link := range []model.Link{model.LeftOf(p), model.Below(p)} {
				orig := c
				upd := c
				upd.Link = link
				out, err := Reconcile(in, upd, &orig)
				if err != nil {
					if !errors.Is(err, ErrCycle) && !errors.Is(err, ErrSlotTaken) {
						t.Fatalf("relink %d to %s: unexpected error %v", c.ID, link, err)
					}
					continue
				}
				ok++
				if len(out) != len(in) {
					t.Fatalf("relink %d to %s lost clumps: %v", c.ID, link, ids(out))
				}
				assertPlacedByLinks(t, out)
			}
		}
	}
	if ok == 0 {
		t.Fatalf("no relink succeeded")
	}
}

func TestReconcile_Errors(t *testing.T) {
	in := complexStore()
	edit := func(id int, link model.Link) (model.Clump, *model.Clump) {
		orig := find(t, in, id)
		upd := orig
		upd.Link = link
		return upd, &orig
	}

	upd, orig := edit(2, model.Below(6))
	if _, err := Reconcile(in, upd, orig); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	upd, orig = edit(4, model.Below(4))
	if _, err := Reconcile(in, upd, orig); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle for self link, got %v", err)
	}
	if _, err := Reconcile(in, clump(11, model.LeftOf(1)), nil); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	var nf NotFoundError
	if _, err := Reconcile(in, clump(11, model.Below(42)), nil); !errors.As(err, &nf) || nf.ID != 42 {
		t.Fatalf("expected NotFoundError for 42, got %v", err)
	}
	ghost := clump(99, model.Below(1))
	if _, err := Reconcile(in, ghost, &ghost); !errors.As(err, &nf) || nf.ID != 99 {
		t.Fatalf("expected NotFoundError for 99, got %v", err)
	}
	if _, err := Reconcile(in, clump(5, model.Below(1)), nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := Reconcile(in, clump(11, model.Root()), nil); !errors.Is(err, grid.ErrInvariant) {
		t.Fatalf("expected invariant error for a second root, got %v", err)
	}
	upd, orig = edit(1, model.Below(8))
	if _, err := Reconcile(in, upd, orig); !errors.Is(err, grid.ErrInvariant) {
		t.Fatalf("expected invariant error relinking the root, got %v", err)
	}
}

func TestReconcile_DoesNotModifyInput(t *testing.T) {
	in := complexStore()
	before := append([]model.Clump(nil), in...)
	orig := find(t, in, 8)
	upd := orig
	upd.Link = model.Below(2)
	if _, err := Reconcile(in, upd, &orig); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !reflect.DeepEqual(in, before) {
		t.Fatalf("input modified:\n got %v\nwant %v", in, before)
	}
}
