package mutate

import (
	"reflect"
	"testing"

	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/model"
)

func clump(id int, link model.Link) model.Clump {
	return model.Clump{ID: id, Name: "c", Link: link}
}

func ids(clumps []model.Clump) []int {
	out := make([]int, 0, len(clumps))
	for _, c := range clumps {
		out = append(out, c.ID)
	}
	return out
}

func find(t *testing.T, clumps []model.Clump, id int) model.Clump {
	t.Helper()
	for _, c := range clumps {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("clump %d missing from %v", id, ids(clumps))
	return model.Clump{}
}

func assertIDs(t *testing.T, clumps []model.Clump, want []int) {
	t.Helper()
	if got := ids(clumps); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order:\n got %v\nwant %v", got, want)
	}
}

// assertPlacedByLinks builds clumps and checks every clump sits where its link
// says: right of its left parent in the same row, or lower in its above
// parent's column.
func assertPlacedByLinks(t *testing.T, clumps []model.Clump) *grid.Grid {
	t.Helper()
	g, idx, err := grid.Build(clumps)
	if err != nil {
		t.Fatalf("Build(%v): %v", ids(clumps), err)
	}
	for _, c := range clumps {
		r, col, ok := g.Find(c.ID)
		if !ok {
			t.Fatalf("clump %d not placed", c.ID)
		}
		if idx[c.ID] != col {
			t.Fatalf("clump %d: index says column %d, grid says %d", c.ID, idx[c.ID], col)
		}
		if c.Link.IsRoot() {
			if r != 1 || col != 1 {
				t.Fatalf("root at (%d,%d)", r, col)
			}
			continue
		}
		pr, pc, ok := g.Find(c.Link.Parent)
		if !ok {
			t.Fatalf("parent %d of %d not placed", c.Link.Parent, c.ID)
		}
		switch c.Link.Kind {
		case model.LinkLeft:
			if r != pr || col != pc+1 {
				t.Fatalf("clump %d at (%d,%d), left parent %d at (%d,%d)", c.ID, r, col, c.Link.Parent, pr, pc)
			}
		case model.LinkAbove:
			if col != pc || r <= pr {
				t.Fatalf("clump %d at (%d,%d), above parent %d at (%d,%d)", c.ID, r, col, c.Link.Parent, pr, pc)
			}
		}
	}
	return g
}

func scenario3() []model.Clump {
	return []model.Clump{
		clump(1, model.Root()),
		clump(2, model.Below(1)),
		clump(3, model.LeftOf(2)),
	}
}

//	1  2  3  .
//	.  .  5  7
//	.  4  .  .
//	.  6  .  .
//	8  9  .  .
//	.  10 .  .
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
