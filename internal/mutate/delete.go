package mutate

import (
	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/model"
)

// Delete removes id from the list. A clump hanging directly below it takes
// over its link, so the vertical chain stays connected. A clump linked to its
// right is NOT repaired and keeps pointing at the removed id; DeleteClump
// refuses that case instead. Returns the new list and the highest remaining id.
func Delete(clumps []model.Clump, id int) ([]model.Clump, int, error) {
	at := indexOf(clumps, id)
	if at < 0 {
		return nil, 0, NotFoundError{Kind: "clump", ID: id}
	}
	gone := clumps[at]
	if gone.Link.IsRoot() {
		return nil, 0, ErrRootDelete
	}

	follower := grid.DirectlyBelow(clumps, id)
	out := make([]model.Clump, 0, len(clumps)-1)
	highest := 0
	for i, c := range clumps {
		if i == at {
			continue
		}
		if c.ID == follower {
			c.Link = gone.Link
		}
		highest = max(highest, c.ID)
		out = append(out, c)
	}
	return out, highest, nil
}
