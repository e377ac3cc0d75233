package mutate

import (
	"fmt"

	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/model"
)

// Reconcile returns a new ordered clump list in which upd is inserted (orig ==
// nil) or updated (orig is the previous version of the same clump). When the
// link changes, upd moves directly after its new parent and brings its
// dependent clumps along as one contiguous block, so the list can be replayed
// by grid.Build. The input slice is not modified.
func Reconcile(clumps []model.Clump, upd model.Clump, orig *model.Clump) ([]model.Clump, error) {
	if orig != nil {
		at := indexOf(clumps, orig.ID)
		if at < 0 {
			return nil, NotFoundError{Kind: "clump", ID: orig.ID}
		}
		if upd.ID != orig.ID {
			return nil, InvariantError{Op: "reconcile", Reason: fmt.Sprintf("edit changes id %d to %d", orig.ID, upd.ID)}
		}
		if upd.Link == orig.Link {
			out := cloneClumps(clumps)
			out[at] = upd
			return out, nil
		}
		if clumps[at].Link.IsRoot() {
			return nil, InvariantError{Op: "reconcile", Reason: "the root clump cannot be relinked"}
		}
	} else if indexOf(clumps, upd.ID) >= 0 {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateID, upd.ID)
	}

	if len(clumps) == 0 {
		if !upd.Link.IsRoot() {
			return nil, NotFoundError{Kind: "clump", ID: upd.Link.Parent}
		}
		return []model.Clump{upd}, nil
	}

	switch upd.Link.Kind {
	case model.LinkRoot:
		return nil, InvariantError{Op: "reconcile", Reason: "only the first clump may be unlinked"}
	case model.LinkAbove, model.LinkLeft:
	default:
		return nil, InvariantError{Op: "reconcile", Reason: "no reconciliation case matches link " + upd.Link.String()}
	}

	parent := upd.Link.Parent
	at := indexOf(clumps, parent)
	if at < 0 {
		return nil, NotFoundError{Kind: "clump", ID: parent}
	}

	var tail []int
	if orig != nil {
		tail = grid.FullTail(clumps, upd.ID)
	}
	if parent == upd.ID || containsID(tail, parent) {
		return nil, fmt.Errorf("%w: %d cannot link to %d", ErrCycle, upd.ID, parent)
	}

	if upd.Link.Kind == model.LinkAbove {
		return reconcileBelow(clumps, upd, at, orig != nil, tail), nil
	}
	if occ := grid.RightNeighbor(clumps, parent); occ != 0 && occ != upd.ID {
		return nil, fmt.Errorf("%w: clump %d already sits right of %d", ErrSlotTaken, occ, parent)
	}
	return reconcileRightOf(clumps, upd, at, tail), nil
}

// reconcileBelow splices upd (and on edit its below-chain) between the parent
// at clumps[at] and whatever used to hang directly beneath that parent.
func reconcileBelow(clumps []model.Clump, upd model.Clump, at int, editing bool, tail []int) []model.Clump {
	parent := clumps[at].ID

	var below, rightBlock []int
	if editing {
		below = grid.IDsBelow(clumps, upd.ID)
		if r := grid.RightNeighbor(clumps, upd.ID); r != 0 {
			rightBlock = append([]int{r}, grid.FullTail(clumps, r)...)
		}
	}

	moved := map[int]bool{upd.ID: true}
	block := make([]int, 0, len(tail))
	for _, id := range below {
		moved[id] = true
		block = append(block, id)
	}
	for _, id := range rightBlock {
		if !moved[id] {
			moved[id] = true
			block = append(block, id)
		}
	}
	// Anything else hanging off the moved chain (e.g. right neighbours of
	// below-chain clumps) follows in its original relative order.
	for _, id := range tail {
		if !moved[id] {
			moved[id] = true
			block = append(block, id)
		}
	}

	sibling := grid.DirectlyBelow(clumps, parent)
	if sibling == upd.ID {
		sibling = 0
	}
	tailEnd := upd.ID
	if len(below) > 0 {
		tailEnd = below[len(below)-1]
	}

	byID := indexByID(clumps)
	out := make([]model.Clump, 0, len(clumps)+1)
	for _, c := range clumps[:at+1] {
		if !moved[c.ID] {
			out = append(out, c)
		}
	}
	out = append(out, upd)
	for _, id := range block {
		out = append(out, clumps[byID[id]])
	}
	for _, c := range clumps[at+1:] {
		if moved[c.ID] {
			continue
		}
		if c.ID == sibling {
			c.Link = model.Below(tailEnd)
		}
		out = append(out, c)
	}
	return out
}

// reconcileRightOf places upd immediately after its left parent at clumps[at],
// followed by its full tail.
func reconcileRightOf(clumps []model.Clump, upd model.Clump, at int, tail []int) []model.Clump {
	moved := map[int]bool{upd.ID: true}
	for _, id := range tail {
		moved[id] = true
	}

	byID := indexByID(clumps)
	out := make([]model.Clump, 0, len(clumps)+1)
	for _, c := range clumps[:at+1] {
		if !moved[c.ID] {
			out = append(out, c)
		}
	}
	out = append(out, upd)
	for _, id := range tail {
		out = append(out, clumps[byID[id]])
	}
	for _, c := range clumps[at+1:] {
		if !moved[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(clumps []model.Clump, id int) int {
	for i := range clumps {
		if clumps[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByID(clumps []model.Clump) map[int]int {
	out := make(map[int]int, len(clumps))
	for i, c := range clumps {
		out[c.ID] = i
	}
	return out
}

func containsID(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func cloneClumps(clumps []model.Clump) []model.Clump {
	return append([]model.Clump(nil), clumps...)
}
