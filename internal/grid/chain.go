package grid

import (
	"sort"

	"dataflow-cli/internal/model"
)

// These helpers walk the link graph of the clump list itself, not the grid
// geometry, so they work on lists that do not (yet) place cleanly.

// IDsBelow follows above-links downward from id and returns the chain in order.
func IDsBelow(clumps []model.Clump, id int) []int {
	out := []int{}
	seen := map[int]bool{id: true}
	cur := id
	for {
		next := DirectlyBelow(clumps, cur)
		if next == 0 || seen[next] {
			return out
		}
		seen[next] = true
		out = append(out, next)
		cur = next
	}
}

// FullTail returns every clump that depends on id through either link kind,
// transitively, in store order. id itself is not included.
func FullTail(clumps []model.Clump, id int) []int {
	children := map[int][]int{}
	pos := map[int]int{}
	for i, c := range clumps {
		pos[c.ID] = i
		if c.Link.IsRoot() {
			continue
		}
		children[c.Link.Parent] = append(children[c.Link.Parent], c.ID)
	}

	out := []int{}
	seen := map[int]bool{id: true}
	var walk func(p int)
	walk = func(p int) {
		for _, ch := range children[p] {
			if seen[ch] {
				continue
			}
			seen[ch] = true
			out = append(out, ch)
			walk(ch)
		}
	}
	walk(id)

	sort.SliceStable(out, func(i, j int) bool { return pos[out[i]] < pos[out[j]] })
	return out
}

// LinkCandidates lists ids that id may link to without creating a cycle:
// everything except id and its full tail. id == 0 means a clump that does not
// exist yet, so every clump qualifies.
func LinkCandidates(clumps []model.Clump, id int) []int {
	excluded := map[int]bool{}
	if id != 0 {
		excluded[id] = true
		for _, t := range FullTail(clumps, id) {
			excluded[t] = true
		}
	}
	out := []int{}
	for _, c := range clumps {
		if !excluded[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// OpenRightSlots narrows LinkCandidates to clumps whose right-hand slot is
// free (or already held by id).
func OpenRightSlots(clumps []model.Clump, id int) []int {
	taken := map[int]bool{}
	for _, c := range clumps {
		if p := c.LinkedToLeft(); p != model.NoLink && c.ID != id {
			taken[p] = true
		}
	}
	out := []int{}
	for _, cand := range LinkCandidates(clumps, id) {
		if !taken[cand] {
			out = append(out, cand)
		}
	}
	return out
}

// RightNeighbor returns the clump left-linked to id, or 0.
func RightNeighbor(clumps []model.Clump, id int) int {
	for _, c := range clumps {
		if c.LinkedToLeft() == id {
			return c.ID
		}
	}
	return 0
}

// DirectlyBelow returns the clump above-linked to id, or 0.
func DirectlyBelow(clumps []model.Clump, id int) int {
	for _, c := range clumps {
		if c.LinkedToAbove() == id {
			return c.ID
		}
	}
	return 0
}
