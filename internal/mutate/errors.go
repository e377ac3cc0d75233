package mutate

import (
	"errors"
	"fmt"

	"dataflow-cli/internal/grid"
)

var (
	ErrCycle            = errors.New("link would create a cycle")
	ErrSlotTaken        = errors.New("right-hand slot already taken")
	ErrRootDelete       = errors.New("the root clump cannot be deleted")
	ErrHasRightNeighbor = errors.New("clump has a clump linked to its right")
	ErrDuplicateID      = errors.New("clump id already exists")
)

type NotFoundError struct {
	Kind string
	ID   int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// InvariantError reports input that the reconcilers cannot resolve. It
// matches grid.ErrInvariant under errors.Is.
type InvariantError struct {
	Op     string
	Reason string
}

func (e InvariantError) Error() string {
	return e.Op + ": " + e.Reason
}

func (e InvariantError) Unwrap() error { return grid.ErrInvariant }
