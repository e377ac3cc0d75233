package grid

import (
	"errors"
	"fmt"
	"strings"

	"dataflow-cli/internal/model"
)

// ErrInvariant marks errors caused by a clump list that breaks the link
// invariants (missing parent, duplicate id, occupied slot, ...).
var ErrInvariant = errors.New("layout invariant violated")

type PlacementError struct {
	ID     int
	Parent int
	Reason string
}

func (e *PlacementError) Error() string {
	if e.Parent > 0 {
		return fmt.Sprintf("place clump %d (parent %d): %s", e.ID, e.Parent, e.Reason)
	}
	return fmt.Sprintf("place clump %d: %s", e.ID, e.Reason)
}

func (e *PlacementError) Unwrap() error { return ErrInvariant }

// ColumnIndex maps clump id to its 1-based column.
type ColumnIndex map[int]int

// Grid is a rectangular occupancy matrix of clump ids. Rows and columns are
// 1-based in the public API; 0 marks an empty cell.
type Grid struct {
	cells [][]int
}

// Build replays placement over clumps in order and returns the resulting grid
// and column index. The input is not modified.
func Build(clumps []model.Clump) (*Grid, ColumnIndex, error) {
	g := &Grid{}
	idx := ColumnIndex{}
	for _, c := range clumps {
		if c.ID < 1 {
			return nil, nil, &PlacementError{ID: c.ID, Reason: "id must be positive"}
		}
		if _, dup := idx[c.ID]; dup {
			return nil, nil, &PlacementError{ID: c.ID, Reason: "duplicate id"}
		}
		col, err := columnFor(c, idx)
		if err != nil {
			return nil, nil, err
		}
		// Recorded before placement; later clumps resolve their column from it.
		idx[c.ID] = col
		if err := g.place(c, col); err != nil {
			return nil, nil, err
		}
	}
	return g, idx, nil
}

func columnFor(c model.Clump, idx ColumnIndex) (int, error) {
	switch c.Link.Kind {
	case model.LinkRoot:
		return 1, nil
	case model.LinkLeft:
		pc, ok := idx[c.Link.Parent]
		if !ok {
			return 0, &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: "left parent not placed"}
		}
		return pc + 1, nil
	case model.LinkAbove:
		pc, ok := idx[c.Link.Parent]
		if !ok {
			return 0, &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: "above parent not placed"}
		}
		return pc, nil
	default:
		return 0, &PlacementError{ID: c.ID, Reason: "unknown link kind " + c.Link.Kind.String()}
	}
}

func (g *Grid) place(c model.Clump, col int) error {
	if c.Link.Kind == model.LinkLeft {
		return g.placeRightOf(c, col)
	}
	return g.placeInColumn(c, col)
}

func (g *Grid) placeRightOf(c model.Clump, col int) error {
	r, pc, ok := g.Find(c.Link.Parent)
	if !ok {
		return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: "left parent not found in grid"}
	}
	if pc+1 != col {
		return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: "column index out of sync with grid"}
	}
	if col > g.Columns() {
		g.appendColumn()
	}
	if g.cells[r-1][col-1] != 0 {
		return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: fmt.Sprintf("cell (%d,%d) already holds clump %d", r, col, g.cells[r-1][col-1])}
	}
	g.cells[r-1][col-1] = c.ID
	return nil
}

func (g *Grid) placeInColumn(c model.Clump, col int) error {
	if len(g.cells) == 0 {
		if col != 1 {
			return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: "first clump must be in column 1"}
		}
		g.cells = [][]int{{c.ID}}
		return nil
	}
	last := g.Columns()
	switch {
	case col == 1:
		g.insertRow(len(g.cells))
		g.cells[len(g.cells)-1][0] = c.ID
		return nil
	case col == last:
		r := g.lastRowInColumn(col)
		if r == 0 {
			return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: fmt.Sprintf("column %d has no entries", col)}
		}
		g.insertRow(r)
		g.cells[r][col-1] = c.ID
		return nil
	case col > 1 && col < last:
		a := g.lastRowInColumn(col)
		b := g.lastRowFromColumn(col)
		r := max(a, b)
		if r == 0 {
			return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: fmt.Sprintf("no occupied rows at or right of column %d", col)}
		}
		g.insertRow(r)
		g.cells[r][col-1] = c.ID
		return nil
	default:
		return &PlacementError{ID: c.ID, Parent: c.Link.Parent, Reason: fmt.Sprintf("column %d outside grid of %d columns", col, last)}
	}
}

// insertRow inserts a zero row so that it becomes row after+1.
func (g *Grid) insertRow(after int) {
	row := make([]int, g.Columns())
	g.cells = append(g.cells, nil)
	copy(g.cells[after+1:], g.cells[after:])
	g.cells[after] = row
}

func (g *Grid) appendColumn() {
	for i := range g.cells {
		g.cells[i] = append(g.cells[i], 0)
	}
}

// lastRowInColumn returns the lowest occupied row in col, or 0.
func (g *Grid) lastRowInColumn(col int) int {
	if col < 1 || col > g.Columns() {
		return 0
	}
	for r := len(g.cells); r >= 1; r-- {
		if g.cells[r-1][col-1] != 0 {
			return r
		}
	}
	return 0
}

// lastRowFromColumn scans rows bottom-to-top over columns col..end and returns
// the first row holding anything, or 0.
func (g *Grid) lastRowFromColumn(col int) int {
	for r := len(g.cells); r >= 1; r-- {
		for c := col; c <= g.Columns(); c++ {
			if g.cells[r-1][c-1] != 0 {
				return r
			}
		}
	}
	return 0
}

func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Columns is 1 for an empty grid.
func (g *Grid) Columns() int {
	if g == nil || len(g.cells) == 0 {
		return 1
	}
	return len(g.cells[0])
}

// At returns the id at (row, col), or 0 when empty or out of bounds.
func (g *Grid) At(row, col int) int {
	if g == nil || row < 1 || row > len(g.cells) || col < 1 || col > g.Columns() {
		return 0
	}
	return g.cells[row-1][col-1]
}

func (g *Grid) Find(id int) (row, col int, ok bool) {
	if g == nil || id < 1 {
		return 0, 0, false
	}
	for r, cells := range g.cells {
		for c, v := range cells {
			if v == id {
				return r + 1, c + 1, true
			}
		}
	}
	return 0, 0, false
}

// LastInColumn returns the bottom-most id in col, or 0.
func (g *Grid) LastInColumn(col int) int {
	if r := g.lastRowInColumn(col); r > 0 {
		return g.cells[r-1][col-1]
	}
	return 0
}

// Below returns the id directly beneath id in the grid, or 0.
func (g *Grid) Below(id int) int {
	r, c, ok := g.Find(id)
	if !ok {
		return 0
	}
	return g.At(r+1, c)
}

// RightOf returns the id in the cell to the right of id, or 0.
func (g *Grid) RightOf(id int) int {
	r, c, ok := g.Find(id)
	if !ok {
		return 0
	}
	return g.At(r, c+1)
}

// ColumnParent resolves "add to column col" into the above-parent a new clump
// should hang beneath.
func (g *Grid) ColumnParent(col int) (int, bool) {
	id := g.LastInColumn(col)
	return id, id != 0
}

// Cells returns a copy of the matrix.
func (g *Grid) Cells() [][]int {
	if g == nil {
		return [][]int{}
	}
	out := make([][]int, len(g.cells))
	for i, row := range g.cells {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func (g *Grid) Equal(o *Grid) bool {
	if g.Rows() != o.Rows() || g.Columns() != o.Columns() {
		return false
	}
	for r := 1; r <= g.Rows(); r++ {
		for c := 1; c <= g.Columns(); c++ {
			if g.At(r, c) != o.At(r, c) {
				return false
			}
		}
	}
	return true
}

func (g *Grid) String() string {
	var b strings.Builder
	for i, row := range g.Cells() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", v)
		}
	}
	return b.String()
}
