package tui

import (
	"strconv"
	"strings"

	"dataflow-cli/internal/grid"
	"dataflow-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const defaultCellWidth = 14

// GridStyle controls how DrawGrid renders cells. CellWidth is the inner width
// of a box; Selected, when non-zero, is drawn with a heavier border.
type GridStyle struct {
	CellWidth int
	Selected  int
}

func (st GridStyle) cellWidth() int {
	if st.CellWidth < 4 {
		return defaultCellWidth
	}
	return st.CellWidth
}

// DrawGrid renders g as rows of boxes, one per occupied cell. Empty cells keep
// their footprint so columns stay aligned.
func DrawGrid(clumps []model.Clump, g *grid.Grid, st GridStyle) string {
	if g == nil || g.Rows() == 0 {
		return styleMuted.Render("(no clumps)")
	}
	w := st.cellWidth()
	byID := make(map[int]model.Clump, len(clumps))
	for _, c := range clumps {
		byID[c.ID] = c
	}

	rows := make([]string, 0, g.Rows())
	for r := 1; r <= g.Rows(); r++ {
		cells := make([]string, 0, 2*g.Columns())
		for c := 1; c <= g.Columns(); c++ {
			if c > 1 {
				cells = append(cells, " ")
			}
			id := g.At(r, c)
			if id == 0 {
				cells = append(cells, blankCell(w))
				continue
			}
			cells = append(cells, drawCell(byID[id], id, w, id == st.Selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func drawCell(c model.Clump, id, w int, selected bool) string {
	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = "(unnamed)"
	}
	label := fitLabel(name, w)
	meta := fitLabel("#"+strconv.Itoa(id)+" "+c.Link.String(), w)
	st := styleCell
	if selected {
		st = styleCellSelected
	}
	return st.Render(label + "\n" + styleMuted.Render(meta))
}

// blankCell matches the footprint of a bordered two-line cell.
func blankCell(w int) string {
	line := strings.Repeat(" ", w+2)
	return strings.Join([]string{line, line, line, line}, "\n")
}

// fitLabel truncates s to w display columns and pads it back out, so wide
// runes never push a border out of line.
func fitLabel(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}
