package tui

import (
	"strconv"
	"strings"

	"dataflow-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

const finderLimit = 8

// clumpSource lets sahilm/fuzzy match against clump names.
type clumpSource []model.Clump

func (s clumpSource) String(i int) string { return s[i].Name }
func (s clumpSource) Len() int            { return len(s) }

// filterClumps returns the ids matching query, best first. An empty query
// keeps store order.
func filterClumps(clumps []model.Clump, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, 0, len(clumps))
		for _, c := range clumps {
			out = append(out, c.ID)
		}
		return out
	}
	matches := fuzzy.FindFrom(query, clumpSource(clumps))
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, clumps[m.Index].ID)
	}
	return out
}

type finder struct {
	input   textinput.Model
	matches []int
	cursor  int
}

func newFinder() finder {
	ti := textinput.New()
	ti.Placeholder = "clump name"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	return finder{input: ti}
}

func (f *finder) open(clumps []model.Clump) tea.Cmd {
	f.input.SetValue("")
	f.cursor = 0
	f.matches = filterClumps(clumps, "")
	return f.input.Focus()
}

func (f *finder) close() {
	f.input.Blur()
	f.matches = nil
	f.cursor = 0
}

func (f *finder) move(delta int) {
	if len(f.matches) == 0 {
		f.cursor = 0
		return
	}
	f.cursor = (f.cursor + delta + len(f.matches)) % len(f.matches)
}

// selected is the id under the cursor, 0 when nothing matches.
func (f finder) selected() int {
	if f.cursor < 0 || f.cursor >= len(f.matches) {
		return 0
	}
	return f.matches[f.cursor]
}

func (f *finder) update(msg tea.Msg, clumps []model.Clump) tea.Cmd {
	var cmd tea.Cmd
	before := f.input.Value()
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		f.matches = filterClumps(clumps, f.input.Value())
		f.cursor = 0
	}
	return cmd
}

func (f finder) view(byID map[int]model.Clump) string {
	var b strings.Builder
	b.WriteString(f.input.View())
	for i, id := range f.matches {
		if i >= finderLimit {
			b.WriteString("\n" + styleMuted.Render("  … "+strconv.Itoa(len(f.matches)-finderLimit)+" more"))
			break
		}
		line := "#" + strconv.Itoa(id) + " " + byID[id].Name
		if i == f.cursor {
			b.WriteString("\n" + styleHeader.Render("> "+line))
		} else {
			b.WriteString("\n  " + line)
		}
	}
	if len(f.matches) == 0 {
		b.WriteString("\n" + styleMuted.Render("  no matches"))
	}
	return b.String()
}
