package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dataflow-cli/internal/logging"
	"dataflow-cli/internal/model"
	"dataflow-cli/internal/mutate"
	"dataflow-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const eventClumpDelete = "clump.delete"

type Options struct {
	Workspace     string
	MarkdownStyle string
	CellWidth     int
}

type mode int

const (
	modeGrid mode = iota
	modeFind
	modeConfirmDelete
)

type reloadMsg struct{}

func tuiLog() *slog.Logger { return logging.ForComponent(logging.CompTUI) }

type appModel struct {
	store   store.Store
	db      *store.DB
	opts    Options
	mdStyle string
	layout  store.Layout

	sel     int
	mode    mode
	status  string
	failed  bool
	pending int // clump awaiting delete confirmation

	width  int
	height int

	keys     keyMap
	help     help.Model
	preview  viewport.Model
	finder   finder
	watcher  *StorageWatcher
	copyCode func(string) error
}

// Run opens the interactive grid viewer on db until the user quits.
func Run(s store.Store, db *store.DB, opts Options) error {
	m := newAppModel(s, db, opts)
	if w, err := NewStorageWatcher(s.SQLitePath()); err != nil {
		watchLog().Warn("store watcher disabled", "err", err)
	} else {
		w.Start()
		defer w.Close()
		m.watcher = w
	}
	tuiLog().Info("tui start", "dir", s.Dir, "clumps", len(db.Clumps))
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newAppModel(s store.Store, db *store.DB, opts Options) *appModel {
	if db == nil {
		db = &store.DB{}
	}
	m := &appModel{
		store:    s,
		opts:     opts,
		mdStyle:  resolveMarkdownStyle(opts.MarkdownStyle),
		width:    100,
		height:   30,
		keys:     defaultKeyMap(),
		help:     help.New(),
		preview:  viewport.New(40, 20),
		finder:   newFinder(),
		copyCode: copyToClipboard,
	}
	m.setDB(db)
	m.resize()
	return m
}

func (m *appModel) Init() tea.Cmd {
	return m.waitForReload()
}

func (m *appModel) waitForReload() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.ReloadChannel()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

// setDB swaps in a freshly loaded or mutated db and keeps the selection when
// the selected clump still exists.
func (m *appModel) setDB(db *store.DB) {
	m.db = db
	l, err := db.Layout()
	if err != nil {
		m.layout = store.Layout{}
		m.setError(err)
	} else {
		m.layout = l
	}
	if _, _, ok := m.layout.Grid.Find(m.sel); !ok {
		m.sel = 0
		if len(db.Clumps) > 0 {
			m.sel = db.Clumps[0].ID
		}
	}
	m.refreshPreview()
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *appModel) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

func (m *appModel) panelWidth() int {
	w := max(32, m.width*2/5)
	return min(w, max(m.width-20, 10))
}

func (m *appModel) bodyHeight() int {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = len(m.keys.FullHelp()[0])
	}
	return max(3, m.height-2-helpLines)
}

func (m *appModel) resize() {
	m.help.Width = m.width
	m.preview.Width = max(m.panelWidth()-2, 10)
	m.preview.Height = max(m.bodyHeight()-1, 1)
	m.refreshPreview()
}

func (m *appModel) selectedClump() (model.Clump, bool) {
	c, ok := m.db.FindClump(m.sel)
	if !ok {
		return model.Clump{}, false
	}
	return *c, true
}

func (m *appModel) refreshPreview() {
	c, ok := m.selectedClump()
	switch {
	case !ok:
		m.preview.SetContent("")
	case strings.TrimSpace(c.Code) == "":
		m.preview.SetContent(styleMuted.Render("(no code)"))
	default:
		m.preview.SetContent(renderCode(c.Code, m.preview.Width, m.mdStyle))
	}
	m.preview.GotoTop()
}

func (m *appModel) selectID(id int) {
	if id == 0 || id == m.sel {
		return
	}
	m.sel = id
	m.refreshPreview()
}

// move steps the selection to the next occupied cell in direction (dr, dc).
func (m *appModel) move(dr, dc int) {
	g := m.layout.Grid
	r, c, ok := g.Find(m.sel)
	if !ok {
		return
	}
	for {
		r, c = r+dr, c+dc
		if r < 1 || r > g.Rows() || c < 1 || c > g.Columns() {
			return
		}
		if id := g.At(r, c); id != 0 {
			m.selectID(id)
			return
		}
	}
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case reloadMsg:
		db, err := m.store.Load()
		if err != nil {
			m.setError(err)
		} else {
			m.setDB(db)
			m.setStatus("reloaded")
		}
		return m, m.waitForReload()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFind:
			return m, m.updateFind(msg)
		case modeConfirmDelete:
			m.updateConfirmDelete(msg)
			return m, nil
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m *appModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Find):
		m.mode = modeFind
		return m, m.finder.open(m.db.Clumps)
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Delete):
		m.askDelete()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Scroll):
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) updateFind(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.finder.close()
		m.mode = modeGrid
		return nil
	case tea.KeyEnter:
		id := m.finder.selected()
		m.finder.close()
		m.mode = modeGrid
		if id == 0 {
			m.setStatus("no clump matches")
			return nil
		}
		m.selectID(id)
		return nil
	case tea.KeyUp, tea.KeyCtrlP:
		m.finder.move(-1)
		return nil
	case tea.KeyDown, tea.KeyCtrlN:
		m.finder.move(1)
		return nil
	}
	return m.finder.update(msg, m.db.Clumps)
}

func (m *appModel) copySelected() {
	c, ok := m.selectedClump()
	if !ok {
		return
	}
	if err := m.copyCode(c.Code); err != nil {
		m.setError(fmt.Errorf("copy: %w", err))
		return
	}
	m.setStatus("copied code of " + clumpLabel(c))
}

func (m *appModel) askDelete() {
	c, ok := m.selectedClump()
	if !ok {
		return
	}
	if err := mutate.CanDelete(m.db, c.ID); err != nil {
		m.setError(err)
		return
	}
	m.pending = c.ID
	m.mode = modeConfirmDelete
	m.setStatus("delete " + clumpLabel(c) + "? y/n")
}

func (m *appModel) updateConfirmDelete(msg tea.KeyMsg) {
	id := m.pending
	m.pending = 0
	m.mode = modeGrid
	if msg.String() != "y" {
		m.setStatus("delete cancelled")
		return
	}
	if err := m.deleteClump(id); err != nil {
		m.setError(err)
	}
}

func (m *appModel) deleteClump(id int) error {
	gone, ok := m.db.FindClump(id)
	if !ok {
		return mutate.NotFoundError{Kind: "clump", ID: id}
	}
	label := clumpLabel(*gone)
	parent := gone.Link.Parent

	res, err := mutate.DeleteClump(m.db, id)
	if err != nil {
		return err
	}
	if m.watcher != nil {
		m.watcher.NotifySave()
	}
	if err := m.store.Save(m.db); err != nil {
		// The in-memory db already moved on; resync with what is on disk.
		if db, lerr := m.store.Load(); lerr == nil {
			m.setDB(db)
		}
		return fmt.Errorf("save: %w", err)
	}
	if _, err := m.store.AppendEvent(context.Background(), eventClumpDelete, id, res.EventPayload); err != nil {
		tuiLog().Warn("append event failed", "type", eventClumpDelete, "id", id, "err", err)
	}

	m.sel = res.Promoted
	if m.sel == 0 {
		m.sel = parent
	}
	m.setDB(m.db)
	m.setStatus("deleted " + label)
	return nil
}

func clumpLabel(c model.Clump) string {
	if c.Name == "" {
		return "#" + strconv.Itoa(c.ID)
	}
	return "#" + strconv.Itoa(c.ID) + " " + c.Name
}

// clipBlock cuts s to at most width columns and height lines.
func clipBlock(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		if ansi.StringWidth(l) > width {
			lines[i] = ansi.Truncate(l, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

func (m *appModel) View() string {
	byID := make(map[int]model.Clump, len(m.db.Clumps))
	for _, c := range m.db.Clumps {
		byID[c.ID] = c
	}

	ws := m.opts.Workspace
	if ws == "" {
		ws = m.store.Dir
	}
	header := styleHeader.Render("dataflow") + styleMuted.Render(fmt.Sprintf(" · %s · %d clumps", ws, len(m.db.Clumps)))

	bodyH := m.bodyHeight()
	panelW := m.panelWidth()
	gridW := max(m.width-panelW-1, 10)

	drawn := DrawGrid(m.db.Clumps, m.layout.Grid, GridStyle{CellWidth: m.opts.CellWidth, Selected: m.sel})
	left := lipgloss.NewStyle().Width(gridW).Render(clipBlock(drawn, gridW, bodyH))

	var panel string
	if m.mode == modeFind {
		panel = m.finder.view(byID)
	} else {
		title := styleMuted.Render("(nothing selected)")
		if c, ok := byID[m.sel]; ok {
			title = styleHeader.Render(clumpLabel(c))
		}
		panel = title + "\n" + m.preview.View()
	}
	right := stylePanel.Render(clipBlock(panel, panelW-2, bodyH))

	status := styleMuted.Render(m.status)
	if m.failed {
		status = styleError.Render(m.status)
	}
	return strings.Join([]string{
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		status,
		m.help.View(m.keys),
	}, "\n")
}
