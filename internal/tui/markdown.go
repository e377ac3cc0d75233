package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. Building one per frame is slow.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// codeMarkdown wraps a clump's code in a fenced block so glamour renders it
// as code rather than prose.
func codeMarkdown(code string) string {
	code = strings.TrimRight(code, "\n")
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return fence + "\n" + code + "\n" + fence + "\n"
}

func renderCode(code string, width int, style string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return renderMarkdown(codeMarkdown(code), width, style)
}

// RenderMarkdown renders md for a terminal of the given width. An empty style
// follows the terminal background.
func RenderMarkdown(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	return renderMarkdown(md, width, resolveMarkdownStyle(style))
}

func renderMarkdown(md string, width int, style string) string {
	if width < 10 {
		width = 10
	}

	key := style + ":" + strconv.Itoa(width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			// Never WithAutoStyle: it can block on terminal queries.
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
