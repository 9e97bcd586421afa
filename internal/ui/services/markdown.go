// Package services holds the dashboard's rendering helpers.
package services

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for a terminal of the given width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders with glamour, caching one renderer per wrap width.
type GlamourRenderer struct {
	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{cache: make(map[int]*glamour.TermRenderer)}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	g.mu.Lock()
	r, ok := g.cache[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			g.mu.Unlock()
			return "", err
		}
		g.cache[width] = r
	}
	g.mu.Unlock()

	return r.Render(content)
}

// RenderMarkdown renders content, falling back to the raw text on error.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) string {
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content, width)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
