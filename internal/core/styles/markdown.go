package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// RenderMarkdown renders md for the terminal with the active theme, wrapped
// at width. On renderer failure the source is returned unchanged.
func RenderMarkdown(md string, width int) string {
	return render(md, width, glamour.WithStyles(GlamourStyle()))
}

// RenderPlainMarkdown lays md out like RenderMarkdown but emits no escape
// sequences, for pipes and files.
func RenderPlainMarkdown(md string, width int) string {
	return render(md, width, glamour.WithStandardStyle(glamourstyles.NoTTYStyle))
}

func render(md string, width int, style glamour.TermRendererOption) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
