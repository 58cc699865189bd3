package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	appLog "valentine/internal/log"
	"valentine/internal/model"
)

const minCardWidth = 40

func cardMarkdown(d model.EventDetails) string {
	var b strings.Builder
	b.WriteString("# You're Cordially Invited\n\n")
	b.WriteString("*to a magical Valentine's Day celebration*\n\n")
	fmt.Fprintf(&b, "## %s\n\n", d.Title)
	b.WriteString("| 📅 Date | 🕓 Time |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", d.DisplayDate, d.DisplayTime)
	if d.MapURL != "" {
		fmt.Fprintf(&b, "📍 **%s** ([map](%s))\n\n", d.LocationShort, d.MapURL)
	} else {
		fmt.Fprintf(&b, "📍 **%s**\n\n", d.LocationShort)
	}
	if d.DressCode != "" {
		fmt.Fprintf(&b, "> Dress Code: %s\n", d.DressCode)
	}
	return b.String()
}

// cardRenderer turns the invitation markdown into styled terminal output.
// The renderer is rebuilt when the wrap width changes.
type cardRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (c *cardRenderer) render(d model.EventDetails, width int) string {
	width = max(width-8, minCardWidth)
	md := cardMarkdown(d)
	if c.renderer == nil || c.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			appLog.Error("card renderer init failed", err)
			return md
		}
		c.renderer, c.width = r, width
	}
	out, err := c.renderer.Render(md)
	if err != nil {
		appLog.Error("card render failed", err)
		return md
	}
	return out
}
