package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette used for headings, buttons and confetti.
var (
	colorRose     = hex("#E91E63")
	colorBlush    = hex("#FFC0CB")
	colorGold     = hex("#FFD700")
	colorHotPink  = hex("#FF69B4")
	colorDeepPink = hex("#FF1493")
	colorBurgundy = hex("#800020")
	colorInk      = hex("#1A0A10")

	confettiColors = []colorful.Color{colorRose, colorBlush, colorGold, colorHotPink, colorDeepPink}
)

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func lg(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// fade blends from the background colour towards c as the cross-fade runs.
// progress is linear in [0, 1]; the curve is eased so views settle softly.
func fade(c colorful.Color, progress float64) colorful.Color {
	if progress >= 1 {
		return c
	}
	if progress <= 0 {
		return colorInk
	}
	return colorInk.BlendLab(c, ease.InOutQuad(progress)).Clamped()
}

// fadeOut is the outgoing view's colour at the same progress.
func fadeOut(c colorful.Color, progress float64) colorful.Color {
	return fade(c, 1-progress)
}

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	muted    lipgloss.Style
	yes      lipgloss.Style
	no       lipgloss.Style
	hint     lipgloss.Style
	prompt   lipgloss.Style
	badge    lipgloss.Style
	notice   lipgloss.Style
	count    lipgloss.Style
	unit     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lg(colorRose)),
		subtitle: lipgloss.NewStyle().Italic(true).Foreground(lg(colorBlush)),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		yes: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lg(colorRose)).
			Padding(0, 3),
		no: lipgloss.NewStyle().
			Foreground(lg(colorBurgundy)).
			Background(lg(colorBlush)).
			Padding(0, 2),
		hint: lipgloss.NewStyle().Italic(true).Foreground(lg(colorHotPink)),
		prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lg(colorRose)).
			Padding(1, 3).
			Align(lipgloss.Center),
		badge: lipgloss.NewStyle().Bold(true).
			Foreground(lg(colorRose)).
			Background(lg(colorBlush)).
			Padding(0, 1),
		notice: lipgloss.NewStyle().Foreground(lg(colorGold)),
		count: lipgloss.NewStyle().Bold(true).
			Foreground(lg(colorRose)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lg(colorBlush)).
			Width(6).
			Align(lipgloss.Center),
		unit: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8).Align(lipgloss.Center),
	}
}
