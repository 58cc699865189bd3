package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"valentine/internal/sequence"
)

const gravity = 18.0 // cells per second squared

var confettiGlyphs = []rune{'♥', '✦', '•', '❤', '*'}

type particle struct {
	x, y   float64
	vx, vy float64
	color  colorful.Color
	glyph  rune
}

// confetti is a cosmetic particle field. It never feeds back into the view
// sequence.
type confetti struct {
	rnd       sequence.Rand
	particles []particle
}

func newConfetti(rnd sequence.Rand) *confetti {
	return &confetti{rnd: rnd}
}

// burst launches n particles upwards from (ox, oy).
func (c *confetti) burst(n int, ox, oy float64) {
	for range n {
		c.particles = append(c.particles, particle{
			x:     ox,
			y:     oy,
			vx:    (c.rnd.Float64() - 0.5) * 40,
			vy:    -8 - c.rnd.Float64()*16,
			color: confettiColors[c.rnd.IntN(len(confettiColors))],
			glyph: confettiGlyphs[c.rnd.IntN(len(confettiGlyphs))],
		})
	}
}

// step advances the field by dt seconds and drops particles that left the
// w×h area.
func (c *confetti) step(dt float64, w, h int) {
	alive := c.particles[:0]
	for _, p := range c.particles {
		p.vy += gravity * dt
		p.x += p.vx * dt
		p.y += p.vy * dt
		if p.y >= float64(h) || p.x < 0 || p.x >= float64(w) {
			continue
		}
		alive = append(alive, p)
	}
	c.particles = alive
}

func (c *confetti) len() int {
	return len(c.particles)
}

func (c *confetti) clear() {
	c.particles = nil
}

// render draws the field on a w×h grid of cells.
func (c *confetti) render(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}
	for _, p := range c.particles {
		x, y := int(p.x), int(p.y)
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		grid[y][x] = lipgloss.NewStyle().Foreground(lg(p.color)).Render(string(p.glyph))
	}
	rows := make([]string, h)
	for y := range grid {
		rows[y] = strings.Join(grid[y], "")
	}
	return strings.Join(rows, "\n")
}
