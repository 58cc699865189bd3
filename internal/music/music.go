// Package music drives the looping background track behind the page's music
// toggle.
package music

import (
	"context"
	"errors"
	"sync"

	appLog "valentine/internal/log"
)

// ErrNoPlayer is returned when no playback backend is configured.
var ErrNoPlayer = errors.New("music: no player configured")

// Player starts and stops playback.
type Player interface {
	Play(ctx context.Context) error
	Pause() error
}

// runner is implemented by players that can report a backend which exited
// on its own.
type runner interface {
	Running() bool
}

// Toggle is the play/pause switch. A failed Play leaves it stopped; the
// failure is only logged. A player that stops by itself turns the toggle
// off as well.
type Toggle struct {
	mu      sync.Mutex
	player  Player
	playing bool
}

// NewToggle returns a stopped toggle. p may be nil.
func NewToggle(p Player) *Toggle {
	return &Toggle{player: p}
}

// Toggle flips playback and reports whether music is now playing.
func (t *Toggle) Toggle(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.syncLocked()
	if t.playing {
		if err := t.player.Pause(); err != nil {
			appLog.Debug("music pause failed", "err", err)
		}
		t.playing = false
		return false
	}

	if t.player == nil {
		appLog.Debug("music play skipped", "err", ErrNoPlayer)
		return false
	}
	if err := t.player.Play(ctx); err != nil {
		appLog.Debug("music play refused", "err", err)
		return false
	}
	t.playing = true
	return true
}

// Playing reports the toggle state.
func (t *Toggle) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncLocked()
	return t.playing
}

func (t *Toggle) syncLocked() {
	if !t.playing {
		return
	}
	if r, ok := t.player.(runner); ok && !r.Running() {
		appLog.Debug("music player stopped on its own")
		t.playing = false
	}
}

// Stop pauses playback if it is running.
func (t *Toggle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	if err := t.player.Pause(); err != nil {
		appLog.Debug("music pause failed", "err", err)
	}
	t.playing = false
}
