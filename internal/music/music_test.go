package music

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"valentine/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePlayer struct {
	playErr error
	plays   int
	pauses  int
}

func (f *fakePlayer) Play(context.Context) error {
	f.plays++
	return f.playErr
}

func (f *fakePlayer) Pause() error {
	f.pauses++
	return nil
}

func TestToggle(t *testing.T) {
	p := &fakePlayer{}
	tg := NewToggle(p)
	assert.False(t, tg.Playing())

	assert.True(t, tg.Toggle(context.Background()))
	assert.True(t, tg.Playing())
	assert.False(t, tg.Toggle(context.Background()))
	assert.False(t, tg.Playing())

	assert.Equal(t, 1, p.plays)
	assert.Equal(t, 1, p.pauses)
}

func TestToggleStaysStoppedWhenPlayRefused(t *testing.T) {
	p := &fakePlayer{playErr: errors.New("autoplay blocked")}
	tg := NewToggle(p)

	assert.False(t, tg.Toggle(context.Background()))
	assert.False(t, tg.Playing())
	assert.False(t, tg.Toggle(context.Background()))
	assert.Equal(t, 2, p.plays)
	assert.Zero(t, p.pauses)
}

type exitingPlayer struct {
	fakePlayer
	running bool
}

func (e *exitingPlayer) Play(ctx context.Context) error {
	e.running = true
	return e.fakePlayer.Play(ctx)
}

func (e *exitingPlayer) Running() bool { return e.running }

func TestToggleFollowsPlayerExit(t *testing.T) {
	p := &exitingPlayer{}
	tg := NewToggle(p)

	require.True(t, tg.Toggle(context.Background()))
	assert.True(t, tg.Playing())

	p.running = false
	assert.False(t, tg.Playing())

	// The next press starts playback again instead of pausing a dead player.
	assert.True(t, tg.Toggle(context.Background()))
	assert.Equal(t, 2, p.plays)
	assert.Zero(t, p.pauses)
}

func TestToggleWithoutPlayer(t *testing.T) {
	tg := NewToggle(nil)
	assert.False(t, tg.Toggle(context.Background()))
	assert.False(t, tg.Playing())
	tg.Stop()
}

func TestToggleStop(t *testing.T) {
	p := &fakePlayer{}
	tg := NewToggle(p)
	tg.Stop()
	assert.Zero(t, p.pauses)

	tg.Toggle(context.Background())
	tg.Stop()
	assert.False(t, tg.Playing())
	assert.Equal(t, 1, p.pauses)
}

func TestNewCommandPlayer(t *testing.T) {
	_, err := NewCommandPlayer(config.MusicConfig{})
	assert.ErrorIs(t, err, ErrNoPlayer)

	p, err := NewCommandPlayer(config.MusicConfig{
		File:    "/srv/assets/track.mp3",
		Volume:  0.3,
		Command: []string{"mpv", "--loop=inf", "--volume={volume}", "{file}"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mpv", "--loop=inf", "--volume=30", "/srv/assets/track.mp3"}, p.argv)
}

func TestCommandPlayerLifecycle(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	p, err := NewCommandPlayer(config.MusicConfig{Command: []string{"sleep", "30"}})
	require.NoError(t, err)

	require.NoError(t, p.Play(context.Background()))
	assert.True(t, p.Running())
	require.NoError(t, p.Play(context.Background()), "second play is a no-op")

	require.NoError(t, p.Pause())
	assert.False(t, p.Running())
	require.NoError(t, p.Pause())
}

func TestCommandPlayerExitsOnCancel(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	p, err := NewCommandPlayer(config.MusicConfig{Command: []string{"sleep", "30"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Play(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !p.Running() }, 5*time.Second, 10*time.Millisecond)
}

func TestToggleOffWhenCommandExits(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	p, err := NewCommandPlayer(config.MusicConfig{Command: []string{"true"}})
	require.NoError(t, err)

	tg := NewToggle(p)
	tg.Toggle(context.Background())
	assert.Eventually(t, func() bool { return !tg.Playing() }, 5*time.Second, 10*time.Millisecond)
}

func TestCommandPlayerMissingBinary(t *testing.T) {
	p, err := NewCommandPlayer(config.MusicConfig{Command: []string{"valentine-no-such-player"}})
	require.NoError(t, err)

	tg := NewToggle(p)
	assert.False(t, tg.Toggle(context.Background()))
	assert.False(t, p.Running())
}
