package music

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"valentine/internal/config"
	appLog "valentine/internal/log"
)

// CommandPlayer plays the track through an external audio command such as
// mpv. Looping is left to the command's own flags.
type CommandPlayer struct {
	argv []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewCommandPlayer expands cfg.Command. "{file}" becomes cfg.File and
// "{volume}" the volume as a 0-100 percentage.
func NewCommandPlayer(cfg config.MusicConfig) (*CommandPlayer, error) {
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, ErrNoPlayer
	}
	return &CommandPlayer{argv: expandArgs(cfg.Command, cfg.File, cfg.Volume)}, nil
}

func expandArgs(argv []string, file string, volume float64) []string {
	vol := strconv.Itoa(int(math.Round(volume * 100)))
	r := strings.NewReplacer("{file}", file, "{volume}", vol)
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = r.Replace(a)
	}
	return out
}

// Play starts the command unless it is already running. The process is
// killed when ctx is cancelled.
func (p *CommandPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("music: start %s: %w", p.argv[0], err)
	}
	done := make(chan struct{})
	p.cmd, p.done = cmd, done

	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil {
			appLog.Debug("music player exited", "err", err)
		}
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd, p.done = nil, nil
		}
		p.mu.Unlock()
	}()
	return nil
}

// Pause kills the running command and waits for it to exit.
func (p *CommandPlayer) Pause() error {
	p.mu.Lock()
	cmd, done := p.cmd, p.done
	p.cmd, p.done = nil, nil
	p.mu.Unlock()
	if cmd == nil {
		return nil
	}

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("music: stop: %w", err)
	}
	<-done
	return nil
}

// Running reports whether the command is alive.
func (p *CommandPlayer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}
