package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"valentine/internal/sequence"
)

// mailbox keeps only the newest snapshot published by the session. The
// session observer never blocks on it, so timers firing while the program
// is busy cannot stall the session.
type mailbox struct {
	mu     sync.Mutex
	latest sequence.Snapshot
	full   bool
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (b *mailbox) put(s sequence.Snapshot) {
	b.mu.Lock()
	if !b.full || s.Seq > b.latest.Seq {
		b.latest, b.full = s, true
	}
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *mailbox) take() (sequence.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.latest, b.full
	b.full = false
	return s, ok
}

// wait delivers the next snapshot as a message.
func (b *mailbox) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-b.ready:
				if s, ok := b.take(); ok {
					return snapshotMsg(s)
				}
			}
		}
	}
}
