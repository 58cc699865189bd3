package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned for continue before the greeting delay elapsed.
	ErrNotReady = errors.New("sequence: continue is not enabled yet")
	// ErrInvalidTransition is returned for an event the current view does
	// not accept.
	ErrInvalidTransition = errors.New("sequence: invalid transition")
	// ErrNoPrompt is returned for prompt actions while no prompt is open.
	ErrNoPrompt = errors.New("sequence: no prompt is open")
	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("sequence: session closed")
)

// EventKind names what happened.
type EventKind uint8

const (
	EventLoadingElapsed EventKind = iota
	EventGreetingReady
	EventContinue
	EventConfirm
	EventDecline
	EventDismissPrompt
	EventConfirmPrompt
	EventCelebrationElapsed
)

func (k EventKind) String() string {
	switch k {
	case EventLoadingElapsed:
		return "loading-elapsed"
	case EventGreetingReady:
		return "greeting-ready"
	case EventContinue:
		return "continue"
	case EventConfirm:
		return "confirm"
	case EventDecline:
		return "decline"
	case EventDismissPrompt:
		return "dismiss-prompt"
	case EventConfirmPrompt:
		return "confirm-prompt"
	case EventCelebrationElapsed:
		return "celebration-elapsed"
	default:
		return "unknown"
	}
}

// Event is one input to the machine. Roll is only read for EventDecline.
type Event struct {
	Kind EventKind
	Roll Roll
}

// Machine is the complete sequencer state as an immutable value. Apply
// returns a new Machine and never modifies the receiver.
type Machine struct {
	view            ViewState
	continueEnabled bool
	decline         DeclineState
	prompt          Prompt
	wide            bool
}

// NewMachine returns a Machine at Loading. wide selects the larger nudge
// range for the decline control.
func NewMachine(wide bool) Machine {
	return Machine{view: Loading, decline: initialDecline(), wide: wide}
}

func (m Machine) View() ViewState { return m.view }
func (m Machine) ContinueEnabled() bool { return m.continueEnabled }
func (m Machine) Decline() DeclineState { return m.decline }
func (m Machine) Prompt() Prompt { return m.prompt }

// Confirmed reports the RSVP badge, shown once the invitation is reached.
func (m Machine) Confirmed() bool { return m.view == Invitation }

// Apply is the transition function. On error the returned Machine equals m.
func (m Machine) Apply(ev Event) (Machine, error) {
	switch ev.Kind {
	case EventLoadingElapsed:
		if m.view != Loading {
			return m, m.invalid(ev)
		}
		m.view = Greeting
		m.continueEnabled = false
		return m, nil

	case EventGreetingReady:
		if m.view != Greeting {
			return m, m.invalid(ev)
		}
		m.continueEnabled = true
		return m, nil

	case EventContinue:
		if m.view != Greeting {
			return m, m.invalid(ev)
		}
		if !m.continueEnabled {
			return m, ErrNotReady
		}
		m.view = Question
		m.continueEnabled = false
		return m, nil

	case EventConfirm:
		if m.view != Question {
			return m, m.invalid(ev)
		}
		return m.celebrate(), nil

	case EventDecline:
		if m.view != Question {
			return m, m.invalid(ev)
		}
		d, p, opened := decline(m.decline, ev.Roll, m.wide)
		m.decline = d
		if opened {
			m.prompt = p
		}
		return m, nil

	case EventDismissPrompt:
		if m.view != Question {
			return m, m.invalid(ev)
		}
		if !m.prompt.Open {
			return m, ErrNoPrompt
		}
		// The counter is kept; only the prompt closes.
		m.prompt = Prompt{}
		return m, nil

	case EventConfirmPrompt:
		if m.view != Question {
			return m, m.invalid(ev)
		}
		if !m.prompt.Open {
			return m, ErrNoPrompt
		}
		return m.celebrate(), nil

	case EventCelebrationElapsed:
		if m.view != Celebrating {
			return m, m.invalid(ev)
		}
		m.view = Invitation
		return m, nil
	}
	return m, m.invalid(ev)
}

func (m Machine) celebrate() Machine {
	m.view = Celebrating
	m.prompt = Prompt{}
	return m
}

func (m Machine) invalid(ev Event) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Kind, m.view)
}
