// Package sequence drives the one-way run of full-screen views:
// Loading, Greeting, Question, Celebrating, Invitation.
package sequence

// ViewState selects the full-screen view currently presented.
type ViewState uint8

const (
	// Loading is the opening view; it always starts a session.
	Loading ViewState = iota
	// Greeting shows the hero message and, after a delay, a continue action.
	Greeting
	// Question asks the question and hosts the decline counter.
	Question
	// Celebrating plays confetti for a fixed time.
	Celebrating
	// Invitation is terminal and shows the event card.
	Invitation
)

// String returns the string representation of ViewState.
func (s ViewState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Greeting:
		return "greeting"
	case Question:
		return "question"
	case Celebrating:
		return "celebrating"
	case Invitation:
		return "invitation"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s ViewState) IsTerminal() bool {
	return s == Invitation
}

// Next returns the only view reachable from s, and false for the terminal view.
func (s ViewState) Next() (ViewState, bool) {
	switch s {
	case Loading:
		return Greeting, true
	case Greeting:
		return Question, true
	case Question:
		return Celebrating, true
	case Celebrating:
		return Invitation, true
	default:
		return s, false
	}
}

// CanTransitionTo reports whether target directly follows s.
func (s ViewState) CanTransitionTo(target ViewState) bool {
	next, ok := s.Next()
	return ok && next == target
}
