package sequence

import "time"

// Snapshot is an immutable copy of a session's state handed to presenters.
// Seq increases with every change; presenters can drop out-of-order copies.
type Snapshot struct {
	Seq uint64

	View        ViewState
	Previous    ViewState
	HasPrevious bool
	EnteredAt   time.Time

	ContinueEnabled bool
	Decline         DeclineState
	Prompt          Prompt

	// Confirmed is the RSVP badge: the session reached the invitation.
	Confirmed bool

	CrossFade time.Duration
}

// Visible lists the views to draw at now: the outgoing and incoming view
// while the cross-fade runs, otherwise only the current one.
func (s Snapshot) Visible(now time.Time) []ViewState {
	if s.HasPrevious && s.CrossFade > 0 && now.Sub(s.EnteredAt) < s.CrossFade {
		return []ViewState{s.Previous, s.View}
	}
	return []ViewState{s.View}
}

// FadeProgress is the linear cross-fade position in [0, 1].
func (s Snapshot) FadeProgress(now time.Time) float64 {
	if !s.HasPrevious || s.CrossFade <= 0 {
		return 1
	}
	p := float64(now.Sub(s.EnteredAt)) / float64(s.CrossFade)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
