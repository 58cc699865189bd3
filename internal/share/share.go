// Package share delivers the invitation to a platform share capability and
// falls back to the clipboard or a per-platform calendar handoff when no such
// capability exists.
package share

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable reports that the platform has no share capability.
	ErrUnavailable = errors.New("share: capability unavailable")
	// ErrCancelled reports that the user dismissed or the platform rejected
	// the share action.
	ErrCancelled = errors.New("share: cancelled")
)

// Attachment is a file handed to the share capability alongside the text.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Payload is what a share action carries.
type Payload struct {
	Title      string
	Text       string
	URL        string
	Attachment *Attachment
}

// Capability is the platform share surface.
//
// ShareIfAvailable returns nil on success, ErrUnavailable when the platform
// cannot share at all and ErrCancelled when the user backed out.
type Capability interface {
	ShareIfAvailable(ctx context.Context, p Payload) error
	CopyToClipboard(ctx context.Context, text string) error
}

// Outcome is how a share action ended.
type Outcome int

const (
	OutcomeShared Outcome = iota
	OutcomeCopied
	OutcomeCancelled
	OutcomeFailed
	OutcomeOpened
	OutcomeDownloaded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShared:
		return "shared"
	case OutcomeCopied:
		return "copied"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	case OutcomeOpened:
		return "opened"
	case OutcomeDownloaded:
		return "downloaded"
	default:
		return "unknown"
	}
}

// Result is reported back to the presenter. Notice, when set, is shown to the
// user as a transient message. Target is the file path or URL a fallback used.
// Err is informational; no outcome halts the caller.
type Result struct {
	Outcome Outcome
	Notice  string
	Target  string
	Err     error
}
