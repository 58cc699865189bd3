package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"valentine/internal/invite"
	appLog "valentine/internal/log"
	"valentine/internal/model"
)

// Platform selects the save-the-date fallback.
type Platform string

const (
	PlatformDesktop Platform = "desktop"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// ParsePlatform maps a config value to a Platform; unknown values are desktop.
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformIOS, PlatformAndroid:
		return Platform(s)
	default:
		return PlatformDesktop
	}
}

// CopiedNotice is shown after the page link lands on the clipboard.
const CopiedNotice = "Link copied to clipboard!"

// Invite shares the invitation page. Without a share capability the page URL
// is copied to the clipboard instead. A cancelled share is silent.
func Invite(ctx context.Context, c Capability, pageURL string) Result {
	err := c.ShareIfAvailable(ctx, Payload{
		Title: "You're Invited! 💕",
		Text:  "Check out this special Valentine's Day invitation!",
		URL:   pageURL,
	})
	switch {
	case err == nil:
		return Result{Outcome: OutcomeShared, Target: pageURL}
	case errors.Is(err, ErrUnavailable):
		// fall through to the clipboard
	default:
		appLog.Debug("share dismissed", "err", err)
		return Result{Outcome: OutcomeCancelled}
	}

	if err := c.CopyToClipboard(ctx, pageURL); err != nil {
		appLog.Error("clipboard fallback failed", err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	return Result{Outcome: OutcomeCopied, Notice: CopiedNotice, Target: pageURL}
}

// SaveDate hands the calendar file for d to the share capability. If the
// platform cannot share it, or the user backs out, it falls back by
// platform: iOS opens the file, Android opens the calendar deep link and
// desktop writes the file into dir.
func SaveDate(ctx context.Context, c Capability, opener Opener, d model.EventDetails, platform Platform, dir string) Result {
	body, err := invite.ToCalendarFile(d)
	if err != nil {
		appLog.Error("calendar export failed", err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	err = c.ShareIfAvailable(ctx, Payload{
		Title: "Save the date 💕",
		Text:  "Add this to your calendar",
		Attachment: &Attachment{
			Name:     invite.FileName,
			MIMEType: invite.MIMEType,
			Data:     body,
		},
	})
	if err == nil {
		return Result{Outcome: OutcomeShared}
	}
	appLog.Debug("save-the-date share unavailable, falling back", "platform", string(platform), "err", err)

	switch platform {
	case PlatformIOS:
		path, err := writeCalendar(dir, body)
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		return open(ctx, opener, path)
	case PlatformAndroid:
		return open(ctx, opener, invite.CalendarLink(d))
	default:
		path, err := writeCalendar(dir, body)
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		appLog.Info("calendar file saved", "path", path)
		return Result{Outcome: OutcomeDownloaded, Notice: "Saved " + path, Target: path}
	}
}

func open(ctx context.Context, opener Opener, target string) Result {
	if opener == nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("share: no opener for %s: %w", target, ErrUnavailable)}
	}
	if err := opener.Open(ctx, target); err != nil {
		appLog.Error("open fallback failed", err, "target", target)
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	return Result{Outcome: OutcomeOpened, Target: target}
}

// writeCalendar stores body as dir/valentine-date.ics via temp file + rename.
func writeCalendar(dir string, body []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("share: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".valentine-date-*.tmp")
	if err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("share: write calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	path := filepath.Join(dir, invite.FileName)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("share: %w", err)
	}
	return path, nil
}
