package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"

	"valentine/internal/config"
	appLog "valentine/internal/log"
)

// Opener hands a URL or file path to the desktop environment.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// CommandOpener runs an external command with the target appended.
type CommandOpener struct {
	argv []string
}

// NewCommandOpener returns an opener for argv, or the platform default
// (xdg-open, open, rundll32) when argv is empty.
func NewCommandOpener(argv []string) *CommandOpener {
	if len(argv) == 0 {
		argv = defaultOpener()
	}
	return &CommandOpener{argv: append([]string(nil), argv...)}
}

func defaultOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// Open runs the command and waits for it to exit.
func (o *CommandOpener) Open(ctx context.Context, target string) error {
	args := append(append([]string(nil), o.argv[1:]...), target)
	cmd := exec.CommandContext(ctx, o.argv[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("share: %s %s: %w (%s)", o.argv[0], target, err, out)
	}
	return nil
}

// Clipboard writes text to a clipboard.
type Clipboard func(ctx context.Context, text string) error

// SystemClipboard writes to the OS clipboard.
func SystemClipboard(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("share: no clipboard utility: %w", ErrUnavailable)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("share: clipboard write: %w", err)
	}
	return nil
}

// Native shares through the desktop opener. URLs are opened directly;
// attachments are written to Dir first and the file is opened instead.
type Native struct {
	Opener    Opener
	Clipboard Clipboard
	// Dir receives attachments. Defaults to a subdirectory of os.TempDir.
	Dir string
}

// NewNative returns a Native capability backed by opener and the system
// clipboard.
func NewNative(opener Opener) *Native {
	return &Native{Opener: opener, Clipboard: SystemClipboard}
}

func (n *Native) ShareIfAvailable(ctx context.Context, p Payload) error {
	if n.Opener == nil {
		return ErrUnavailable
	}
	target := p.URL
	if p.Attachment != nil {
		path, err := n.writeAttachment(p.Attachment)
		if err != nil {
			return err
		}
		target = path
	}
	if target == "" {
		return fmt.Errorf("share: nothing to share: %w", ErrUnavailable)
	}

	if err := n.Opener.Open(ctx, target); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		appLog.Debug("share opener failed", "target", target, "err", err)
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

func (n *Native) CopyToClipboard(ctx context.Context, text string) error {
	if n.Clipboard == nil {
		return SystemClipboard(ctx, text)
	}
	return n.Clipboard(ctx, text)
}

func (n *Native) writeAttachment(a *Attachment) (string, error) {
	dir := n.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "valentine-share")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("share: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("share: write attachment: %w", err)
	}
	return path, nil
}

// Absent is a platform without a share capability. Only the clipboard works.
type Absent struct {
	Clipboard Clipboard
}

func (Absent) ShareIfAvailable(context.Context, Payload) error {
	return ErrUnavailable
}

func (a Absent) CopyToClipboard(ctx context.Context, text string) error {
	if a.Clipboard == nil {
		return SystemClipboard(ctx, text)
	}
	return a.Clipboard(ctx, text)
}

// FromConfig builds the capability and opener described by cfg.
func FromConfig(cfg config.ShareConfig) (Capability, Opener) {
	opener := NewCommandOpener(cfg.Opener)
	if !cfg.Native {
		return Absent{}, opener
	}
	return NewNative(opener), opener
}
