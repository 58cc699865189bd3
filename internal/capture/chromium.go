// Package capture renders the served invitation page to a PNG with a
// headless Chromium, for previews and sharing as an image.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "valentine/internal/log"
)

// Default capture parameters: a phone-sized portrait viewport.
const (
	DefaultWidth   = 430
	DefaultHeight  = 932
	DefaultTimeout = 30 * time.Second

	// ReadySelector matches the invitation card once the page has filled it.
	ReadySelector = `[data-ready="true"]`
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL of the invitation page, e.g. "http://127.0.0.1:8080/".
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport in CSS pixels; zero means default.
	Width  int
	Height int

	// Timeout bounds the whole capture; zero means DefaultTimeout.
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// invitationURL asks the page to open directly on the invitation card
// instead of playing the view sequence.
func invitationURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("capture: invalid URL: %w", err)
	}
	q := u.Query()
	q.Set("view", "invitation")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// InvitationPNG opens the invitation view of opts.URL, waits until the card reports
// data-ready="true" and writes a full-page screenshot to opts.OutputPath.
func InvitationPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	target, err := invitationURL(opts.URL)
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Let the countdown paint once.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	appLog.Info("invitation captured", "path", opts.OutputPath, "bytes", len(png))
	return nil
}
