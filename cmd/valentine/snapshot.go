package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"valentine/internal/capture"
	appLog "valentine/internal/log"
	"valentine/internal/web"
)

var (
	snapshotURL    string
	snapshotOut    string
	snapshotWidth  int
	snapshotHeight int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the invitation page as a PNG with headless Chromium",
	Long: `snapshot renders the invitation page and writes a screenshot. Without
--url the page is served from a temporary local listener.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "Page to capture (default: serve it locally)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "invitation.png", "Output PNG path")
	snapshotCmd.Flags().IntVar(&snapshotWidth, "width", capture.DefaultWidth, "Viewport width")
	snapshotCmd.Flags().IntVar(&snapshotHeight, "height", capture.DefaultHeight, "Viewport height")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	opts := capture.Options{
		URL:        snapshotURL,
		OutputPath: snapshotOut,
		Width:      snapshotWidth,
		Height:     snapshotHeight,
	}
	if opts.URL != "" {
		return capture.InvitationPNG(cmd.Context(), opts)
	}

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("snapshot: listen: %w", err)
	}
	httpSrv := &http.Server{
		Handler:           web.NewServer(conf, debug).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	opts.URL = "http://" + l.Addr().String() + "/"
	appLog.Debug("serving page for capture", "url", opts.URL)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		if err := httpSrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
		return capture.InvitationPNG(ctx, opts)
	})
	return g.Wait()
}
