package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"valentine/internal/config"
	appLog "valentine/internal/log"
	"valentine/internal/web"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the invitation page and calendar exports over HTTP",
	Long: `serve hosts the invitation page, /api/event, /valentine-date.ics and
/api/calendar-link. The config file is watched and reloaded on change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config if set)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	// CLI --listen overrides config file listen if provided.
	if listenAddr != "" {
		conf.Listen = listenAddr
	}

	srv := web.NewServer(conf, debug)
	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		next.Listen = conf.Listen
		srv.SetConfig(next)
		appLog.Info("config reloaded", "title", next.Event.Title, "timezone", next.Timezone)
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return srv.Serve(ctx) })
	g.Go(func() error { return watcher.Run(ctx) })
	return g.Wait()
}
