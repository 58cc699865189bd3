package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"valentine/internal/config"
	appLog "valentine/internal/log"
)

var (
	configPath string
	debug      bool
)

// rootCmd plays the proposal when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "valentine",
	Short: "A Valentine's Day proposal with an invitation you can save",
	Long: `valentine plays a short proposal in the terminal and ends on an
invitation card with a countdown, a calendar export and a share action.

The same invitation can be served as a web page (serve), exported as an
iCalendar file (ics), turned into a calendar link (link) or captured as
an image (snapshot).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			appLog.SetLevel(appLog.LevelDebug)
		}
	},
	RunE: runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(icsCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appLog.Error("valentine failed", err)
		stop()
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "./valentine.yaml"
	}
	return dir + "/valentine/config.yaml"
}

// loadConfig reads the config, writing defaults on first run.
func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", configPath)
			return nil, err
		}
		// Defaults are usable even if they could not be written back.
		appLog.Error("failed to write default config", err, "config_path", configPath)
	}

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"platform", conf.Platform,
		"event_month", conf.Event.Month,
		"event_day", conf.Event.Day,
		"event_start", conf.Event.Start,
	)
	return conf, nil
}
