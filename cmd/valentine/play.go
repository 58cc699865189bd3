package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"valentine/internal/config"
	"valentine/internal/invite"
	appLog "valentine/internal/log"
	"valentine/internal/music"
	"valentine/internal/sequence"
	"valentine/internal/share"
	"valentine/internal/tui"
)

var logFile string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the proposal in the terminal",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "valentine.log"), "Log destination while the UI owns the terminal")
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
}

func runPlay(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	// The UI owns the terminal; logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	appLog.SetOutput(f)
	defer appLog.SetOutput(os.Stderr)

	return tui.Run(cmd.Context(), playDeps(conf))
}

func playDeps(conf *config.Config) tui.Deps {
	timing := sequence.TimingFromConfig(conf.Timing)
	session := sequence.NewSession(
		sequence.WithTiming(timing),
		sequence.WithWideViewport(conf.WideViewport),
	)

	var toggle *music.Toggle
	if p, err := music.NewCommandPlayer(conf.Music); err == nil {
		toggle = music.NewToggle(p)
	} else {
		appLog.Debug("music disabled", "err", err)
	}

	capability, opener := share.FromConfig(conf.Share)
	return tui.Deps{
		Session:     session,
		Timing:      timing,
		Resolver:    invite.NewResolver(invite.SettingsFromConfig(conf.Event), conf.Location()),
		Music:       toggle,
		Share:       capability,
		Opener:      opener,
		Platform:    share.ParsePlatform(conf.Platform),
		PageURL:     conf.PageURL,
		DownloadDir: conf.DownloadDir,
	}
}
