package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"valentine/internal/invite"
	appLog "valentine/internal/log"
	"valentine/internal/model"
)

var icsOut string

var icsCmd = &cobra.Command{
	Use:   "ics",
	Short: "Write the invitation as an iCalendar file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := resolveNow()
		if err != nil {
			return err
		}
		body, err := invite.ToCalendarFile(d)
		if err != nil {
			return err
		}
		if icsOut == "-" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(icsOut), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(icsOut, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", icsOut, err)
		}
		appLog.Info("calendar file written", "path", icsOut, "date", d.DisplayDate)
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print the calendar deep link for the invitation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := resolveNow()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), invite.CalendarLink(d))
		return err
	},
}

func init() {
	icsCmd.Flags().StringVarP(&icsOut, "out", "o", invite.FileName, `Output path ("-" for stdout)`)
}

func resolveNow() (model.EventDetails, error) {
	conf, err := loadConfig()
	if err != nil {
		return model.EventDetails{}, err
	}
	r := invite.NewResolver(invite.SettingsFromConfig(conf.Event), conf.Location())
	return r.Resolve(time.Now()), nil
}
