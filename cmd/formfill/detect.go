package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vpetrenko/formfill-agent/internal/browser"
	"github.com/vpetrenko/formfill-agent/internal/discover"
)

// detect opens the form, runs discovery, prints the field digest, and exits
// without touching anything. Useful for building the data file for fill.
func newDetectCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <form-url>",
		Short: "Detect form fields and print one line per field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			launcher, err := browser.NewLauncher(ctx, cfg.Headless)
			if err != nil {
				return fmt.Errorf("browser init: %w", err)
			}
			defer launcher.Close()

			session, err := launcher.NewSession(ctx, cfg.StorageState, cfg.NavTimeout)
			if err != nil {
				return fmt.Errorf("browser session: %w", err)
			}
			defer session.Close(ctx)

			if err := session.Navigate(ctx, args[0]); err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			snap, err := session.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("page scan: %w", err)
			}

			detector := discover.New(log.With().Str("comp", "discover").Logger())
			fields := detector.Detect(snap)
			if len(fields) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no form fields detected")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), discover.Summary(fields))
			return nil
		},
	}
	return cmd
}
