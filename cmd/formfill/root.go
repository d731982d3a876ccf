package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vpetrenko/formfill-agent/internal/config"
)

var version = "dev"

type rootFlags struct {
	configPath string
	headless   bool
	verbose    bool
	storage    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "formfill",
		Short:         "Discover, map, and fill web forms from structured data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config file (default: ./formfill.yaml when present)")
	pf.BoolVar(&flags.headless, "headless", true, "Run the browser without a window")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&flags.storage, "storage", "", "Path to a saved browser storage state")

	cmd.AddCommand(newFillCmd(flags))
	cmd.AddCommand(newDetectCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig merges file and environment settings, then lets explicit flags
// win.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = flags.headless
	}
	if cmd.Flags().Changed("storage") {
		cfg.StorageState = flags.storage
	}
	log.Debug().
		Bool("headless", cfg.Headless).
		Str("required_policy", cfg.RequiredPolicy).
		Msg("config loaded")
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the formfill version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "formfill", version)
		},
	}
}
