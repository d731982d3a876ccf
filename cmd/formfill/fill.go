package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vpetrenko/formfill-agent/internal/browser"
	"github.com/vpetrenko/formfill-agent/internal/config"
	"github.com/vpetrenko/formfill-agent/internal/fill"
)

func newFillCmd(flags *rootFlags) *cobra.Command {
	var (
		dataPath  string
		saveState string
		policy    string
	)

	cmd := &cobra.Command{
		Use:   "fill <form-url>",
		Short: "Fill and submit a form using values from a JSON data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("required-policy") {
				cfg.RequiredPolicy = policy
				if policy != string(fill.PolicyStrict) && policy != string(fill.PolicyLenient) {
					return fmt.Errorf("required-policy must be strict or lenient, got %q", policy)
				}
			}

			raw, err := os.ReadFile(dataPath)
			if err != nil {
				return fmt.Errorf("read data file: %w", err)
			}
			data, err := fill.DataFromJSON(raw)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runFill(ctx, cfg, args[0], data, saveState)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Path to a flat JSON object of field values")
	cmd.Flags().StringVar(&saveState, "save-state", "", "Path to save updated storage state after a completed run")
	cmd.Flags().StringVar(&policy, "required-policy", "strict", "What a failed required field does to the job (strict|lenient)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runFill(ctx context.Context, cfg *config.Config, formURL string, data *fill.Data, saveState string) error {
	launcher, err := browser.NewLauncher(ctx, cfg.Headless)
	if err != nil {
		return fmt.Errorf("browser init: %w", err)
	}
	defer launcher.Close()

	session, err := launcher.NewSession(ctx, cfg.StorageState, cfg.NavTimeout)
	if err != nil {
		return fmt.Errorf("browser session: %w", err)
	}

	job := fill.NewLocalJob(log.With().Str("comp", "job").Logger())
	orch := fill.NewOrchestrator(session, log.With().Str("comp", "fill").Logger(), fill.Options{
		RequiredPolicy: fill.Policy(cfg.RequiredPolicy),
		SettleWait:     cfg.SettleWait,
		SubmitWait:     cfg.SubmitWait,
		TypeDelay:      cfg.TypeDelay,
	})

	res := orch.RunFill(ctx, job, formURL, data)
	printSummary(job, res)

	if res.FinalState != fill.StateCompleted {
		// The session stays open so the operator can inspect where the run
		// stopped. Ctrl-C tears everything down.
		log.Warn().Msg("job failed; browser left open for inspection, press Ctrl-C to exit")
		<-ctx.Done()
		_ = session.Close(context.Background())
		return fmt.Errorf("fill job %s failed: %s", job.ID(), job.Error())
	}

	if saveState != "" {
		if err := session.SaveState(ctx, saveState); err != nil {
			log.Error().Err(err).Msg("save state")
		} else {
			log.Info().Str("path", saveState).Msg("storage saved")
		}
	}
	if !cfg.Headless && cfg.TeardownGrace > 0 {
		wait(ctx, cfg.TeardownGrace)
	}
	return session.Close(ctx)
}

func printSummary(job *fill.LocalJob, res fill.Result) {
	fmt.Printf("job %s finished: %s\n", job.ID(), res.FinalState)
	fmt.Printf("required fields: %d/%d filled\n", res.Summary.FilledRequired, res.Summary.TotalRequired)
	if len(res.Summary.MissingRequired) > 0 {
		fmt.Printf("missing required: %s\n", strings.Join(res.Summary.MissingRequired, ", "))
	}
	for _, out := range res.Outcomes {
		mark := "ok"
		switch {
		case out.Failed():
			mark = "failed"
		case !out.Verified:
			mark = "unverified"
		}
		fmt.Printf("  [%s] %s = %q\n", mark, out.Field.Label, out.AttemptedValue)
	}
}

func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
