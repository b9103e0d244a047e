package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/exitcode"
	"github.com/gyeh/noharmcheck/internal/ingest"
	"github.com/gyeh/noharmcheck/internal/logging"
	"github.com/gyeh/noharmcheck/internal/schema"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate a batch and load it into the database",
	RunE:  runIngest,
}

func init() {
	addInputFlags(ingestCmd)
	f := ingestCmd.Flags()
	f.BoolVar(&cfg.ActivateRun, "activate", false, "Promote the run's records into noharm.records")
	f.BoolVar(&cfg.Force, "force", false, "Re-import even if the batch digest was already loaded")
	f.BoolVar(&cfg.KeepStaging, "keep-staging", false, "Keep staged records after the run")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Validate only; do not connect to the database")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		l := logging.Setup(cfg.LogFormat)
		l.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if cfg.DryRun {
		return runValidate(cmd, args)
	}

	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, schema.Default, &cfg)
	if errors.Is(err, ingest.ErrRejected) {
		fmt.Printf("Batch rejected: run %s, %d issues, %d warnings\n",
			summary.RunID, summary.IssueCount, summary.WarningCount)
		pool.Close()
		os.Exit(exitcode.ValidationError)
	}
	if err != nil {
		var pe *ingest.PipelineError
		code := exitcode.StoreError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
			switch pe.Phase {
			case "preflight":
				code = exitcode.ValidationError
			case "stage":
				code = exitcode.CopyError
			}
		} else {
			log.Error().Err(err).Msg("ingest failed")
		}
		pool.Close()
		os.Exit(code)
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Batch already loaded by run %s; nothing to do\n", summary.RunID)
		return nil
	}

	fmt.Printf("Ingest complete: run %s, %d records staged, %d promoted (%.1fs)\n",
		summary.RunID, summary.RecordsStaged, summary.RecordsPromoted, summary.DurationTotal.Seconds())
	if summary.WarningCount > 0 {
		fmt.Printf("Accepted with %d warnings\n", summary.WarningCount)
	}
	return nil
}
