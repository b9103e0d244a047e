package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/noharmcheck/internal/config"
	"github.com/gyeh/noharmcheck/internal/exitcode"
	"github.com/gyeh/noharmcheck/internal/ingest"
	"github.com/gyeh/noharmcheck/internal/logging"
	"github.com/gyeh/noharmcheck/internal/metrics"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
)

var omitRecords bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a batch without touching the database",
	RunE:  runValidate,
}

func init() {
	addInputFlags(validateCmd)
	validateCmd.Flags().BoolVar(&omitRecords, "omit-records", false, "Drop parsed records from the JSON report, keeping file metadata")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := loadConfig(cmd); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	files, warnings, err := cfg.ResolveFiles()
	if err != nil {
		log.Error().Err(err).Msg("resolve input files failed")
		os.Exit(exitcode.UsageError)
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	for _, cat := range config.MissingCategories(files) {
		log.Warn().Str("category", string(cat)).Msg("no input file for category")
	}

	batch, err := ingest.LoadBatch(ctx, log, schema.Default, files, false)
	if err != nil {
		log.Error().Err(err).Msg("validation failed to run")
		os.Exit(exitcode.ValidationError)
	}

	printReport(batch.Report)

	if err := writeOutputs(log, batch); err != nil {
		log.Error().Err(err).Msg("write outputs failed")
		os.Exit(exitcode.StoreError)
	}

	switch batch.Report.Summary.Status {
	case report.StatusError:
		os.Exit(exitcode.ValidationError)
	case report.StatusWarn:
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

// writeOutputs writes the JSON report and the metrics textfile when requested.
func writeOutputs(log zerolog.Logger, batch *ingest.Batch) error {
	if cfg.ReportPath != "" {
		r := batch.Report
		if omitRecords {
			r = r.WithoutRecords()
		}
		if err := r.WriteFile(cfg.ReportPath); err != nil {
			return err
		}
		log.Info().Str("path", cfg.ReportPath).Msg("report written")
	}

	if cfg.MetricsFile != "" {
		m := metrics.NewCollector()
		m.ObserveValidation(batch.DurationValidate)
		m.RecordReport(batch.Report)
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Info().Str("path", cfg.MetricsFile).Msg("metrics written")
	}
	return nil
}

func printReport(r *report.Report) {
	fmt.Printf("=== noharmcheck validate (%s) ===\n", r.Schema)
	for _, c := range model.AllCategories {
		res := r.Files[c.Key]
		if res == nil {
			continue
		}
		fmt.Printf("%-14s %-5s %6d records %4d columns %4d issues %4d warnings\n",
			c.Label, res.Status, res.RecordCount, res.ColumnCount, len(res.Issues), len(res.Warnings))
		for _, issue := range res.Issues {
			fmt.Printf("    issue:   %s\n", issue)
		}
		for _, w := range res.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}
	fmt.Printf("\nResult: %s (%s)\n", r.Summary.Status, r.Summary.Message)
}
