package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/noharmcheck/internal/config"
	"github.com/gyeh/noharmcheck/internal/model"
)

var (
	cfg        config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "noharmcheck",
	Short: "Hospital export batch validator and loader",
	Long: "Validates the five export files of a hospital batch (prescriptions, medications, " +
		"sectors, units, frequency) against the unified NoHarm schema and loads accepted batches into Postgres.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("NOHARM_DB_URL"), "Postgres connection string (or set NOHARM_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&configPath, "config", "", "YAML batch manifest")
}

// addInputFlags registers the per-category file flags and the batch output
// flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	for _, c := range model.AllCategories {
		f.String(string(c.Key), "", c.Label+" export file")
	}
	f.StringVar(&cfg.Dir, "dir", "", "Directory whose files are routed to categories by name")
	f.StringVar(&cfg.ReportPath, "report", "", "Write the JSON report to this path")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
}

// loadConfig merges the per-category flags of cmd and the optional manifest
// into cfg. Flags win over the manifest.
func loadConfig(cmd *cobra.Command) error {
	if cfg.Files == nil {
		cfg.Files = make(map[model.Category]string)
	}
	for _, c := range model.AllCategories {
		p, err := cmd.Flags().GetString(string(c.Key))
		if err != nil {
			return err
		}
		if p != "" {
			cfg.Files[c.Key] = p
		}
	}
	if configPath != "" {
		return cfg.LoadFromFile(configPath)
	}
	return nil
}
