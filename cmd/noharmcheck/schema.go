package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/schema"
)

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the unified schema of every category",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	reg := schema.Default

	if schemaJSON {
		var out []*schema.UnifiedSchema
		for _, c := range model.AllCategories {
			if u, ok := reg.Lookup(c.Key); ok {
				out = append(out, u)
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("=== %s unified schema ===\n", reg.Label)
	for _, c := range model.AllCategories {
		u, ok := reg.Lookup(c.Key)
		if !ok {
			continue
		}
		fmt.Printf("\n%s (%s)\n", c.Label, c.Key)
		fmt.Printf("  key:      %s\n", u.KeyLabel())
		fmt.Printf("  required: %s\n", strings.Join(u.Required, ", "))
		fmt.Printf("  allowed:  %s\n", strings.Join(u.SortedAllowed(), ", "))
		for _, tag := range schema.AllTypeTags {
			if fields := u.TypeHints[tag]; len(fields) > 0 {
				fmt.Printf("  %-8s  %s\n", tag+":", strings.Join(fields, ", "))
			}
		}
		for _, ref := range u.Refs {
			fmt.Printf("  ref:      %s -> %s\n", ref.Field, ref.Target)
		}
	}
	return nil
}
