package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gyeh/noharmcheck/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a noharmcheck run.
type Config struct {
	DSN         string
	LogFormat   string // "text" or "json"
	Files       map[model.Category]string
	Dir         string // directory whose files are routed by name
	ReportPath  string
	MetricsFile string
	ActivateRun bool
	Force       bool
	KeepStaging bool
	DryRun      bool
}

// yamlConfig is the on-disk batch manifest.
type yamlConfig struct {
	Files       map[string]string `yaml:"files"`
	Dir         string            `yaml:"dir"`
	Report      string            `yaml:"report"`
	MetricsFile string            `yaml:"metrics_file"`
}

// LoadFromFile reads a YAML batch manifest and merges it into Config. Values
// already set from flags win. Relative paths resolve against the manifest's
// directory.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	base := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	if c.Files == nil {
		c.Files = make(map[model.Category]string)
	}
	for key, p := range yc.Files {
		info, ok := model.CategoryByKey(key)
		if !ok {
			return fmt.Errorf("unknown category %q in config", key)
		}
		if c.Files[info.Key] == "" {
			c.Files[info.Key] = rel(p)
		}
	}
	if c.Dir == "" {
		c.Dir = rel(yc.Dir)
	}
	if c.ReportPath == "" {
		c.ReportPath = rel(yc.Report)
	}
	if c.MetricsFile == "" {
		c.MetricsFile = rel(yc.MetricsFile)
	}
	return nil
}

// Validate checks that at least one input is configured and every explicit
// file is accessible.
func (c *Config) Validate() error {
	if len(c.Files) == 0 && c.Dir == "" {
		return fmt.Errorf("no input files: pass per-category flags, --dir or --config")
	}
	for _, cat := range model.CategoryKeys() {
		p, ok := c.Files[cat]
		if !ok || p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%s file not accessible: %w", cat, err)
		}
	}
	if c.Dir != "" {
		st, err := os.Stat(c.Dir)
		if err != nil {
			return fmt.Errorf("dir not accessible: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("--dir %s is not a directory", c.Dir)
		}
	}
	return nil
}

// ValidateWithDSN checks inputs and the DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or NOHARM_DB_URL is required")
	}
	return nil
}

// ResolveFiles returns the input path of every category. Explicit files win;
// the remaining categories are filled from Dir by file name. Warnings report
// files that could not be routed or were ambiguous.
func (c *Config) ResolveFiles() (map[model.Category]string, []string, error) {
	out := make(map[model.Category]string, len(model.AllCategories))
	taken := make(map[model.Category]bool)
	for cat, p := range c.Files {
		if p != "" {
			out[cat] = p
			taken[cat] = true
		}
	}
	if c.Dir == "" {
		return out, nil, nil
	}

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	routed, warnings := model.RouteNames(names, nil)
	for _, cat := range model.CategoryKeys() {
		i, ok := routed[cat]
		if !ok {
			continue
		}
		if taken[cat] {
			warnings = append(warnings, fmt.Sprintf("file %s skipped: %s set explicitly", names[i], cat))
			continue
		}
		out[cat] = filepath.Join(c.Dir, names[i])
	}
	return out, warnings, nil
}

// MissingCategories lists the categories without an input, in canonical order.
func MissingCategories(files map[model.Category]string) []model.Category {
	var missing []model.Category
	for _, cat := range model.CategoryKeys() {
		if files[cat] == "" {
			missing = append(missing, cat)
		}
	}
	return missing
}
