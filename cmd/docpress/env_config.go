package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	docpress "github.com/alnah/go-docpress"
	"github.com/alnah/go-docpress/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // DOCPRESS_CONFIG: config name or path
	OutputDir  string // DOCPRESS_OUTPUT_DIR: artifact root
	FontsDir   string // DOCPRESS_FONTS_DIR: directory holding the TTF faces

	// Tier 2 - Run tuning
	Workers int  // DOCPRESS_WORKERS: parallel tasks, "auto" sizes from CPUs
	Webpage bool // DOCPRESS_WEBPAGE: enable the headless browser handler

	// Tier 3 - Outputs
	PublicBase  string // DOCPRESS_PUBLIC_BASE: URL prefix of artifacts
	Database    string // DOCPRESS_DB: SQLite registry mirror
	MetricsFile string // DOCPRESS_METRICS_FILE: Prometheus textfile
	Browser     string // DOCPRESS_BROWSER: Chrome binary
}

// knownEnvVars lists valid DOCPRESS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCPRESS_CONFIG":       true,
	"DOCPRESS_OUTPUT_DIR":   true,
	"DOCPRESS_FONTS_DIR":    true,
	"DOCPRESS_WORKERS":      true,
	"DOCPRESS_WEBPAGE":      true,
	"DOCPRESS_PUBLIC_BASE":  true,
	"DOCPRESS_DB":           true,
	"DOCPRESS_METRICS_FILE": true,
	"DOCPRESS_BROWSER":      true,
	"DOCPRESS_TEST_FONTS":   true, // read by the test suite
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers and booleans are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DOCPRESS_CONFIG"),
		OutputDir:   os.Getenv("DOCPRESS_OUTPUT_DIR"),
		FontsDir:    os.Getenv("DOCPRESS_FONTS_DIR"),
		PublicBase:  os.Getenv("DOCPRESS_PUBLIC_BASE"),
		Database:    os.Getenv("DOCPRESS_DB"),
		MetricsFile: os.Getenv("DOCPRESS_METRICS_FILE"),
		Browser:     os.Getenv("DOCPRESS_BROWSER"),
	}

	if workers := strings.TrimSpace(os.Getenv("DOCPRESS_WORKERS")); workers != "" {
		if strings.EqualFold(workers, "auto") {
			cfg.Workers = docpress.ResolvePoolSize(0)
		} else if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if v := os.Getenv("DOCPRESS_WEBPAGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Webpage = b
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized DOCPRESS_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOCPRESS_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with set environment
// variables. Flags are applied afterwards, giving
// flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		setOutputDir(cfg, env.OutputDir)
	}
	if env.FontsDir != "" {
		cfg.Fonts.Dir = env.FontsDir
	}
	if env.Workers > 0 {
		cfg.Generation.Workers = min(env.Workers, config.MaxWorkers)
	}
	if env.Webpage {
		cfg.Generation.Webpage = true
	}
	if env.PublicBase != "" {
		cfg.Output.PublicBase = env.PublicBase
	}
	if env.Database != "" {
		cfg.Registry.Database = env.Database
	}
	if env.MetricsFile != "" {
		cfg.Registry.MetricsFile = env.MetricsFile
	}
	if env.Browser != "" {
		cfg.Converters.Browser = env.Browser
	}
}
