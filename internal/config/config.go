// Package config loads and validates the generator's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-docpress/internal/model"
	"github.com/alnah/go-docpress/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxNameLength = 100
	MaxURLLength  = 2048
	MaxPathLength = 4096
)

// MaxWorkers caps generation.workers.
const MaxWorkers = 8

// Config holds all configuration for a generation run.
type Config struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Brand      BrandConfig      `yaml:"brand"`
	Fonts      FontsConfig      `yaml:"fonts"`
	Generation GenerationConfig `yaml:"generation"`
	Canonical  CanonicalConfig  `yaml:"canonical"`
	Converters ConvertersConfig `yaml:"converters"`
	Registry   RegistryConfig   `yaml:"registry"`
}

// SourcesConfig lists discovery roots.
type SourcesConfig struct {
	Roots  []RootConfig `yaml:"roots"`
	Ignore []string     `yaml:"ignore"` // doublestar patterns relative to each root
}

// RootConfig is one discovery root. An empty Folder groups output by category.
type RootConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
	Folder string `yaml:"folder"`
}

// OutputConfig defines where artifacts land and how they are addressed.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	PublicBase      string `yaml:"publicBase"`
	GroupByCategory bool   `yaml:"groupByCategory"`
}

// BrandConfig overrides the house brand. Empty fields keep the default.
type BrandConfig struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
	Site   string `yaml:"site"`
}

// FontsConfig locates the four TTF faces.
type FontsConfig struct {
	Dir            string `yaml:"dir"` // searched before the built-in asset dirs
	HeadingRegular string `yaml:"headingRegular"`
	HeadingBold    string `yaml:"headingBold"`
	BodyRegular    string `yaml:"bodyRegular"`
	BodyBold       string `yaml:"bodyBold"`
}

// GenerationConfig tunes the orchestrator.
type GenerationConfig struct {
	Workers     int      `yaml:"workers"`    // 0 = sequential
	RealFloor   int64    `yaml:"realFloor"`  // bytes; smaller outputs are not real renders
	FreshSlack  string   `yaml:"freshSlack"` // duration, e.g. "1s"
	Editorial   []string `yaml:"editorial"`  // id patterns routed to the editorial handler
	Mandatory   []string `yaml:"mandatory"`  // id patterns that must not fall back to a placeholder
	Webpage     bool     `yaml:"webpage"`    // enable the headless browser handler
	Compression bool     `yaml:"compression"`
}

// CanonicalConfig picks the variant rendered at the canonical path.
type CanonicalConfig struct {
	Tier    string `yaml:"tier"`
	Format  string `yaml:"format"`
	Quality string `yaml:"quality"`
}

// ConvertersConfig points at external converters.
type ConvertersConfig struct {
	Soffice       string `yaml:"soffice"`
	OfficeTimeout string `yaml:"officeTimeout"`
	Browser       string `yaml:"browser"`
}

// RegistryConfig defines the emitted indexes.
type RegistryConfig struct {
	Path        string `yaml:"path"`
	Manifest    string `yaml:"manifest"`
	Database    string `yaml:"database"`    // empty = no SQLite sync
	MetricsFile string `yaml:"metricsFile"` // empty = no textfile export
}

// DefaultConfig returns the layout of the content site: two roots, output
// under public/assets/downloads grouped by category.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Roots: []RootConfig{
				{Path: "content/downloads", Bucket: "content-downloads"},
				{Path: "lib/pdf", Bucket: "lib-pdf", Folder: "lib-pdf"},
			},
		},
		Output: OutputConfig{
			Dir:             "public/assets/downloads",
			PublicBase:      "/assets/downloads",
			GroupByCategory: true,
		},
		Generation: GenerationConfig{
			RealFloor:  8 << 10,
			FreshSlack: "1s",
			Editorial:  []string{"*editorial*", "*strategic*"},
		},
		Canonical: CanonicalConfig{
			Tier:    string(model.TierFree),
			Format:  string(model.FormatA4),
			Quality: string(model.QualityPremium),
		},
		Converters: ConvertersConfig{OfficeTimeout: "120s"},
		Registry: RegistryConfig{
			Path:     "public/assets/downloads/registry.json",
			Manifest: "public/assets/downloads/manifest.json",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a run.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if len(c.Sources.Roots) == 0 {
		return fmt.Errorf("%w: sources.roots: at least one root is required", ErrInvalidValue)
	}
	for i, r := range c.Sources.Roots {
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("%w: sources.roots[%d].path: required", ErrInvalidValue, i)
		}
		if err := validateFieldLength(fmt.Sprintf("sources.roots[%d].path", i), r.Path, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validatePatterns("sources.ignore", c.Sources.Ignore); err != nil {
		return err
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("%w: output.dir: required", ErrInvalidValue)
	}
	if err := validateFieldLength("output.publicBase", c.Output.PublicBase, MaxURLLength); err != nil {
		return err
	}

	if err := validateFieldLength("brand.name", c.Brand.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("brand.author", c.Brand.Author, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("brand.site", c.Brand.Site, MaxURLLength); err != nil {
		return err
	}

	g := c.Generation
	if g.Workers < 0 || g.Workers > MaxWorkers {
		return fmt.Errorf("%w: generation.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, g.Workers)
	}
	if g.RealFloor < 0 {
		return fmt.Errorf("%w: generation.realFloor: must not be negative", ErrInvalidValue)
	}
	if _, err := parseDuration("generation.freshSlack", g.FreshSlack); err != nil {
		return err
	}
	if err := validatePatterns("generation.editorial", g.Editorial); err != nil {
		return err
	}
	if err := validatePatterns("generation.mandatory", g.Mandatory); err != nil {
		return err
	}

	if _, err := model.ParseTier(c.Canonical.Tier); err != nil {
		return fmt.Errorf("canonical.tier: %w", err)
	}
	if _, err := model.ParseFormat(c.Canonical.Format); err != nil {
		return fmt.Errorf("canonical.format: %w", err)
	}
	if _, err := model.ParseQuality(c.Canonical.Quality); err != nil {
		return fmt.Errorf("canonical.quality: %w", err)
	}

	if _, err := parseDuration("converters.officeTimeout", c.Converters.OfficeTimeout); err != nil {
		return err
	}
	return nil
}

// FreshSlack returns generation.freshSlack, 0 when unset.
func (c *Config) FreshSlack() time.Duration {
	d, _ := parseDuration("", c.Generation.FreshSlack)
	return d
}

// OfficeTimeout returns converters.officeTimeout, 0 when unset.
func (c *Config) OfficeTimeout() time.Duration {
	d, _ := parseDuration("", c.Converters.OfficeTimeout)
	return d
}

func parseDuration(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s: %q is not a duration", ErrInvalidValue, field, s)
	}
	return d, nil
}

func validatePatterns(field string, patterns []string) error {
	for i, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %s[%d]: bad pattern %q", ErrInvalidValue, field, i, p)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-docpress/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-docpress", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
