// Package config loads themesift settings from a YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, THEMESIFT_*
// environment variables (a .env file is honored by the CLI), command-line flags.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the config file looked up when none is given.
	DefaultPath = "themesift.yaml"

	defaultPenaltyWeight = 0.2
	defaultMinDocuments  = 2
	defaultCounting      = "characters"
	defaultMatcher       = "exact"
)

// Config is the root configuration.
type Config struct {
	Themes     []string            `yaml:"themes"`
	ThemeFile  string              `yaml:"theme_file"`
	Keywords   map[string][]string `yaml:"keywords"`
	Boundaries []string            `yaml:"boundaries"`
	Ignorable  []string            `yaml:"ignorable"`

	PenaltyWeight *float64 `yaml:"penalty_weight"` // nil until defaults apply; 0 is a valid weight
	MinDocuments  int      `yaml:"min_documents"`
	Counting      string   `yaml:"counting"`
	Matcher       string   `yaml:"matcher"`
	Workers       int      `yaml:"workers"`

	// From and To bound document time as RFC 3339 timestamps, [From, To).
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	SkipChildren *bool  `yaml:"skip_children"`
	CleanHTML    bool   `yaml:"clean_html"`
}

// Path returns the config path from THEMESIFT_CONFIG, or DefaultPath.
func Path() string {
	return getEnv("THEMESIFT_CONFIG", DefaultPath)
}

// Load reads a config from path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("Config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		slog.Debug("Config loaded", "path", path)
	}

	applyDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.PenaltyWeight == nil {
		w := defaultPenaltyWeight
		cfg.PenaltyWeight = &w
	}
	if cfg.MinDocuments == 0 {
		cfg.MinDocuments = defaultMinDocuments
	}
	if cfg.Counting == "" {
		cfg.Counting = defaultCounting
	}
	if cfg.Matcher == "" {
		cfg.Matcher = defaultMatcher
	}
	if cfg.SkipChildren == nil {
		skip := true
		cfg.SkipChildren = &skip
	}
}

// applyEnv overrides file values with THEMESIFT_* environment variables.
func applyEnv(cfg *Config) error {
	if v := getEnv("THEMESIFT_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid THEMESIFT_WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := getEnv("THEMESIFT_PENALTY_WEIGHT", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid THEMESIFT_PENALTY_WEIGHT %q: %w", v, err)
		}
		cfg.PenaltyWeight = &f
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if w := c.Penalty(); w < 0 || w > 1 {
		return fmt.Errorf("penalty_weight must be within [0, 1], got %g", w)
	}
	if c.MinDocuments < 1 {
		return fmt.Errorf("min_documents must be at least 1, got %d", c.MinDocuments)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}
	if _, _, err := c.Window(); err != nil {
		return err
	}
	return nil
}

// Penalty returns the penalty weight, or the default when none is set.
func (c *Config) Penalty() float64 {
	if c.PenaltyWeight == nil {
		return defaultPenaltyWeight
	}
	return *c.PenaltyWeight
}

// SkipChildSections reports whether records with a master id are dropped.
func (c *Config) SkipChildSections() bool {
	return c.SkipChildren == nil || *c.SkipChildren
}

// Window parses From and To. An empty bound is the zero time.
func (c *Config) Window() (from, to time.Time, err error) {
	if c.From != "" {
		if from, err = time.Parse(time.RFC3339, c.From); err != nil {
			return from, to, fmt.Errorf("invalid from time %q: %w", c.From, err)
		}
	}
	if c.To != "" {
		if to, err = time.Parse(time.RFC3339, c.To); err != nil {
			return from, to, fmt.Errorf("invalid to time %q: %w", c.To, err)
		}
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, fmt.Errorf("from %s must be before to %s", c.From, c.To)
	}
	return from, to, nil
}

// ThemeNames returns the configured themes followed by those read from the
// theme file, if any.
func (c *Config) ThemeNames() ([]string, error) {
	names := append([]string(nil), c.Themes...)
	if c.ThemeFile == "" {
		return names, nil
	}

	fromFile, err := ReadThemeFile(c.ThemeFile)
	if err != nil {
		return nil, err
	}
	return append(names, fromFile...), nil
}

// ReadThemeFile reads one theme name per line. Blank lines and lines starting
// with # are skipped.
func ReadThemeFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open theme file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}
	return names, nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
