package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Penalty() != 0.2 {
		t.Errorf("Penalty() = %v, want 0.2", cfg.Penalty())
	}
	if cfg.MinDocuments != 2 {
		t.Errorf("MinDocuments = %d, want 2", cfg.MinDocuments)
	}
	if cfg.Counting != "characters" || cfg.Matcher != "exact" {
		t.Errorf("Counting/Matcher = %q/%q, want characters/exact", cfg.Counting, cfg.Matcher)
	}
	if !cfg.SkipChildSections() {
		t.Error("SkipChildSections() = false, want true by default")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "themesift.yaml", `
themes: [无人机, flood]
keywords:
  flood: [rain, 洪水]
boundaries: [".", "!"]
penalty_weight: 0.5
min_documents: 3
counting: words
matcher: stem
workers: 4
from: "2020-01-01T00:00:00Z"
skip_children: false
clean_html: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if strings.Join(cfg.Themes, ",") != "无人机,flood" {
		t.Errorf("Themes = %v", cfg.Themes)
	}
	if strings.Join(cfg.Keywords["flood"], ",") != "rain,洪水" {
		t.Errorf("Keywords[flood] = %v", cfg.Keywords["flood"])
	}
	if strings.Join(cfg.Boundaries, "") != ".!" {
		t.Errorf("Boundaries = %v", cfg.Boundaries)
	}
	if cfg.Penalty() != 0.5 || cfg.MinDocuments != 3 || cfg.Workers != 4 {
		t.Errorf("Penalty/MinDocuments/Workers = %v/%d/%d", cfg.Penalty(), cfg.MinDocuments, cfg.Workers)
	}
	if cfg.Counting != "words" || cfg.Matcher != "stem" {
		t.Errorf("Counting/Matcher = %q/%q", cfg.Counting, cfg.Matcher)
	}
	if cfg.SkipChildSections() {
		t.Error("SkipChildSections() = true, want false")
	}
	if !cfg.CleanHTML {
		t.Error("CleanHTML = false, want true")
	}
	from, to, err := cfg.Window()
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if !from.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) || !to.IsZero() {
		t.Errorf("Window() = %v, %v", from, to)
	}
}

func TestLoad_ZeroPenaltyWeight(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  string
	}{
		{"from file", "penalty_weight: 0\n", ""},
		{"from env", "penalty_weight: 0.4\n", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "themesift.yaml", tt.yaml)
			if tt.env != "" {
				t.Setenv("THEMESIFT_PENALTY_WEIGHT", tt.env)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.PenaltyWeight == nil || *cfg.PenaltyWeight != 0 {
				t.Errorf("PenaltyWeight = %v, want explicit 0", cfg.PenaltyWeight)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "themes: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "themesift.yaml", "workers: 2\npenalty_weight: 0.4\n")

	t.Setenv("THEMESIFT_WORKERS", "8")
	t.Setenv("THEMESIFT_PENALTY_WEIGHT", "0.3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Penalty() != 0.3 {
		t.Errorf("Penalty() = %v, want 0.3", cfg.Penalty())
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("THEMESIFT_WORKERS", "many")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() expected error for non-numeric THEMESIFT_WORKERS")
	}
}

func TestPath(t *testing.T) {
	t.Setenv("THEMESIFT_CONFIG", "/etc/themesift.yaml")
	if got := Path(); got != "/etc/themesift.yaml" {
		t.Errorf("Path() = %q, want /etc/themesift.yaml", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero penalty", func(c *Config) { c.PenaltyWeight = weight(0) }, ""},
		{"penalty above one", func(c *Config) { c.PenaltyWeight = weight(1.5) }, "penalty_weight"},
		{"negative penalty", func(c *Config) { c.PenaltyWeight = weight(-0.1) }, "penalty_weight"},
		{"zero min documents", func(c *Config) { c.MinDocuments = 0 }, "min_documents"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad from", func(c *Config) { c.From = "yesterday" }, "invalid from"},
		{"inverted window", func(c *Config) {
			c.From = "2021-01-01T00:00:00Z"
			c.To = "2020-01-01T00:00:00Z"
		}, "must be before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestThemeNames(t *testing.T) {
	path := writeFile(t, "themes.txt", "# monitored topics\n无人机\n\n  洪水  \n# end\n")

	cfg := Default()
	cfg.Themes = []string{"drone"}
	cfg.ThemeFile = path

	names, err := cfg.ThemeNames()
	if err != nil {
		t.Fatalf("ThemeNames() error = %v", err)
	}
	if got := strings.Join(names, ","); got != "drone,无人机,洪水" {
		t.Errorf("ThemeNames() = %q, want drone,无人机,洪水", got)
	}

	cfg.ThemeFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := cfg.ThemeNames(); err == nil {
		t.Error("ThemeNames() expected error for missing theme file")
	}
}

func weight(w float64) *float64 {
	return &w
}
