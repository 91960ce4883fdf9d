package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
compound_questions:
  - number: Q05
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.History.Path != "Results.csv" || cfg.Output.Results != "Results.csv" {
		t.Fatalf("unexpected history paths %q %q", cfg.History.Path, cfg.Output.Results)
	}
	if cfg.History.Name != "Results" {
		t.Fatalf("unexpected history name %q", cfg.History.Name)
	}
	if len(cfg.Input.DropColumns) != 1 || cfg.Input.DropColumns[0] != "Timestamp" {
		t.Fatalf("unexpected drop columns %v", cfg.Input.DropColumns)
	}
	if cfg.TruthKey.ID != "Truth.csv" {
		t.Fatalf("expected file key id to default to path, got %q", cfg.TruthKey.ID)
	}
	if cfg.CompoundQuestions[0].Separator != "." {
		t.Fatalf("expected default separator, got %q", cfg.CompoundQuestions[0].Separator)
	}
	if cfg.Labels.PayType != "Iron Bank" {
		t.Fatalf("expected default labels, got %+v", cfg.Labels)
	}
}

func TestLoadKeepsExplicitEmptyDropColumns(t *testing.T) {
	cfg, err := Load(writeConfig(t, "input:\n  drop_columns: []\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Input.DropColumns) != 0 {
		t.Fatalf("expected no drop columns, got %v", cfg.Input.DropColumns)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"unknown backend":    "history:\n  backend: s3\n",
		"redis without addr": "truth_key:\n  cache: redis\n",
		"postgres no url":    "history:\n  backend: postgres\n",
		"duplicate compound": "compound_questions:\n  - number: Q01\n  - number: Q01\n",
		"too many parts":     "compound_questions:\n  - number: Q01\n    part_numbers: [Q01, Q02, Q03]\n",
	}
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_ADDR", "")
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://scoring@localhost/scoring")
	cfg, err := Load(writeConfig(t, "history:\n  backend: postgres\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://scoring@localhost/scoring" {
		t.Fatalf("env override not applied: %q", cfg.Postgres.URL)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
