package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"survey-scoring/internal/domain"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Input struct {
		Responses   string   `yaml:"responses"`
		DropColumns []string `yaml:"drop_columns"`
	} `yaml:"input"`
	Output struct {
		Results      string `yaml:"results"`
		ArchiveDir   string `yaml:"archive_dir"`
		Distribution string `yaml:"distribution"`
		Unaggregated string `yaml:"unaggregated"`
	} `yaml:"output"`
	TruthKey struct {
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
		ID     string `yaml:"id"`
		Sheet  string `yaml:"sheet"`
		Cache  string `yaml:"cache"`
		TTL    string `yaml:"ttl"`
	} `yaml:"truth_key"`
	History struct {
		Backend    string `yaml:"backend"`
		Path       string `yaml:"path"`
		Name       string `yaml:"name"`
		ArchiveTTL string `yaml:"archive_ttl"`
	} `yaml:"history"`
	Checkpoint struct {
		Backend   string `yaml:"backend"`
		Structure string `yaml:"structure"`
		Responses string `yaml:"responses"`
	} `yaml:"checkpoint"`
	CompoundQuestions []domain.CompoundQuestion `yaml:"compound_questions"`
	Labels            domain.Labels             `yaml:"labels"`
	Redis             struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path, applies env overrides and defaults, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Input.Responses, "Responses.csv")
	if c.Input.DropColumns == nil {
		c.Input.DropColumns = []string{"Timestamp"}
	}
	setDefault(&c.History.Backend, BackendFile)
	setDefault(&c.History.Path, "Results.csv")
	setDefault(&c.History.Name, strings.TrimSuffix(filepath.Base(c.History.Path), filepath.Ext(c.History.Path)))
	setDefault(&c.Output.Results, c.History.Path)
	setDefault(&c.Output.ArchiveDir, "archive")
	setDefault(&c.TruthKey.Source, BackendFile)
	setDefault(&c.TruthKey.Path, "Truth.csv")
	setDefault(&c.TruthKey.Cache, BackendMemory)
	if c.TruthKey.ID == "" {
		if c.TruthKey.Source == BackendFile {
			c.TruthKey.ID = c.TruthKey.Path
		} else {
			c.TruthKey.ID = "default"
		}
	}
	setDefault(&c.Checkpoint.Backend, BackendFile)
	setDefault(&c.Checkpoint.Structure, "Answer_Structure.csv")
	setDefault(&c.Checkpoint.Responses, "Munged_Responses.csv")
	setDefault(&c.SQLite.Path, "checkpoint.db")
	for i := range c.CompoundQuestions {
		setDefault(&c.CompoundQuestions[i].Separator, ".")
	}

	defaults := domain.DefaultLabels()
	setDefault(&c.Labels.Team, defaults.Team)
	setDefault(&c.Labels.PayType, defaults.PayType)
	setDefault(&c.Labels.Period, defaults.Period)
	setDefault(&c.Labels.Movement, defaults.Movement)

	setDefault(&c.Log.Level, "info")
	setDefault(&c.Log.Format, "text")
}

// Validate rejects unknown backends and backends missing their connection
// settings.
func (c Config) Validate() error {
	if err := oneOf("truth_key.source", c.TruthKey.Source, BackendFile, BackendPostgres); err != nil {
		return err
	}
	if err := oneOf("truth_key.cache", c.TruthKey.Cache, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("history.backend", c.History.Backend, BackendFile, BackendRedis, BackendPostgres); err != nil {
		return err
	}
	if err := oneOf("checkpoint.backend", c.Checkpoint.Backend, BackendFile, BackendSQLite); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, "text", "json"); err != nil {
		return err
	}
	if c.NeedsRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is used")
	}
	if c.NeedsPostgres() && c.Postgres.URL == "" {
		return fmt.Errorf("postgres.url is required when postgres is used")
	}
	seen := make(map[string]bool, len(c.CompoundQuestions))
	for _, cq := range c.CompoundQuestions {
		if cq.Number == "" {
			return fmt.Errorf("compound_questions: number is required")
		}
		if seen[cq.Number] {
			return fmt.Errorf("compound_questions: %s listed twice", cq.Number)
		}
		seen[cq.Number] = true
		if len(cq.PartNumbers) > 2 {
			return fmt.Errorf("compound_questions: %s has %d part numbers, at most 2", cq.Number, len(cq.PartNumbers))
		}
	}
	return nil
}

func (c Config) NeedsRedis() bool {
	return c.TruthKey.Cache == BackendRedis || c.History.Backend == BackendRedis
}

func (c Config) NeedsPostgres() bool {
	return c.TruthKey.Source == BackendPostgres || c.History.Backend == BackendPostgres
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown value %q (want one of %s)", name, value, strings.Join(allowed, ", "))
}
