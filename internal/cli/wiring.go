package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"survey-scoring/internal/app"
	"survey-scoring/internal/config"
	"survey-scoring/internal/infra/excel"
	"survey-scoring/internal/infra/file"
	"survey-scoring/internal/infra/memory"
	pgstore "survey-scoring/internal/infra/postgres"
	redisstore "survey-scoring/internal/infra/redis"
	"survey-scoring/internal/infra/sqlite"
)

// backends holds the connections opened for one command.
type backends struct {
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	if cfg.NeedsRedis() {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { b.redis.Close() })
		logger.Debug("redis client configured", "addr", cfg.Redis.Addr)
	}
	if cfg.NeedsPostgres() {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			b.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
		b.closers = append(b.closers, pool.Close)
	}
	return b, nil
}

// truthKeyLoader picks the backing store of truth keys.
func (b *backends) truthKeyLoader(cfg config.Config) memory.TruthKeyLoader {
	if cfg.TruthKey.Source == config.BackendPostgres {
		return pgstore.NewTruthKeyStore(b.pool)
	}
	return fileKeyLoader(cfg.TruthKey.Path, cfg.TruthKey.Sheet)
}

func fileKeyLoader(path, sheet string) memory.TruthKeyLoader {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return excel.NewTruthKeyLoader(sheet)
	}
	return file.NewTruthKeyLoader()
}

func (b *backends) truthKeys(cfg config.Config) app.TruthKeyRepository {
	loader := b.truthKeyLoader(cfg)
	ttl := config.TTLDuration(cfg.TruthKey.TTL, 10*time.Minute)
	if b.redis != nil && cfg.TruthKey.Cache == config.BackendRedis {
		return redisstore.NewTruthKeyRepository(b.redis, loader, ttl)
	}
	return memory.NewTruthKeyRepository(loader, ttl)
}

func (b *backends) history(cfg config.Config) app.HistoryStore {
	switch cfg.History.Backend {
	case config.BackendRedis:
		return redisstore.NewHistoryStore(b.redis, cfg.History.Name, config.TTLDuration(cfg.History.ArchiveTTL, 30*24*time.Hour))
	case config.BackendPostgres:
		return pgstore.NewHistoryStore(b.pool, cfg.History.Name)
	default:
		return file.NewHistoryStore(cfg.History.Path, cfg.Output.Results, cfg.Output.ArchiveDir)
	}
}

func (b *backends) checkpoint(ctx context.Context, cfg config.Config) (app.CheckpointStore, error) {
	if cfg.Checkpoint.Backend == config.BackendSQLite {
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { store.Close() })
		return store, nil
	}
	return file.NewCheckpointStore(cfg.Checkpoint.Structure, cfg.Checkpoint.Responses), nil
}

func (b *backends) stores(ctx context.Context, cfg config.Config) (app.Stores, error) {
	checkpoint, err := b.checkpoint(ctx, cfg)
	if err != nil {
		return app.Stores{}, err
	}
	stores := app.Stores{
		Responses:  file.NewResponseReader(cfg.Input.Responses, cfg.Input.DropColumns),
		TruthKeys:  b.truthKeys(cfg),
		Checkpoint: checkpoint,
		History:    b.history(cfg),
	}
	if cfg.Output.Distribution != "" || cfg.Output.Unaggregated != "" {
		stores.Reports = file.NewReportWriter(cfg.Output.Distribution, cfg.Output.Unaggregated)
	}
	return stores, nil
}

func settingsFrom(cfg config.Config) app.Settings {
	return app.Settings{
		TruthKeyID: cfg.TruthKey.ID,
		Compound:   cfg.CompoundQuestions,
		Labels:     cfg.Labels,
	}
}
