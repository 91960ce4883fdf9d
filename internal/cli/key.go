package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"survey-scoring/internal/config"
	pgstore "survey-scoring/internal/infra/postgres"
	redisstore "survey-scoring/internal/infra/redis"
)

// NewKeyCmd groups truth key maintenance commands.
func NewKeyCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage truth keys",
	}
	cmd.AddCommand(newKeyImportCmd(configPath))
	return cmd
}

func newKeyImportCmd(configPath *string) *cobra.Command {
	var keyID, sheet string
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load a truth key file (.csv, .yaml, .xlsx) into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if keyID == "" {
				keyID = cfg.TruthKey.ID
			}
			ctx := cmd.Context()

			key, err := fileKeyLoader(args[0], sheet).LoadTruthKey(ctx, args[0])
			if err != nil {
				return err
			}

			// Import always targets Postgres, whatever the scoring source is.
			cfg.TruthKey.Source = config.BackendPostgres
			b, err := openBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := pgstore.NewTruthKeyStore(b.pool).SaveTruthKey(ctx, keyID, key); err != nil {
				return err
			}
			if b.redis != nil {
				cache := redisstore.NewTruthKeyRepository(b.redis, nil, 0)
				if err := cache.Invalidate(ctx, keyID); err != nil {
					logger.Warn("truth key cache not invalidated", "key_id", keyID, "error", err)
				}
			}
			logger.Info("truth key imported", "key_id", keyID, "entries", len(key))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries as %s\n", len(key), keyID)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyID, "id", "", "truth key id (default truth_key.id)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "workbook sheet for .xlsx keys")
	return cmd
}
