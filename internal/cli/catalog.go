package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-progress-service/internal/catalog"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/postgres"
	"quiz-progress-service/internal/infra/redis"
	"quiz-progress-service/internal/infra/storage"
)

// NewCatalogCmd groups question bank maintenance commands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the question bank",
	}
	cmd.AddCommand(newCatalogImportCmd(configPath))
	return cmd
}

func newCatalogImportCmd(configPath *string) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate a YAML bank and store it in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			bank, err := catalog.NewFileLoader(args[0]).LoadCatalog(ctx)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if id == "" {
				id = cfg.Catalog.ID
			}
			if err := postgres.ImportCatalog(ctx, db, id, bank); err != nil {
				return err
			}

			if cfg.Redis.Addr != "" {
				client, err := storage.NewRedisClient(ctx, cfg)
				if err != nil {
					return fmt.Errorf("catalog imported but cache not invalidated: %w", err)
				}
				defer client.Close()
				if err := redis.NewCatalogRepository(client, nil, 0).Invalidate(ctx); err != nil {
					return fmt.Errorf("catalog imported but cache not invalidated: %w", err)
				}
			}
			logger.Info("catalog imported",
				zap.String("file", args[0]),
				zap.Int("categories", len(bank.Categories)),
				zap.Int("quizzes", bank.QuizCount()),
				zap.Int("avatars", len(bank.Avatars)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "catalog row id (defaults to catalog.id or \"default\")")
	return cmd
}
