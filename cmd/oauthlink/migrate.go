package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthlink/internal/config"
	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the users and provider links migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.FromConfig(cfg.Log, logger.DefaultExtractors()...)

			schema, err := schemaFor(cfg)
			if err != nil {
				return err
			}

			pool, err := db.Connect(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			return migrate(cmd.Context(), cfg, schema, pool, log)
		},
	}
}

// schemaFor resolves table names. A missing provider file falls back to the
// default links table so migrations can run before providers are configured.
func schemaFor(cfg *config.Config) (db.Schema, error) {
	providers, err := cfg.Providers()
	if errors.Is(err, fs.ErrNotExist) {
		return cfg.Schema(oauth.DefaultTable), nil
	}
	if err != nil {
		return db.Schema{}, err
	}
	return cfg.Schema(providers.Table), nil
}

func migrate(ctx context.Context, cfg *config.Config, schema db.Schema, pool *pgxpool.Pool, log *slog.Logger) error {
	log.InfoContext(ctx, "applying migrations",
		slog.String("users_table", schema.UsersTable),
		slog.String("links_table", schema.LinksTable),
	)
	return db.Migrate(ctx, pool, schema, cfg.DB.MigrationsTable, log)
}
