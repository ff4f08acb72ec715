package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/oauthlink/pkg/logger"
)

// Migrate applies the oauthlink schema to pool. Migrations are rendered from
// embedded templates so table names follow configuration; versions are
// tracked in migrationsTable.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schema Schema, migrationsTable string, log *slog.Logger) error {
	if err := ValidateIdentifier(migrationsTable); err != nil {
		return err
	}
	if log == nil {
		log = logger.NewNope()
	}

	goMigrations := make([]*goose.Migration, 0, len(migrations))
	for _, m := range migrations {
		up, err := schema.render(m.name + ".up")
		if err != nil {
			return err
		}
		down, err := schema.render(m.name + ".down")
		if err != nil {
			return err
		}
		goMigrations = append(goMigrations, goose.NewGoMigration(m.version, execTx(up), execTx(down)))
	}

	// The *sql.DB shares pool connections and must not be closed here.
	sqlDB := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, nil,
		goose.WithTableName(migrationsTable),
		goose.WithSlog(log),
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(goMigrations...),
	)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	return nil
}

func execTx(query string) *goose.GoFunc {
	return &goose.GoFunc{
		RunTx: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
