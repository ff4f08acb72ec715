package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

// PostgresOption configures a PostgresStore.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	usersTable string
	linksTable string
}

// WithUsersTable sets the users table. Defaults to "users".
func WithUsersTable(name string) PostgresOption {
	return func(c *postgresConfig) {
		if name != "" {
			c.usersTable = name
		}
	}
}

// WithLinksTable sets the links table cleared by Delete.
// Defaults to oauth.DefaultTable.
func WithLinksTable(name string) PostgresOption {
	return func(c *postgresConfig) {
		if name != "" {
			c.linksTable = name
		}
	}
}

// PostgresStore keeps users in the table created by db.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool

	insertSQL      string
	findEmailSQL   string
	getSQL         string
	deleteLinksSQL string
	deleteSQL      string
}

// NewPostgresStore prepares the queries for the configured tables.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	cfg := postgresConfig{usersTable: "users", linksTable: oauth.DefaultTable}
	for _, opt := range opts {
		opt(&cfg)
	}

	users, err := db.QuoteIdentifier(cfg.usersTable)
	if err != nil {
		return nil, err
	}
	links, err := db.QuoteIdentifier(cfg.linksTable)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{
		pool:           pool,
		insertSQL:      fmt.Sprintf(`INSERT INTO %s (id, name, nickname, email, avatar, created_at) VALUES ($1, $2, $3, $4, $5, $6)`, users),
		findEmailSQL:   fmt.Sprintf(`SELECT id FROM %s WHERE email <> '' AND lower(email) = $1 ORDER BY created_at, id LIMIT 1`, users),
		getSQL:         fmt.Sprintf(`SELECT id, name, nickname, email, avatar, created_at FROM %s WHERE id = $1`, users),
		deleteLinksSQL: fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, links),
		deleteSQL:      fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, users),
	}, nil
}

func (s *PostgresStore) CreateFromIdentity(ctx context.Context, ident *oauth.Identity) (string, error) {
	if ident == nil {
		return "", ErrNilIdentity
	}
	u := fromIdentity(uuid.NewString(), ident, time.Now())
	if _, err := s.pool.Exec(ctx, s.insertSQL, u.ID, u.Name, u.Nickname, u.Email, u.Avatar, u.CreatedAt); err != nil {
		return "", fmt.Errorf("userstore: create user: %w", err)
	}
	return u.ID, nil
}

// FindByEmail returns the oldest user whose email matches case-insensitively.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (string, error) {
	folded := foldEmail(email)
	if folded == "" {
		return "", ErrNotFound
	}

	var id string
	err := s.pool.QueryRow(ctx, s.findEmailSQL, folded).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("userstore: find by email: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*User, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	var u User
	err := s.pool.QueryRow(ctx, s.getSQL, id).Scan(&u.ID, &u.Name, &u.Nickname, &u.Email, &u.Avatar, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("userstore: get user: %w", err)
	}
	return &u, nil
}

// Delete removes the user and its links in one transaction, for schemas
// where the links table has no cascading foreign key.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, s.deleteLinksSQL, id); err != nil {
			return fmt.Errorf("userstore: delete links: %w", err)
		}
		tag, err := tx.Exec(ctx, s.deleteSQL, id)
		if err != nil {
			return fmt.Errorf("userstore: delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
