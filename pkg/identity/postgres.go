package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/oauthlink/pkg/db"
)

const pgForeignKeyViolation = "23503"

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTable sets the links table name. Defaults to "oauth_identities".
func WithTable(name string) PostgresOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
		}
	}
}

// PostgresStore persists links in PostgreSQL. Uniqueness is enforced by the
// (provider, provider_user_id) constraint created by db.Migrate.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string

	findSQL   string
	insertSQL string
	updateSQL string
	listSQL   string
	deleteSQL string
}

// NewPostgresStore prepares the queries for the configured table.
// Returns db.ErrInvalidIdentifier for an unusable table name.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool, table: "oauth_identities"}
	for _, opt := range opts {
		opt(s)
	}

	t, err := db.QuoteIdentifier(s.table)
	if err != nil {
		return nil, err
	}

	const cols = "id, user_id, provider, provider_user_id, access_token, created_at, updated_at"
	s.findSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE provider = $1 AND provider_user_id = $2`, cols, t)
	s.insertSQL = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (provider, provider_user_id) DO NOTHING
RETURNING %s`, t, cols, cols)
	s.updateSQL = fmt.Sprintf(`UPDATE %s SET access_token = $2, updated_at = $3 WHERE id = $1`, t)
	s.listSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at, provider`, cols, t)
	s.deleteSQL = fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t)

	return s, nil
}

// Table returns the links table name.
func (s *PostgresStore) Table() string {
	return s.table
}

func (s *PostgresStore) FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*Link, error) {
	l, err := scanLink(s.pool.QueryRow(ctx, s.findSQL, provider, providerUserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity: find link: %w", err)
	}
	return l, nil
}

// Create inserts a link. A conflicting row yields no RETURNING row, which is
// reported as ErrDuplicateLink.
func (s *PostgresStore) Create(ctx context.Context, userID, provider, providerUserID, accessToken string) (*Link, error) {
	if err := validate(userID, provider, providerUserID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.Join(ErrUnknownUser, fmt.Errorf("user %q: %w", userID, err))
	}

	l, err := scanLink(s.pool.QueryRow(ctx, s.insertSQL,
		uuid.NewString(), userID, provider, providerUserID, accessToken, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateLink
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, errors.Join(ErrUnknownUser, fmt.Errorf("user %q", userID))
		}
		return nil, fmt.Errorf("identity: create link: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) UpdateToken(ctx context.Context, linkID, accessToken string) error {
	if uuid.Validate(linkID) != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, s.updateSQL, linkID, accessToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("identity: update token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Link, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, s.listSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("identity: list links: %w", err)
	}
	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Link, error) {
		l, err := scanLink(row)
		if err != nil {
			return Link{}, err
		}
		return *l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("identity: list links: %w", err)
	}
	return links, nil
}

func (s *PostgresStore) Delete(ctx context.Context, linkID string) error {
	if uuid.Validate(linkID) != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, s.deleteSQL, linkID)
	if err != nil {
		return fmt.Errorf("identity: delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLink(row pgx.Row) (*Link, error) {
	var l Link
	err := row.Scan(&l.ID, &l.UserID, &l.Provider, &l.ProviderUserID, &l.AccessToken, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
