package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const aliasColumns = `
	a.id, a.alias, a.owner_id, a.canonical_url_id, c.url,
	a.visits, a.is_custom, a.created_at, a.updated_at`

// PostgresStore is a PostgreSQL implementation of the canonical URL and
// alias repositories.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) FindOrCreate(ctx context.Context, url string) (*shortener.CanonicalURL, error) {
	query := `
		INSERT INTO canonical_urls (id, url, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, url, created_at
	`

	var c shortener.CanonicalURL

	err := p.pool.QueryRow(ctx, query, uuid.NewString(), url, time.Now().UTC()).
		Scan(&c.ID, &c.URL, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Another writer inserted the URL first.
	return p.FindByURL(ctx, url)
}

func (p *PostgresStore) FindByURL(ctx context.Context, url string) (*shortener.CanonicalURL, error) {
	query := `
		SELECT id, url, created_at
		FROM canonical_urls
		WHERE url = $1
	`

	var c shortener.CanonicalURL

	if err := p.pool.QueryRow(ctx, query, url).Scan(&c.ID, &c.URL, &c.CreatedAt); err != nil {
		return nil, translate(err)
	}

	return &c, nil
}

func (p *PostgresStore) Insert(ctx context.Context, alias *shortener.Alias) error {
	query := `
		INSERT INTO aliases (id, alias, owner_id, canonical_url_id, is_custom, visits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		alias.ID,
		alias.Slug,
		alias.OwnerID,
		alias.CanonicalURLID,
		alias.Custom,
		alias.Visits,
		alias.CreatedAt,
		alias.UpdatedAt,
	)

	return translate(err)
}

func (p *PostgresStore) FindBySlug(ctx context.Context, slug string) (*shortener.Alias, error) {
	return p.findOne(ctx, `WHERE a.alias = $1`, slug)
}

func (p *PostgresStore) FindByID(ctx context.Context, id string) (*shortener.Alias, error) {
	return p.findOne(ctx, `WHERE a.id = $1`, id)
}

func (p *PostgresStore) FindDefault(ctx context.Context, ownerID, canonicalURLID string) (*shortener.Alias, error) {
	return p.findOne(ctx, `
		WHERE a.owner_id = $1 AND a.canonical_url_id = $2 AND NOT a.is_custom
		ORDER BY a.created_at
		LIMIT 1`, ownerID, canonicalURLID)
}

func (p *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*shortener.Alias, error) {
	query := `SELECT` + aliasColumns + `
		FROM aliases a
		JOIN canonical_urls c ON c.id = a.canonical_url_id
		WHERE a.owner_id = $1
		ORDER BY a.created_at DESC, a.alias
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []*shortener.Alias

	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, rows.Err()
}

func (p *PostgresStore) UpdateSlug(ctx context.Context, id, slug string, custom bool) (*shortener.Alias, error) {
	query := `
		UPDATE aliases
		SET alias = $2, is_custom = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query, id, slug, custom)
	if err != nil {
		return nil, translate(err)
	}

	if tag.RowsAffected() == 0 {
		return nil, shortener.ErrNotFound
	}

	return p.FindByID(ctx, id)
}

func (p *PostgresStore) IncrementVisits(ctx context.Context, slug string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE aliases SET visits = visits + 1 WHERE alias = $1`, slug)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Delete removes the alias and, in the same transaction, its canonical URL
// when no other alias references it.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var canonicalID string

		err := tx.QueryRow(ctx, `DELETE FROM aliases WHERE id = $1 RETURNING canonical_url_id`, id).
			Scan(&canonicalID)
		if err != nil {
			return translate(err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM canonical_urls c
			WHERE c.id = $1
			  AND NOT EXISTS (SELECT 1 FROM aliases a WHERE a.canonical_url_id = c.id)
		`, canonicalID)
		if err != nil {
			return fmt.Errorf("delete orphaned canonical url: %w", err)
		}

		return nil
	})
}

func (p *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*shortener.Alias, error) {
	query := `SELECT` + aliasColumns + `
		FROM aliases a
		JOIN canonical_urls c ON c.id = a.canonical_url_id
		` + where

	a, err := scanAlias(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}

	return a, nil
}

func scanAlias(row pgx.Row) (*shortener.Alias, error) {
	var a shortener.Alias

	err := row.Scan(
		&a.ID,
		&a.Slug,
		&a.OwnerID,
		&a.CanonicalURLID,
		&a.TargetURL,
		&a.Visits,
		&a.Custom,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// translate maps driver errors onto the shortener sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return shortener.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", shortener.ErrConflict, pgErr.ConstraintName)
		case foreignKeyViolation:
			// The referenced canonical url was deleted.
			return fmt.Errorf("%w: %s", shortener.ErrNotFound, pgErr.ConstraintName)
		}
	}

	return err
}

// Shutdown is a no-op; the pool is closed by its owner.
func (p *PostgresStore) Shutdown() error {
	return nil
}

var (
	_ shortener.CanonicalRepository = (*PostgresStore)(nil)
	_ shortener.AliasRepository     = (*PostgresStore)(nil)
)
