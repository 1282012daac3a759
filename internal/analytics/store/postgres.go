package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/analytics"
)

const insertEvent = `
	INSERT INTO alias_events (
		id, event_type, alias, owner_id, target_url, client_ip, user_agent,
		referrer, browser, os, device, is_bot, occurred_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO NOTHING
`

// Postgres writes analytics events into the alias_events table. Event ids
// make redelivered messages idempotent.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveAliasCreated(ctx context.Context, e *analytics.AliasCreatedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		eventID(e.EventID), analytics.TopicAliasCreated, e.Alias, e.OwnerID, e.TargetURL,
		e.ClientIP, e.UserAgent, "", "", "", "", false, e.CreatedAt,
	)

	return err
}

func (p *Postgres) SaveAliasVisited(ctx context.Context, e *analytics.AliasVisitedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		eventID(e.EventID), analytics.TopicAliasVisited, e.Alias, "", e.TargetURL,
		e.ClientIP, e.UserAgent, e.Referrer, e.Browser, e.OS, e.Device, e.Bot, e.VisitedAt,
	)

	return err
}

func eventID(id string) string {
	if uuid.Validate(id) != nil {
		return uuid.NewString()
	}

	return id
}

var _ analytics.Store = (*Postgres)(nil)
