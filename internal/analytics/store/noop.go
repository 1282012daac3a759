package store

import (
	"context"

	"github.com/serroba/shortlink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveAliasCreated(_ context.Context, event *analytics.AliasCreatedEvent) error {
	n.logger.Info("alias created event received",
		zap.String("alias", event.Alias),
		zap.String("owner", event.OwnerID),
		zap.String("targetUrl", event.TargetURL),
		zap.Bool("custom", event.Custom),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveAliasVisited(_ context.Context, event *analytics.AliasVisitedEvent) error {
	n.logger.Info("alias visited event received",
		zap.String("alias", event.Alias),
		zap.Time("visitedAt", event.VisitedAt),
		zap.String("referrer", event.Referrer),
		zap.String("browser", event.Browser),
		zap.String("device", event.Device),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
