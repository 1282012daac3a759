package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// Store persists analytics events.
type Store interface {
	SaveAliasCreated(ctx context.Context, event *AliasCreatedEvent) error
	SaveAliasVisited(ctx context.Context, event *AliasVisitedEvent) error
}

// RegisterConsumers adds one consumer per analytics topic to group, each
// writing into store.
func RegisterConsumers(group *messaging.ConsumerGroup, subscriber message.Subscriber, store Store, logger *zap.Logger) {
	group.Add(messaging.NewConsumer(subscriber, TopicAliasCreated, store.SaveAliasCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicAliasVisited, store.SaveAliasVisited, logger))
}
