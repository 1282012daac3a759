package container

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/analytics"
	analyticsstore "github.com/serroba/shortlink/internal/analytics/store"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

const consumerGroupName = "analytics"

// Publishers holds the typed event publish funcs used by the handlers.
type Publishers struct {
	AliasCreated messaging.Publish[analytics.AliasCreatedEvent]
	AliasVisited messaging.Publish[analytics.AliasVisitedEvent]
}

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish funcs. With events disabled the funcs discard everything.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client.UniversalClient,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*Publishers, error) {
		opts := do.MustInvoke[*Options](i)

		if !opts.EventsEnabled {
			return &Publishers{
				AliasCreated: messaging.Discard[analytics.AliasCreatedEvent](),
				AliasVisited: messaging.Discard[analytics.AliasVisitedEvent](),
			}, nil
		}

		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return &Publishers{
			AliasCreated: messaging.NewPublishFunc[analytics.AliasCreatedEvent](publisher, analytics.TopicAliasCreated),
			AliasVisited: messaging.NewPublishFunc[analytics.AliasVisitedEvent](publisher, analytics.TopicAliasVisited),
		}, nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading Redis streams.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.AnalyticsStore == "postgres" {
			return analyticsstore.NewPostgres(do.MustInvoke[*Postgres](i).Pool), nil
		}

		return analyticsstore.NewNoop(logger), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.UniversalClient,
			ConsumerGroup: consumerGroupName,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, subscriber, do.MustInvoke[analytics.Store](i), logger)

		return group, nil
	})
}
