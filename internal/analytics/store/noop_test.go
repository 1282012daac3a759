package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	noop := store.NewNoop(zap.New(core))
	ctx := context.Background()

	err := noop.SaveAliasCreated(ctx, &analytics.AliasCreatedEvent{
		Alias:     "HYO4r0",
		TargetURL: "https://example.com/",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	err = noop.SaveAliasVisited(ctx, &analytics.AliasVisitedEvent{
		Alias:     "HYO4r0",
		VisitedAt: time.Now(),
		Browser:   "Firefox",
	})
	require.NoError(t, err)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "HYO4r0", logs.All()[0].ContextMap()["alias"])
	assert.Equal(t, "Firefox", logs.All()[1].ContextMap()["browser"])
}
