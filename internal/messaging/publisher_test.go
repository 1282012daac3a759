package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type aliasEvent struct {
	Alias  string `json:"alias"`
	Target string `json:"target"`
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes json with event metadata", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[aliasEvent](mock, "alias.created")

		err := publish(context.Background(), &aliasEvent{Alias: "HYO4r0", Target: "https://example.com/"})

		require.NoError(t, err)
		assert.Equal(t, "alias.created", mock.topic)
		require.Len(t, mock.messages, 1)

		msg := mock.messages[0]
		assert.JSONEq(t, `{"alias":"HYO4r0","target":"https://example.com/"}`, string(msg.Payload))
		assert.Equal(t, "alias.created", msg.Metadata.Get(messaging.MetadataEventType))
		assert.NotEmpty(t, msg.Metadata.Get(messaging.MetadataPublishedAt))
		assert.NotEmpty(t, msg.UUID)
	})

	t.Run("wraps publisher errors", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("stream unavailable")}
		publish := messaging.NewPublishFunc[aliasEvent](mock, "alias.created")

		err := publish(context.Background(), &aliasEvent{Alias: "abc"})

		require.ErrorIs(t, err, mock.publishErr)
		assert.Contains(t, err.Error(), "alias.created")
	})

	t.Run("discard never fails", func(t *testing.T) {
		publish := messaging.Discard[aliasEvent]()

		assert.NoError(t, publish(context.Background(), &aliasEvent{}))
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("returns underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("returns error when close fails", func(t *testing.T) {
		mock := &mockPublisher{closeErr: errors.New("close error")}
		group := messaging.NewPublisherGroup(mock)

		assert.Error(t, group.Shutdown())
	})
}
