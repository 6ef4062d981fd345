package notificationevents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rua-nove-fc/pelada-bot/internal/eventbus"
	"github.com/rua-nove-fc/pelada-bot/internal/observability"
)

type publishedEvent struct {
	Topic    string
	Payload  []byte
	Metadata map[string]string
}

type FakeBus struct {
	Events []publishedEvent
	Err    error
}

func (f *FakeBus) Publish(ctx context.Context, topic string, payload []byte, metadata map[string]string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, publishedEvent{Topic: topic, Payload: payload, Metadata: metadata})
	return nil
}

func (f *FakeBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, errors.New("not implemented")
}

func (f *FakeBus) Close() error { return nil }

var _ eventbus.EventBus = (*FakeBus)(nil)

func TestNotifySeasonClosed(t *testing.T) {
	bus := &FakeBus{}
	notifier := NewEventNotifier(bus, observability.NoOpLogger)

	require.NoError(t, notifier.NotifySeasonClosed(context.Background(), "s1", "u1"))
	require.Len(t, bus.Events, 1)

	event := bus.Events[0]
	assert.Equal(t, eventbus.TopicSeasonClosed, event.Topic)
	assert.Equal(t, "s1", event.Metadata["season_id"])
	assert.Equal(t, "u1", event.Metadata["user_id"])

	var decoded SeasonClosedNotificationPayloadV1
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, SeasonClosedNotificationPayloadV1{SeasonID: "s1", UserID: "u1"}, decoded)
}

func TestNotifySeasonClosed_BusErrorSurfaces(t *testing.T) {
	bus := &FakeBus{Err: errors.New("nats down")}
	notifier := NewEventNotifier(bus, observability.NoOpLogger)

	err := notifier.NotifySeasonClosed(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats down")
}
