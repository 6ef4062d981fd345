package eventbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// Topics carried by the bus. The first dotted token names the JetStream
// stream the subject lives on.
const (
	TopicGameFinished = "game.finished"
	TopicGameSettled  = "game.settled"
	TopicSeasonClosed = "season.closed"
)

// EventBus publishes and subscribes over NATS JetStream.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload []byte, metadata map[string]string) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// JetStreamEventBus implements EventBus with watermill-nats.
type JetStreamEventBus struct {
	logger        watermill.LoggerAdapter
	natsURL       string
	publisher     *wmnats.Publisher
	subscriber    *wmnats.Subscriber
	streamCreator *StreamCreator
}

var _ EventBus = (*JetStreamEventBus)(nil)

func natsOptions(logger watermill.LoggerAdapter) []nc.Option {
	return []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in subscription", err, watermill.LogFields{
					"subject": s.Subject,
					"queue":   s.Queue,
				})
			} else {
				logger.Error("Error in connection", err, nil)
			}
		}),
	}
}

// NewJetStreamEventBus connects to NATS and builds the watermill
// publisher/subscriber pair. Streams are provisioned lazily on first use.
func NewJetStreamEventBus(natsURL string, logger watermill.LoggerAdapter) (*JetStreamEventBus, error) {
	streamCreator, err := NewStreamCreator(natsURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream creator: %w", err)
	}

	options := natsOptions(logger)

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   &wmnats.NATSMarshaler{},
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:         natsURL,
			NatsOptions: options,
			Unmarshaler: &wmnats.NATSMarshaler{},
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill NATS subscriber: %w", err)
	}

	return &JetStreamEventBus{
		logger:        logger,
		natsURL:       natsURL,
		publisher:     publisher,
		subscriber:    subscriber,
		streamCreator: streamCreator,
	}, nil
}

// streamFor maps a dotted topic to its stream name.
func streamFor(topic string) string {
	name, _, _ := strings.Cut(topic, ".")
	if !isValidStreamName(name) {
		return "default"
	}
	return name
}

// Publish ensures the topic's stream exists, then publishes the payload
// with the given metadata.
func (b *JetStreamEventBus) Publish(ctx context.Context, topic string, payload []byte, metadata map[string]string) error {
	if err := b.streamCreator.CreateStream(streamFor(topic)); err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe ensures the stream and a durable consumer exist, then returns
// the message channel for the topic.
func (b *JetStreamEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	streamName := streamFor(topic)
	if err := b.streamCreator.CreateStream(streamName); err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	consumerName := strings.ReplaceAll(topic, ".", "-") + "-consumer"
	if err := b.streamCreator.CreateConsumer(streamName, consumerName, topic); err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	messages, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic: %w", err)
	}
	return messages, nil
}

// WatermillSubscriber exposes the raw subscriber for router wiring. Call
// EnsureTopic for each topic before handing this to a router.
func (b *JetStreamEventBus) WatermillSubscriber() message.Subscriber { return b.subscriber }

// WatermillPublisher exposes the raw publisher for router wiring.
func (b *JetStreamEventBus) WatermillPublisher() message.Publisher { return b.publisher }

// EnsureTopic provisions the stream and durable consumer for a topic
// without opening a subscription.
func (b *JetStreamEventBus) EnsureTopic(topic string) error {
	streamName := streamFor(topic)
	if err := b.streamCreator.CreateStream(streamName); err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	consumerName := strings.ReplaceAll(topic, ".", "-") + "-consumer"
	if err := b.streamCreator.CreateConsumer(streamName, consumerName, topic); err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	return nil
}

// Close closes the publisher and subscriber.
func (b *JetStreamEventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("failed to close subscriber: %w", err)
	}
	b.streamCreator.Close()
	return nil
}

// StreamCreator provisions JetStream streams and consumers.
type StreamCreator struct {
	Logger  watermill.LoggerAdapter
	NatsURL string
	nc      *nc.Conn
	js      nc.JetStreamContext
}

// NewStreamCreator connects to NATS with a JetStream context.
func NewStreamCreator(natsURL string, logger watermill.LoggerAdapter) (*StreamCreator, error) {
	conn, err := nc.Connect(natsURL, natsOptions(logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &StreamCreator{
		Logger:  logger,
		NatsURL: natsURL,
		nc:      conn,
		js:      js,
	}, nil
}

// CreateStream creates a JetStream stream if it doesn't exist.
func (sc *StreamCreator) CreateStream(streamName string) error {
	if !isValidStreamName(streamName) {
		return fmt.Errorf("invalid stream name: %s", streamName)
	}

	streamInfo, err := sc.js.StreamInfo(streamName)
	if err != nil && err != nc.ErrStreamNotFound {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	if streamInfo != nil {
		return nil
	}

	_, err = sc.js.AddStream(&nc.StreamConfig{
		Name:     streamName,
		Subjects: []string{fmt.Sprintf("%s.>", streamName)},
	})
	if err != nil {
		return fmt.Errorf("failed to add stream: %w", err)
	}

	sc.Logger.Info("Stream created", watermill.LogFields{"stream": streamName})
	return nil
}

// CreateConsumer creates a durable JetStream consumer filtered to subject.
func (sc *StreamCreator) CreateConsumer(streamName, consumerName, subject string) error {
	_, err := sc.js.AddConsumer(streamName, &nc.ConsumerConfig{
		Durable:       consumerName,
		DeliverPolicy: nc.DeliverAllPolicy,
		AckPolicy:     nc.AckExplicitPolicy,
		FilterSubject: subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	sc.Logger.Info("Consumer created", watermill.LogFields{
		"stream":   streamName,
		"consumer": consumerName,
		"subject":  subject,
	})
	return nil
}

// Close closes the underlying NATS connection.
func (sc *StreamCreator) Close() {
	sc.nc.Close()
}

// isValidStreamName checks a name against NATS stream naming rules.
func isValidStreamName(name string) bool {
	for _, r := range name {
		if !isValidRune(r) {
			return false
		}
	}
	return name != "" && name[0] != '-' && name[len(name)-1] != '-'
}

func isValidRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
