package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// HeaderEventType carries the event Type on every record.
const HeaderEventType = "event-type"

type kafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher that produces to cfg.OrderTopic.
// Records are keyed by order number so that the events of one order stay
// on one partition in order.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (Publisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderTopic),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.OrderTopic,
		logger: logger.With().Str("component", "events").Logger(),
	}, nil
}

// Record encodes an event as a Kafka record.
func Record(topic string, event OrderEvent) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.OrderNumber),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	record, err := Record(p.topic, event)
	if err != nil {
		return err
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce %s event: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("type", string(event.Type)).
		Str("order_number", event.OrderNumber).
		Msg("event produced")

	return nil
}

func (p *kafkaPublisher) Close() {
	p.client.Close()
}
