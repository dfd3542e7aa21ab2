// Package kafka publishes affiliate domain events.
package kafka

import (
	"context"
	"crypto/tls"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/encoding/json"
)

type Config struct {
	UseTLS  bool     `mapstructure:"use_tls"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Event is the envelope of every published message
type Event struct {
	Type       string      `json:"type"`
	EntityID   uint64      `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher writes events to the bus
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type publisher struct {
	writer writer
}

type noopPublisher struct{}

// NewPublisher creates a kafka writer publisher or a no-op publisher when no brokers are configured
func NewPublisher(cfg Config) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info().Str("section", "kafka").Msg("No brokers configured, domain events are disabled")
		return noopPublisher{}
	}
	w := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkaGo.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkaGo.RequireOne,
	}
	if cfg.UseTLS {
		w.Transport = &kafkaGo.Transport{TLS: &tls.Config{MinVersion: tls.VersionTLS12}}
	}
	return &publisher{writer: w}
}

// Encode builds the kafka message of an event keyed by entity id
func Encode(event Event) (kafkaGo.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkaGo.Message{}, err
	}
	return kafkaGo.Message{
		Key:   []byte(event.Type + ":" + strconv.FormatUint(event.EntityID, 10)),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

// Publish godoc
func (p *publisher) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafkaGo.Message, 0, len(events))
	for _, event := range events {
		msg, err := Encode(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *publisher) Close() error {
	return p.writer.Close()
}

func (noopPublisher) Publish(ctx context.Context, events ...Event) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
