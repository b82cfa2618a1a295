package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	kafka "github.com/segmentio/kafka-go"

	"github.com/mqy/minichat/store"
)

const (
	kafkaWriteTimeout = 10 * time.Second
	publishTimeout    = 3 * time.Second

	// EventMaxBytes caps an encoded room event.
	EventMaxBytes = 4096
)

// Publisher hands inserted room messages to downstream consumers.
// Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, msg *store.Message) error
	Close() error
}

type IKafkaWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// RoomEvent is the kafka message value.
type RoomEvent struct {
	*store.Message
	At int64 `json:"at"` // unix milliseconds
}

// KafkaPublisher writes room events to a kafka topic, keyed by sender name.
type KafkaPublisher struct {
	writer   IKafkaWriter
	maxBytes int
	now      func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Dialer: &kafka.Dialer{
			Timeout:   kafkaWriteTimeout,
			DualStack: true,
		},
	})
	return newKafkaPublisher(w)
}

func newKafkaPublisher(w IKafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, maxBytes: EventMaxBytes, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg *store.Message) error {
	value, err := json.Marshal(&RoomEvent{Message: msg, At: store.NowMillis(p.now())})
	if err != nil {
		return fmt.Errorf("error marshal room event: %q, err: %v", msg, err)
	}
	if len(value) > p.maxBytes {
		return fmt.Errorf("room event exceeds max limit: %d bytes", p.maxBytes)
	}

	ctx2, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx2, kafka.Message{Key: []byte(msg.From), Value: value}); err != nil {
		return fmt.Errorf("error write to kafka: %w", err)
	}
	glog.V(5).Infof("events: published %s message from `%s`", msg.Kind, msg.From)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *store.Message) error { return nil }

func (Nop) Close() error { return nil }
