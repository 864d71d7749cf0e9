package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/riskgraph/internal/config"
)

// Producer defines the interface for Kafka message production
type Producer interface {
	Send(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaProducer implements the Producer interface
type kafkaProducer struct {
	writer messageWriter
	mu     sync.Mutex
	closed bool
}

// NewProducer creates a new Kafka producer. The topic is chosen per message.
func NewProducer(cfg config.KafkaConfig) (Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrInvalidBrokers
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.Timeout,
		BatchTimeout: cfg.BatchTimeout,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}

	return newProducer(writer), nil
}

func newProducer(w messageWriter) *kafkaProducer {
	return &kafkaProducer{writer: w}
}

// Send sends a message to Kafka
func (p *kafkaProducer) Send(ctx context.Context, topic string, key []byte, value []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProducerClosed
	}
	p.mu.Unlock()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

// Close closes the producer
func (p *kafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	return p.writer.Close()
}
