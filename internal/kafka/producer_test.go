package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/internal/config"
)

type recordingWriter struct {
	messages []kafka.Message
	closed   int
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func TestProducerSend(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w)

	require.NoError(t, p.Send(context.Background(), "resilience.service-impacts", []byte("svc-1"), []byte(`{}`)))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "resilience.service-impacts", w.messages[0].Topic)
	assert.Equal(t, []byte("svc-1"), w.messages[0].Key)
}

func TestProducerRejects(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w)

	assert.ErrorIs(t, p.Send(context.Background(), "", nil, nil), ErrInvalidTopic)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)
	assert.ErrorIs(t, p.Send(context.Background(), "t", nil, nil), ErrProducerClosed)
}

func TestProducerWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newProducer(&recordingWriter{err: boom})

	assert.ErrorIs(t, p.Send(context.Background(), "t", nil, nil), boom)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{})
	assert.ErrorIs(t, err, ErrInvalidBrokers)

	p, err := NewProducer(config.DefaultKafkaConfig())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestTopics(t *testing.T) {
	topics := Topics(config.DefaultKafkaConfig())
	require.Len(t, topics, 3)
	assert.Equal(t, "resilience.service-impacts", topics[0].Name)
	assert.Equal(t, "resilience.crisis-alerts", topics[1].Name)
	assert.Equal(t, "risk.scores", topics[2].Name)

	cfg := config.DefaultKafkaConfig()
	cfg.CrisisTopic = cfg.ImpactTopic
	cfg.ScoreTopic = ""
	assert.Len(t, Topics(cfg), 1)
}
