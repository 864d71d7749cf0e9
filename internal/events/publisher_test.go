package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/internal/config"
	"github.com/riskgraph/pkg/models"
)

type sentMessage struct {
	topic string
	key   string
	value []byte
}

type fakeProducer struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor string
}

func (p *fakeProducer) Send(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if string(key) == p.failFor {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, sentMessage{topic: topic, key: string(key), value: value})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

type countingRecorder struct {
	ok, failed int
}

func (r *countingRecorder) RecordPublish(_ string, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func TestPublishServiceImpactsRoutesCrises(t *testing.T) {
	producer := &fakeProducer{}
	recorder := &countingRecorder{}
	p := NewKafkaPublisher(producer, config.DefaultKafkaConfig(), nil).WithRecorder(recorder)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	err := p.PublishServiceImpacts(context.Background(), "issue-1", 95, []models.ServiceImpact{
		{ServiceID: "svc-a", ServiceCode: "A", ImpactLevel: models.ImpactMinor},
		{ServiceID: "svc-b", ServiceCode: "B", ImpactLevel: models.ImpactCritical, CrisisRecommended: true},
	})

	require.NoError(t, err)
	require.Len(t, producer.sent, 2)
	assert.Equal(t, "resilience.service-impacts", producer.sent[0].topic)
	assert.Equal(t, "svc-a", producer.sent[0].key)
	assert.Equal(t, "resilience.crisis-alerts", producer.sent[1].topic)
	assert.Equal(t, 2, recorder.ok)

	var event models.ServiceImpactEvent
	require.NoError(t, json.Unmarshal(producer.sent[1].value, &event))
	assert.Equal(t, models.EventTypeCrisisRecommended, event.Type)
	assert.Equal(t, "issue-1", event.IncidentID)
	assert.Equal(t, 95, event.OutageMinutes)
	assert.Equal(t, "riskgraph", event.Source)
	assert.NotEmpty(t, event.ID)
}

func TestPublishServiceImpactsJoinsFailures(t *testing.T) {
	producer := &fakeProducer{failFor: "svc-a"}
	recorder := &countingRecorder{}
	p := NewKafkaPublisher(producer, config.DefaultKafkaConfig(), nil).WithRecorder(recorder)

	err := p.PublishServiceImpacts(context.Background(), "", 5, []models.ServiceImpact{
		{ServiceID: "svc-a"},
		{ServiceID: "svc-b"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "svc-a")
	assert.Len(t, producer.sent, 1, "remaining impacts are still sent")
	assert.Equal(t, 1, recorder.failed)
}

func TestPublishRiskScored(t *testing.T) {
	producer := &fakeProducer{}
	p := NewKafkaPublisher(producer, config.DefaultKafkaConfig(), nil)
	snapshot := models.NewScoringSnapshot("risk-1", "CLASSIC_V1", 12, 9.6, "analyst", time.Now())

	require.NoError(t, p.PublishRiskScored(context.Background(), snapshot))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, "risk.scores", producer.sent[0].topic)
	assert.Equal(t, "risk-1", producer.sent[0].key)

	cfg := config.DefaultKafkaConfig()
	cfg.ScoreTopic = ""
	assert.NoError(t, NewKafkaPublisher(producer, cfg, nil).PublishRiskScored(context.Background(), snapshot))
	assert.Len(t, producer.sent, 1)
}
