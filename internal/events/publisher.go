// Package events publishes impact and scoring events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/riskgraph/internal/config"
	"github.com/riskgraph/internal/kafka"
	"github.com/riskgraph/pkg/models"
)

const defaultSource = "riskgraph"

// PublishRecorder is told the outcome of every send
type PublishRecorder interface {
	RecordPublish(topic string, err error)
}

// KafkaPublisher implements incident.Publisher. Crisis recommendations go to
// the crisis topic, every other impact to the impact topic. Messages are keyed
// by service id so one service's events stay ordered.
type KafkaPublisher struct {
	producer    kafka.Producer
	impactTopic string
	crisisTopic string
	scoreTopic  string
	source      string
	logger      *zap.Logger
	recorder    PublishRecorder
	now         func() time.Time
}

// NewKafkaPublisher creates a publisher over producer
func NewKafkaPublisher(producer kafka.Producer, cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	crisis := cfg.CrisisTopic
	if crisis == "" {
		crisis = cfg.ImpactTopic
	}
	source := cfg.ClientID
	if source == "" {
		source = defaultSource
	}
	return &KafkaPublisher{
		producer:    producer,
		impactTopic: cfg.ImpactTopic,
		crisisTopic: crisis,
		scoreTopic:  cfg.ScoreTopic,
		source:      source,
		logger:      logger,
		now:         time.Now,
	}
}

func (p *KafkaPublisher) WithRecorder(r PublishRecorder) *KafkaPublisher {
	p.recorder = r
	return p
}

// PublishServiceImpacts sends one event per impact. Every impact is attempted;
// the returned error joins the failures.
func (p *KafkaPublisher) PublishServiceImpacts(ctx context.Context, incidentID string, outageMinutes int, impacts []models.ServiceImpact) error {
	at := p.now()
	var errs []error
	for _, impact := range impacts {
		event := models.NewServiceImpactEvent(p.source, incidentID, outageMinutes, impact, at)
		topic := p.impactTopic
		if event.Type == models.EventTypeCrisisRecommended {
			topic = p.crisisTopic
		}
		if err := p.send(ctx, topic, impact.ServiceID, event); err != nil {
			errs = append(errs, fmt.Errorf("service %s: %w", impact.ServiceID, err))
		}
	}
	return errors.Join(errs...)
}

// PublishRiskScored sends a scoring snapshot. It is a no-op without a score topic.
func (p *KafkaPublisher) PublishRiskScored(ctx context.Context, snapshot models.RiskScoringSnapshot) error {
	if p.scoreTopic == "" {
		return nil
	}
	return p.send(ctx, p.scoreTopic, snapshot.RiskID, models.NewRiskScoredEvent(p.source, snapshot))
}

func (p *KafkaPublisher) send(ctx context.Context, topic, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.producer.Send(ctx, topic, []byte(key), value)
	if p.recorder != nil {
		p.recorder.RecordPublish(topic, err)
	}
	if err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}
	return nil
}
