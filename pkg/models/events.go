package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of resilience event
type EventType string

const (
	EventTypeServiceImpact     EventType = "resilience.service_impact"
	EventTypeCrisisRecommended EventType = "resilience.crisis_recommended"
	EventTypeRiskScored        EventType = "risk.scored"
)

// BaseEvent represents the base structure for all events
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// ServiceImpactEvent carries one evaluated service impact
type ServiceImpactEvent struct {
	BaseEvent
	IncidentID    string        `json:"incident_id,omitempty"`
	OutageMinutes int           `json:"outage_minutes"`
	Impact        ServiceImpact `json:"impact"`
}

// RiskScoredEvent carries a freshly appended scoring snapshot
type RiskScoredEvent struct {
	BaseEvent
	Snapshot RiskScoringSnapshot `json:"snapshot"`
}

// NewServiceImpactEvent creates an impact event. Crisis recommendations get their own type.
func NewServiceImpactEvent(source, incidentID string, outageMinutes int, impact ServiceImpact, at time.Time) ServiceImpactEvent {
	eventType := EventTypeServiceImpact
	if impact.CrisisRecommended {
		eventType = EventTypeCrisisRecommended
	}
	return ServiceImpactEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: at.UTC(),
			Source:    source,
		},
		IncidentID:    incidentID,
		OutageMinutes: outageMinutes,
		Impact:        impact,
	}
}

// NewRiskScoredEvent creates a scoring event for a snapshot
func NewRiskScoredEvent(source string, snapshot RiskScoringSnapshot) RiskScoredEvent {
	return RiskScoredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRiskScored,
			Timestamp: snapshot.CreatedAt,
			Source:    source,
		},
		Snapshot: snapshot,
	}
}
