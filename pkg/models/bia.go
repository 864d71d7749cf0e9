package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ImpactLevel is the ordered outage severity of a service
type ImpactLevel string

const (
	ImpactUnknown      ImpactLevel = "UNKNOWN"
	ImpactMinor        ImpactLevel = "MINOR"
	ImpactDegraded     ImpactLevel = "DEGRADED"
	ImpactSevere       ImpactLevel = "SEVERE"
	ImpactCritical     ImpactLevel = "CRITICAL"
	ImpactCatastrophic ImpactLevel = "CATASTROPHIC"
)

var impactSeverity = map[ImpactLevel]int{
	ImpactUnknown:      0,
	ImpactMinor:        1,
	ImpactDegraded:     2,
	ImpactSevere:       3,
	ImpactCritical:     4,
	ImpactCatastrophic: 5,
}

// Severity returns the numeric rank of the level. Unrecognized labels rank 0.
func (l ImpactLevel) Severity() int {
	return impactSeverity[l]
}

// Valid reports whether l is one of the five assignable levels.
func (l ImpactLevel) Valid() bool {
	return l.Severity() > 0
}

// ParseImpactLevel converts a label into an ImpactLevel
func ParseImpactLevel(s string) (ImpactLevel, error) {
	l := ImpactLevel(s)
	if !l.Valid() {
		return ImpactUnknown, fmt.Errorf("unknown impact level %q", s)
	}
	return l, nil
}

// EscalationStep maps an elapsed outage time to a level.
// Broken marks a step that could not be decoded into a time and a known level;
// Problem describes why.
type EscalationStep struct {
	TimeMinutes int         `json:"time_minutes"`
	Level       ImpactLevel `json:"level"`
	Broken      bool        `json:"-"`
	Problem     string      `json:"-"`
}

// UnmarshalJSON decodes a step leniently so that the evaluator can fall back
// instead of refusing the whole profile.
func (s *EscalationStep) UnmarshalJSON(data []byte) error {
	*s = EscalationStep{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		s.markBroken("step is not an object")
		return nil
	}

	rawTime, ok := fields["time_minutes"]
	if !ok {
		s.markBroken("time_minutes is required")
	} else {
		var v float64
		if err := json.Unmarshal(rawTime, &v); err != nil || string(bytes.TrimSpace(rawTime)) == "null" || v != math.Trunc(v) {
			s.markBroken("time_minutes must be an integer")
		} else {
			s.TimeMinutes = int(v)
		}
	}

	rawLevel, ok := fields["level"]
	if !ok {
		s.markBroken("level is required")
		return nil
	}
	var label string
	if err := json.Unmarshal(rawLevel, &label); err != nil {
		s.markBroken("level must be a string")
		return nil
	}
	s.Level = ImpactLevel(label)
	if !s.Level.Valid() {
		s.markBroken(fmt.Sprintf("unknown level %q", label))
	}
	return nil
}

func (s *EscalationStep) markBroken(problem string) {
	if !s.Broken {
		s.Broken = true
		s.Problem = problem
	}
}

// EscalationCurve is the stored escalation curve of a BIA profile.
// Malformed is set when the stored payload was present but not a list.
type EscalationCurve struct {
	Steps     []EscalationStep
	Malformed bool
}

// NewEscalationCurve builds a curve from well-formed steps
func NewEscalationCurve(steps ...EscalationStep) EscalationCurve {
	return EscalationCurve{Steps: steps}
}

// Empty reports whether the curve carries no usable steps.
func (c EscalationCurve) Empty() bool {
	return len(c.Steps) == 0
}

// HasBrokenSteps reports whether any step failed to decode.
func (c EscalationCurve) HasBrokenSteps() bool {
	for _, step := range c.Steps {
		if step.Broken {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts null, empty values and lists. Anything else is kept as Malformed.
func (c *EscalationCurve) UnmarshalJSON(data []byte) error {
	*c = EscalationCurve{}

	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "{}", `""`, "[]":
		return nil
	}
	if trimmed[0] != '[' {
		c.Malformed = true
		return nil
	}

	var steps []EscalationStep
	if err := json.Unmarshal(trimmed, &steps); err != nil {
		c.Malformed = true
		return nil
	}
	c.Steps = steps
	return nil
}

// MarshalJSON writes the steps as a list, or null when there are none.
func (c EscalationCurve) MarshalJSON() ([]byte, error) {
	if c.Malformed || len(c.Steps) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(c.Steps)
}

// CrisisTriggerRules are the thresholds that turn an outage into a crisis recommendation.
// Nil fields were not specified.
type CrisisTriggerRules struct {
	MTPDPercentageTrigger        *float64     `json:"mtpd_percentage_trigger,omitempty" validate:"omitempty,gt=0,lte=1"`
	ImpactLevelTrigger           *ImpactLevel `json:"impact_level_trigger,omitempty" validate:"omitempty,oneof=MINOR DEGRADED SEVERE CRITICAL CATASTROPHIC"`
	EnvironmentalSeverityTrigger *float64     `json:"environmental_severity_trigger,omitempty" validate:"omitempty,gte=0,lte=5"`
	SafetySeverityTrigger        *float64     `json:"safety_severity_trigger,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// ServiceCriticality classifies how essential a service is
type ServiceCriticality string

const (
	CriticalityLife           ServiceCriticality = "life"
	CriticalityInfrastructure ServiceCriticality = "infrastructure"
	CriticalityBusiness       ServiceCriticality = "business"
	CriticalitySupport        ServiceCriticality = "support"
)

// BIAProfile is the business impact analysis of one critical service.
// Time objectives are stored in hours and evaluated in minutes.
type BIAProfile struct {
	ServiceID           string              `json:"service_id" validate:"required"`
	MAOHours            int                 `json:"mao_hours" validate:"min=0"`
	RTOHours            int                 `json:"rto_hours" validate:"min=0"`
	RPOHours            int                 `json:"rpo_hours" validate:"min=0"`
	ServiceCriticality  ServiceCriticality  `json:"service_criticality,omitempty" validate:"omitempty,oneof=life infrastructure business support"`
	ImpactOperational   int                 `json:"impact_operational" validate:"min=0,max=5"`
	ImpactFinancial     int                 `json:"impact_financial" validate:"min=0,max=5"`
	ImpactEnvironmental int                 `json:"impact_environmental" validate:"min=0,max=5"`
	ImpactSafety        int                 `json:"impact_safety" validate:"min=0,max=5"`
	ImpactLegal         int                 `json:"impact_legal" validate:"min=0,max=5"`
	ImpactReputation    int                 `json:"impact_reputation" validate:"min=0,max=5"`
	EscalationCurve     EscalationCurve     `json:"impact_escalation_curve"`
	CrisisTriggerRules  *CrisisTriggerRules `json:"crisis_trigger_rules,omitempty"`
	ImpactCurves        []ImpactCurve       `json:"impact_curves,omitempty" validate:"dive"`
}

// MTPDMinutes is the maximum tolerable period of disruption in minutes
func (p BIAProfile) MTPDMinutes() int { return p.MAOHours * 60 }

// RTOMinutes is the recovery time objective in minutes
func (p BIAProfile) RTOMinutes() int { return p.RTOHours * 60 }

// RPOMinutes is the recovery point objective in minutes
func (p BIAProfile) RPOMinutes() int { return p.RPOHours * 60 }

// ImpactThreshold is one legacy category threshold
type ImpactThreshold struct {
	Hours int    `json:"hours" validate:"min=0"`
	Label string `json:"label" validate:"required"`
}

// ImpactCurve is the legacy per-category escalation curve with five thresholds t1..t5.
type ImpactCurve struct {
	Category   string             `json:"impact_category" validate:"required"`
	Thresholds [5]ImpactThreshold `json:"thresholds" validate:"dive"`
}
