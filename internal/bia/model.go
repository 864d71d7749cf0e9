package bia

import "github.com/riskgraph/pkg/models"

// ModelKind identifies which impact mechanism produced an Assessment.
type ModelKind string

const (
	KindEscalation ModelKind = "escalation"
	KindCategory   ModelKind = "category"
)

// Assessment is the result of an ImpactModel. Exactly one of Escalation or
// Categories is set, matching Kind.
type Assessment struct {
	Kind       ModelKind                 `json:"kind"`
	Escalation *ImpactResult             `json:"escalation,omitempty"`
	Categories map[string]CategoryImpact `json:"categories,omitempty"`
}

// ImpactModel assesses an outage of a given length against a BIA profile.
// The two implementations use different units and are not interchangeable.
type ImpactModel interface {
	Kind() ModelKind
	Assess(profile *models.BIAProfile) Assessment
}

var (
	_ ImpactModel = EscalationModel{}
	_ ImpactModel = CategoryModel{}
)

// EscalationModel evaluates the escalation curve and crisis rules for an outage in minutes.
type EscalationModel struct {
	OutageMinutes int
}

func (EscalationModel) Kind() ModelKind { return KindEscalation }

// Assess returns an UNKNOWN result with a missing-MTPD warning when profile is nil.
func (m EscalationModel) Assess(profile *models.BIAProfile) Assessment {
	var p models.BIAProfile
	if profile != nil {
		p = *profile
	}
	result := EvaluateServiceImpact(p, m.OutageMinutes)
	return Assessment{Kind: KindEscalation, Escalation: &result}
}

// CategoryModel resolves the legacy per-category curves for an outage in hours.
type CategoryModel struct {
	DurationHours int
}

func (CategoryModel) Kind() ModelKind { return KindCategory }

func (m CategoryModel) Assess(profile *models.BIAProfile) Assessment {
	return Assessment{Kind: KindCategory, Categories: EvaluateCategoryImpact(profile, m.DurationHours)}
}
