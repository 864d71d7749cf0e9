package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskStatus represents the lifecycle state of a risk
type RiskStatus string

const (
	RiskStatusOpen       RiskStatus = "open"
	RiskStatusInProgress RiskStatus = "in_progress"
	RiskStatusClosed     RiskStatus = "closed"
)

// TreatmentStatus represents the state of a risk treatment
type TreatmentStatus string

const (
	TreatmentPlanned    TreatmentStatus = "planned"
	TreatmentInProgress TreatmentStatus = "in_progress"
	TreatmentCompleted  TreatmentStatus = "completed"
	TreatmentCancelled  TreatmentStatus = "cancelled"
)

// Active reports whether the treatment still contributes to residual risk.
func (s TreatmentStatus) Active() bool {
	return s == TreatmentPlanned || s == TreatmentInProgress
}

// MethodType represents a scoring methodology
type MethodType string

const (
	MethodInherent MethodType = "inherent"
	MethodResidual MethodType = "residual"
	MethodCustom   MethodType = "custom"
	MethodClassic  MethodType = "classic"
	MethodCVSS     MethodType = "cvss"
	MethodDREAD    MethodType = "dread"
	MethodOWASP    MethodType = "owasp"
	MethodCIA      MethodType = "cia"
)

// InputKind returns the scoring input variant a method type consumes
func (m MethodType) InputKind() InputKind {
	switch m {
	case MethodCIA:
		return InputCIA
	case MethodDREAD:
		return InputDREAD
	case MethodOWASP:
		return InputOWASP
	case MethodCVSS:
		return InputCVSS
	default:
		return InputClassic
	}
}

// RiskScoringMethod is a weighted scoring methodology
type RiskScoringMethod struct {
	Code                         string     `json:"code" yaml:"code" validate:"required"`
	Name                         string     `json:"name" yaml:"name"`
	MethodType                   MethodType `json:"method_type" yaml:"method_type" validate:"required,oneof=inherent residual custom classic cvss dread owasp cia"`
	LikelihoodWeight             float64    `json:"likelihood_weight" yaml:"likelihood_weight" validate:"min=0"`
	ImpactWeight                 float64    `json:"impact_weight" yaml:"impact_weight" validate:"min=0"`
	TreatmentEffectivenessWeight float64    `json:"treatment_effectiveness_weight" yaml:"treatment_effectiveness_weight" validate:"min=0"`
	IsDefault                    bool       `json:"is_default" yaml:"is_default"`
	IsActive                     bool       `json:"is_active" yaml:"is_active"`
}

// RiskTreatment is a mitigation action owned by a risk
type RiskTreatment struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Status          TreatmentStatus `json:"status" validate:"required,oneof=planned in_progress completed cancelled"`
	ProgressPercent int             `json:"progress_percent" validate:"min=0,max=100"`
}

// RiskScoringSnapshot is an immutable record of one score computation
type RiskScoringSnapshot struct {
	ID            string    `json:"id"`
	RiskID        string    `json:"risk_id"`
	MethodCode    string    `json:"scoring_method,omitempty"`
	InherentScore float64   `json:"inherent_score"`
	ResidualScore float64   `json:"residual_score"`
	CalculatedBy  string    `json:"calculated_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewScoringSnapshot creates a snapshot stamped with a fresh id
func NewScoringSnapshot(riskID, methodCode string, inherent, residual float64, actor string, at time.Time) RiskScoringSnapshot {
	return RiskScoringSnapshot{
		ID:            uuid.New().String(),
		RiskID:        riskID,
		MethodCode:    methodCode,
		InherentScore: inherent,
		ResidualScore: residual,
		CalculatedBy:  actor,
		CreatedAt:     at.UTC(),
	}
}

// Risk is a scored risk register entry
type Risk struct {
	ID                string                `json:"id" validate:"required"`
	Title             string                `json:"title"`
	Likelihood        int                   `json:"likelihood" validate:"min=1,max=5"`
	Impact            int                   `json:"impact" validate:"min=1,max=5"`
	Confidentiality   *int                  `json:"confidentiality,omitempty" validate:"omitempty,min=1,max=5"`
	Integrity         *int                  `json:"integrity,omitempty" validate:"omitempty,min=1,max=5"`
	Availability      *int                  `json:"availability,omitempty" validate:"omitempty,min=1,max=5"`
	InherentScore     float64               `json:"inherent_score"`
	ResidualScore     float64               `json:"residual_score"`
	Status            RiskStatus            `json:"status" validate:"required,oneof=open in_progress closed"`
	ScoringMethodCode string                `json:"scoring_method,omitempty"`
	PrimaryAssetID    string                `json:"primary_asset_id,omitempty"`
	LinkedAssetIDs    []string              `json:"linked_asset_ids,omitempty"`
	Treatments        []RiskTreatment       `json:"treatments,omitempty" validate:"dive"`
	Dread             *DreadFactors         `json:"dread_inputs,omitempty"`
	Owasp             *OwaspFactors         `json:"owasp_inputs,omitempty"`
	Cvss              *CvssFactors          `json:"cvss_inputs,omitempty"`
	ScoringHistory    []RiskScoringSnapshot `json:"scoring_history,omitempty"`
}

// HasCIA reports whether all three CIA ratings are set.
func (r *Risk) HasCIA() bool {
	return r.Confidentiality != nil && r.Integrity != nil && r.Availability != nil
}

// AffectedAssetIDs returns the primary asset followed by linked assets, without duplicates.
func (r *Risk) AffectedAssetIDs() []string {
	seen := make(map[string]struct{}, len(r.LinkedAssetIDs)+1)
	ids := make([]string, 0, len(r.LinkedAssetIDs)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(r.PrimaryAssetID)
	for _, id := range r.LinkedAssetIDs {
		add(id)
	}
	return ids
}
