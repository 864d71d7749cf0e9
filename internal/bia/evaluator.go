// Package bia evaluates business impact analysis profiles against outage durations.
package bia

import (
	"math"
	"sort"

	"github.com/riskgraph/pkg/models"
)

// Warnings attached to an ImpactResult when a safe default was substituted.
const (
	WarnMissingCurve       = "MISSING_ESCALATION_CURVE_DERIVED_DEFAULT"
	WarnInvalidCurve       = "INVALID_ESCALATION_CURVE_DEFAULT_APPLIED"
	WarnMissingMTPD        = "MISSING_MTPD"
	WarnMissingCrisisRules = "MISSING_CRISIS_RULES_DEFAULTS_APPLIED"
)

// BreachRTO is reported once the outage reaches the recovery time objective.
const BreachRTO = "RTO_BREACH"

// Minimum level severity before the environmental and safety triggers apply.
const (
	environmentalMinSeverity = 3
	safetyMinSeverity        = 2
)

// ImpactResult is the evaluated impact of an outage on one service.
// Warnings and Breaches are never nil.
type ImpactResult struct {
	Level                models.ImpactLevel  `json:"impact_level"`
	MTPDProgress         float64             `json:"mtpd_progress"`
	CrisisRecommended    bool                `json:"crisis_recommended"`
	Warnings             []string            `json:"warnings"`
	NextThresholdMinutes *int                `json:"next_threshold_minutes"`
	NextThresholdLevel   *models.ImpactLevel `json:"next_threshold_level"`
	Breaches             []string            `json:"breaches"`
}

// EvaluateServiceImpact resolves the impact level, crisis recommendation and
// SLA breaches of a service that has been down for outageMinutes.
func EvaluateServiceImpact(profile models.BIAProfile, outageMinutes int) ImpactResult {
	result := ImpactResult{
		Level:    models.ImpactUnknown,
		Warnings: []string{},
		Breaches: []string{},
	}

	mtpd := profile.MTPDMinutes()
	rto := profile.RTOMinutes()

	if rto > 0 && outageMinutes >= rto {
		result.Breaches = append(result.Breaches, BreachRTO)
	}

	steps := profile.EscalationCurve.Steps
	if profile.EscalationCurve.Malformed {
		steps = nil
		result.Warnings = append(result.Warnings, WarnInvalidCurve)
	}
	if len(steps) == 0 {
		steps = DeriveDefaultCurve(mtpd)
		result.Warnings = append(result.Warnings, WarnMissingCurve)
	}

	switch {
	case mtpd <= 0:
		result.Warnings = append(result.Warnings, WarnMissingMTPD)
	case outageMinutes > mtpd:
		result.Level = models.ImpactCatastrophic
	case len(steps) > 0:
		if hasBrokenStep(steps) {
			result.Warnings = append(result.Warnings, WarnInvalidCurve)
			result.Level = levelAt(DeriveDefaultCurve(mtpd), outageMinutes)
			break
		}
		sorted := sortedSteps(steps)
		result.Level = levelAt(sorted, outageMinutes)
		if next, ok := nextThreshold(sorted, outageMinutes); ok {
			minutes, level := next.TimeMinutes, next.Level
			result.NextThresholdMinutes = &minutes
			result.NextThresholdLevel = &level
		}
	}

	rules, ruleWarnings := NormalizeCrisisRules(profile.CrisisTriggerRules)
	result.Warnings = append(result.Warnings, ruleWarnings...)
	result.CrisisRecommended = crisisRecommended(profile, rules, mtpd, outageMinutes, result.Level)

	if mtpd > 0 {
		result.MTPDProgress = round4(float64(outageMinutes) / float64(mtpd))
	}

	return result
}

func crisisRecommended(profile models.BIAProfile, rules CrisisRules, mtpd, outageMinutes int, level models.ImpactLevel) bool {
	severity := level.Severity()

	if mtpd > 0 && float64(outageMinutes) >= float64(mtpd)*rules.MTPDPercentageTrigger {
		return true
	}
	if severity >= rules.ImpactLevelTrigger.Severity() {
		return true
	}
	if t := rules.EnvironmentalSeverityTrigger; t != nil &&
		float64(profile.ImpactEnvironmental) >= *t && severity >= environmentalMinSeverity {
		return true
	}
	if t := rules.SafetySeverityTrigger; t != nil &&
		float64(profile.ImpactSafety) >= *t && severity >= safetyMinSeverity {
		return true
	}
	return false
}

func hasBrokenStep(steps []models.EscalationStep) bool {
	for _, s := range steps {
		if s.Broken {
			return true
		}
	}
	return false
}

func sortedSteps(steps []models.EscalationStep) []models.EscalationStep {
	sorted := append([]models.EscalationStep(nil), steps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TimeMinutes < sorted[j].TimeMinutes })
	return sorted
}

// levelAt returns the level of the last step reached. Steps must be sorted.
func levelAt(sorted []models.EscalationStep, outageMinutes int) models.ImpactLevel {
	level := models.ImpactUnknown
	for _, s := range sorted {
		if outageMinutes >= s.TimeMinutes {
			level = s.Level
		}
	}
	return level
}

func nextThreshold(sorted []models.EscalationStep, outageMinutes int) (models.EscalationStep, bool) {
	for _, s := range sorted {
		if outageMinutes < s.TimeMinutes {
			return s, true
		}
	}
	return models.EscalationStep{}, false
}

func round4(v float64) float64 {
	return math.RoundToEven(v*10000) / 10000
}
