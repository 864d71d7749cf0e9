package bia

import (
	"github.com/riskgraph/pkg/models"
)

// Defaults for crisis trigger rules that were not configured.
const (
	DefaultMTPDPercentageTrigger = 0.75
	DefaultImpactLevelTrigger    = models.ImpactCritical
)

// CrisisRules are crisis trigger rules with every primary key resolved.
type CrisisRules struct {
	MTPDPercentageTrigger        float64            `json:"mtpd_percentage_trigger"`
	ImpactLevelTrigger           models.ImpactLevel `json:"impact_level_trigger"`
	EnvironmentalSeverityTrigger *float64           `json:"environmental_severity_trigger"`
	SafetySeverityTrigger        *float64           `json:"safety_severity_trigger"`
}

// NormalizeCrisisRules fills in defaults. A warning is emitted when the rules
// are absent or either primary trigger is missing; missing optional triggers stay nil.
func NormalizeCrisisRules(rules *models.CrisisTriggerRules) (CrisisRules, []string) {
	normalized := CrisisRules{
		MTPDPercentageTrigger: DefaultMTPDPercentageTrigger,
		ImpactLevelTrigger:    DefaultImpactLevelTrigger,
	}
	if rules == nil {
		return normalized, []string{WarnMissingCrisisRules}
	}

	var warnings []string
	if rules.MTPDPercentageTrigger != nil {
		normalized.MTPDPercentageTrigger = *rules.MTPDPercentageTrigger
	}
	if rules.ImpactLevelTrigger != nil {
		normalized.ImpactLevelTrigger = *rules.ImpactLevelTrigger
	}
	if rules.MTPDPercentageTrigger == nil || rules.ImpactLevelTrigger == nil {
		warnings = append(warnings, WarnMissingCrisisRules)
	}
	normalized.EnvironmentalSeverityTrigger = rules.EnvironmentalSeverityTrigger
	normalized.SafetySeverityTrigger = rules.SafetySeverityTrigger

	return normalized, warnings
}
