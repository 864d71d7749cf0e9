package bia

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// ValidateEscalationCurve checks a curve before it is stored. Times must be
// positive and strictly increasing, levels known, and the last step must
// reach the MTPD when one is set. An empty curve is accepted.
func ValidateEscalationCurve(curve models.EscalationCurve, mtpdMinutes int) error {
	var errs validation.Errors
	if curve.Malformed {
		errs.Add("impact_escalation_curve", "must be a list of steps")
		return errs
	}
	if curve.Empty() {
		return nil
	}

	prev := 0
	for i, step := range curve.Steps {
		field := fmt.Sprintf("impact_escalation_curve[%d]", i)
		if step.Broken {
			errs.Add(field, "%s", step.Problem)
			continue
		}
		if step.TimeMinutes <= 0 {
			errs.Add(field+".time_minutes", "must be greater than 0")
		} else if step.TimeMinutes <= prev {
			errs.Add(field+".time_minutes", "must be greater than the previous step (%d)", prev)
		}
		if step.TimeMinutes > prev {
			prev = step.TimeMinutes
		}
		if !step.Level.Valid() {
			errs.Add(field+".level", "unknown level %q", step.Level)
		}
	}

	last := curve.Steps[len(curve.Steps)-1]
	if mtpdMinutes > 0 && !last.Broken && last.TimeMinutes < mtpdMinutes {
		errs.Add("impact_escalation_curve", "last step must reach the MTPD (%d minutes)", mtpdMinutes)
	}
	return errs.Err()
}

// ParseEscalationCurve decodes and validates a stored curve payload.
func ParseEscalationCurve(data []byte, mtpdMinutes int) (models.EscalationCurve, error) {
	var curve models.EscalationCurve
	if err := json.Unmarshal(data, &curve); err != nil {
		return models.EscalationCurve{}, validation.New("impact_escalation_curve", "%v", err)
	}
	if err := ValidateEscalationCurve(curve, mtpdMinutes); err != nil {
		return models.EscalationCurve{}, err
	}
	return curve, nil
}

// ParseCrisisTriggerRules decodes a rules object, rejecting unknown keys.
// A null or empty payload yields nil rules.
func ParseCrisisTriggerRules(data []byte) (*models.CrisisTriggerRules, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, validation.New("crisis_trigger_rules", "must be an object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var rules models.CrisisTriggerRules
	if err := dec.Decode(&rules); err != nil {
		return nil, validation.New("crisis_trigger_rules", "%v", err)
	}
	if err := ValidateCrisisTriggerRules(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// ValidateCrisisTriggerRules checks trigger ranges. Nil rules are valid.
func ValidateCrisisTriggerRules(rules *models.CrisisTriggerRules) error {
	if rules == nil {
		return nil
	}
	return validation.Struct(rules)
}

// ValidateProfile checks a BIA profile, its curve and its crisis rules.
func ValidateProfile(profile models.BIAProfile) error {
	var errs validation.Errors
	if err := validation.Struct(profile); err != nil {
		errs.Merge(err)
	}
	if err := ValidateEscalationCurve(profile.EscalationCurve, profile.MTPDMinutes()); err != nil {
		errs.Merge(err)
	}
	return errs.Err()
}
