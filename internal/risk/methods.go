package risk

import (
	"fmt"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// BuiltinMethods returns the stock scoring method catalog. INHERENT_V1 is the default.
func BuiltinMethods() []models.RiskScoringMethod {
	method := func(code, name string, t models.MethodType, lw, iw, tw float64) models.RiskScoringMethod {
		return models.RiskScoringMethod{
			Code:                         code,
			Name:                         name,
			MethodType:                   t,
			LikelihoodWeight:             lw,
			ImpactWeight:                 iw,
			TreatmentEffectivenessWeight: tw,
			IsActive:                     true,
		}
	}

	methods := []models.RiskScoringMethod{
		method("INHERENT_V1", "Inherent Baseline", models.MethodInherent, 1.0, 1.0, 1.0),
		method("RESIDUAL_V1", "Residual Weighted", models.MethodResidual, 1.0, 1.0, 1.2),
		method("CUSTOM_WEIGHTED_V1", "Custom Weighted", models.MethodCustom, 1.3, 1.1, 1.0),
		method("CIA_V1", "CIA (Confidentiality/Integrity/Availability)", models.MethodCIA, 1.0, 1.0, 1.0),
		method("CVSS_V3", "CVSS v3", models.MethodCVSS, 1.0, 1.0, 1.0),
		method("DREAD_V1", "DREAD", models.MethodDREAD, 1.0, 1.0, 1.0),
		method("CLASSIC_V1", "Classic", models.MethodClassic, 1.0, 1.0, 1.0),
		method("OWASP_V1", "OWASP", models.MethodOWASP, 1.0, 1.0, 1.0),
	}
	methods[0].IsDefault = true
	return methods
}

// ValidateMethod checks the method type and that weights are non-negative.
func ValidateMethod(method models.RiskScoringMethod) error {
	return validation.Struct(method)
}

// ValidateMethods checks each method, code uniqueness and that at most one
// active method is the default.
func ValidateMethods(methods []models.RiskScoringMethod) error {
	var errs validation.Errors
	codes := make(map[string]struct{}, len(methods))
	defaults := 0
	for i, m := range methods {
		if err := ValidateMethod(m); err != nil {
			errs.Add(fmt.Sprintf("methods[%d]", i), "%v", err)
		}
		if _, dup := codes[m.Code]; dup {
			errs.Add(fmt.Sprintf("methods[%d].code", i), "duplicate code %q", m.Code)
		}
		codes[m.Code] = struct{}{}
		if m.IsActive && m.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		errs.Add("methods", "%d active methods are marked default, at most one is allowed", defaults)
	}
	return errs.Err()
}

// FindMethod returns the method with the given code
func FindMethod(methods []models.RiskScoringMethod, code string) (*models.RiskScoringMethod, error) {
	for i := range methods {
		if methods[i].Code == code {
			return &methods[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, code)
}

// DefaultMethod returns the active default method, if any
func DefaultMethod(methods []models.RiskScoringMethod) (*models.RiskScoringMethod, bool) {
	for i := range methods {
		if methods[i].IsActive && methods[i].IsDefault {
			return &methods[i], true
		}
	}
	return nil, false
}

// SetDefaultMethod marks code as the default and clears the flag on every other method.
// The target must exist and be active; otherwise methods are left unchanged.
func SetDefaultMethod(methods []models.RiskScoringMethod, code string) error {
	target, err := FindMethod(methods, code)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return validation.New("code", "method %s is inactive and cannot be the default", code)
	}
	for i := range methods {
		methods[i].IsDefault = methods[i].Code == code
	}
	return nil
}
