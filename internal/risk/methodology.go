package risk

import (
	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// ApplyMethodologyInputs sets likelihood and impact on risk from the inputs of
// its scoring method and keeps only the factor set that method uses.
// A nil method takes ClassicInputs. The risk is untouched when validation fails.
func ApplyMethodologyInputs(risk *models.Risk, method *models.RiskScoringMethod, inputs models.ScoringInputs) error {
	want := models.InputClassic
	methodCode := ""
	if method != nil {
		want = method.MethodType.InputKind()
		methodCode = method.Code
	}

	if inputs == nil {
		return missingInputs("%s scoring requires %s inputs", methodLabel(method), want)
	}
	if inputs.Kind() != want {
		return missingInputs("%s scoring requires %s inputs, got %s", methodLabel(method), want, inputs.Kind())
	}
	if err := validation.Struct(inputs); err != nil {
		return err
	}

	next := *risk
	next.ScoringMethodCode = methodCode
	next.Dread, next.Owasp, next.Cvss = nil, nil, nil
	next.Confidentiality, next.Integrity, next.Availability = nil, nil, nil

	switch in := inputs.(type) {
	case models.ClassicInputs:
		next.Likelihood = in.Likelihood
		next.Impact = in.Impact
	case models.CIAInputs:
		next.Likelihood = in.Likelihood
		next.Confidentiality = intPtr(in.Confidentiality)
		next.Integrity = intPtr(in.Integrity)
		next.Availability = intPtr(in.Availability)
	case models.DreadFactors:
		next.Likelihood, next.Impact = AggregateDread(in)
		next.Dread = &in
	case models.OwaspFactors:
		next.Likelihood, next.Impact = AggregateOwasp(in)
		next.Owasp = &in
	case models.CvssFactors:
		next.Likelihood, next.Impact = AggregateCvss(in)
		next.Cvss = &in
	default:
		return missingInputs("unsupported inputs %T", inputs)
	}

	*risk = next
	return nil
}

// AggregateDread derives likelihood and impact from DREAD factors
func AggregateDread(f models.DreadFactors) (likelihood, impact int) {
	likelihood = meanScale(f.Reproducibility, f.Exploitability, f.Discoverability)
	impact = meanScale(f.Damage, f.AffectedUsers)
	return likelihood, impact
}

// AggregateOwasp derives likelihood and impact from OWASP factors
func AggregateOwasp(f models.OwaspFactors) (likelihood, impact int) {
	likelihood = meanScale(
		f.SkillLevel,
		f.Motive,
		f.Opportunity,
		f.Size,
		f.EaseOfDiscovery,
		f.EaseOfExploit,
		f.Awareness,
		f.IntrusionDetection,
	)
	impact = meanScale(
		f.LossConfidentiality,
		f.LossIntegrity,
		f.LossAvailability,
		f.LossAccountability,
		f.FinancialDamage,
		f.ReputationDamage,
		f.NonCompliance,
		f.PrivacyViolation,
	)
	return likelihood, impact
}

// AggregateCvss derives likelihood and impact from CVSS factors.
// RemediationLevel does not contribute.
func AggregateCvss(f models.CvssFactors) (likelihood, impact int) {
	likelihood = meanScale(
		f.AttackVector,
		f.AttackComplexity,
		f.Authentication,
		f.Exploitability,
		f.ReportConfidence,
	)
	impact = meanScale(
		f.ConfidentialityImpact,
		f.IntegrityImpact,
		f.AvailabilityImpact,
		f.CollateralDamagePotential,
		f.TargetDistribution,
		f.ConfidentialityRequirement,
		f.IntegrityRequirement,
		f.AvailabilityRequirement,
	)
	return likelihood, impact
}

func methodLabel(method *models.RiskScoringMethod) string {
	if method == nil {
		return "unweighted"
	}
	return string(method.MethodType)
}

func intPtr(v int) *int { return &v }
