package bia

import (
	"math"

	"github.com/riskgraph/pkg/models"
)

var defaultCurveRatios = []struct {
	ratio float64
	level models.ImpactLevel
}{
	{0.25, models.ImpactMinor},
	{0.50, models.ImpactDegraded},
	{0.75, models.ImpactSevere},
	{1.00, models.ImpactCritical},
}

// DeriveDefaultCurve builds an escalation curve from the MTPD when a profile has none.
// Step times are ceil(mtpd*ratio), pushed one minute past the previous step on collision.
func DeriveDefaultCurve(mtpdMinutes int) []models.EscalationStep {
	if mtpdMinutes <= 0 {
		return nil
	}

	curve := make([]models.EscalationStep, 0, len(defaultCurveRatios))
	last := 0
	for _, r := range defaultCurveRatios {
		t := int(math.Ceil(float64(mtpdMinutes) * r.ratio))
		if t <= last {
			t = last + 1
		}
		curve = append(curve, models.EscalationStep{TimeMinutes: t, Level: r.level})
		last = t
	}
	return curve
}
