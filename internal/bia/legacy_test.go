package bia

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskgraph/pkg/models"
)

func legacyProfile() *models.BIAProfile {
	return &models.BIAProfile{
		ServiceID: "svc-1",
		ImpactCurves: []models.ImpactCurve{
			{
				Category: "financial",
				Thresholds: [5]models.ImpactThreshold{
					{Hours: 1, Label: "low"},
					{Hours: 4, Label: "moderate"},
					{Hours: 8, Label: "high"},
					{Hours: 24, Label: "severe"},
					{Hours: 72, Label: "extreme"},
				},
			},
			{
				Category: "safety",
				Thresholds: [5]models.ImpactThreshold{
					{Hours: 48, Label: "e"},
					{Hours: 2, Label: "a"},
					{Hours: 6, Label: "b"},
					{Hours: 12, Label: "c"},
					{Hours: 24, Label: "d"},
				},
			},
		},
	}
}

func TestEvaluateCategoryImpact(t *testing.T) {
	tests := []struct {
		hours     int
		financial CategoryImpact
		safety    CategoryImpact
	}{
		{hours: 0, financial: CategoryImpact{"low", 1}, safety: CategoryImpact{"a", 2}},
		{hours: 4, financial: CategoryImpact{"moderate", 2}, safety: CategoryImpact{"b", 3}},
		{hours: 5, financial: CategoryImpact{"high", 3}, safety: CategoryImpact{"b", 3}},
		{hours: 30, financial: CategoryImpact{"extreme", 5}, safety: CategoryImpact{"e", 1}},
		{hours: 500, financial: CategoryImpact{"extreme", 5}, safety: CategoryImpact{"e", 1}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			impact := EvaluateCategoryImpact(legacyProfile(), tt.hours)

			assert.Len(t, impact, 2)
			assert.Equal(t, tt.financial, impact["financial"], "financial at %dh", tt.hours)
			assert.Equal(t, tt.safety, impact["safety"], "safety at %dh", tt.hours)
		})
	}
}

func TestEvaluateCategoryImpactWithoutProfile(t *testing.T) {
	impact := EvaluateCategoryImpact(nil, 12)
	assert.NotNil(t, impact)
	assert.Empty(t, impact)
}

func TestImpactModels(t *testing.T) {
	profile := legacyProfile()
	profile.MAOHours = 2

	impactModels := []ImpactModel{EscalationModel{OutageMinutes: 60}, CategoryModel{DurationHours: 1}}

	escalation := impactModels[0].Assess(profile)
	assert.Equal(t, KindEscalation, escalation.Kind)
	if assert.NotNil(t, escalation.Escalation) {
		assert.Equal(t, models.ImpactDegraded, escalation.Escalation.Level)
	}
	assert.Nil(t, escalation.Categories)

	category := impactModels[1].Assess(profile)
	assert.Equal(t, KindCategory, category.Kind)
	assert.Nil(t, category.Escalation)
	assert.Equal(t, CategoryImpact{"low", 1}, category.Categories["financial"])

	unknown := EscalationModel{OutageMinutes: 10}.Assess(nil)
	assert.Equal(t, models.ImpactUnknown, unknown.Escalation.Level)
	assert.Contains(t, unknown.Escalation.Warnings, WarnMissingMTPD)
}
