package bia

import (
	"sort"

	"github.com/riskgraph/pkg/models"
)

// CategoryImpact is the resolved threshold of one legacy impact category.
// Level is the threshold's position t1..t5, not its rank after sorting.
type CategoryImpact struct {
	Label string `json:"label"`
	Level int    `json:"level"`
}

type rankedThreshold struct {
	hours int
	label string
	level int
}

// EvaluateCategoryImpact resolves every legacy category curve of the profile
// for an outage of durationHours. A nil profile yields an empty map.
func EvaluateCategoryImpact(profile *models.BIAProfile, durationHours int) map[string]CategoryImpact {
	impact := make(map[string]CategoryImpact)
	if profile == nil {
		return impact
	}
	for _, curve := range profile.ImpactCurves {
		impact[curve.Category] = categoryImpactFor(curve, durationHours)
	}
	return impact
}

func categoryImpactFor(curve models.ImpactCurve, durationHours int) CategoryImpact {
	ranked := make([]rankedThreshold, len(curve.Thresholds))
	for i, t := range curve.Thresholds {
		ranked[i] = rankedThreshold{hours: t.Hours, label: t.Label, level: i + 1}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].hours < ranked[j].hours })

	selected := ranked[len(ranked)-1]
	for _, t := range ranked {
		if durationHours <= t.hours {
			selected = t
			break
		}
	}
	return CategoryImpact{Label: selected.label, Level: selected.level}
}
