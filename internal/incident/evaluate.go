// Package incident evaluates the service impact of incidents and hazard scenarios.
package incident

import (
	"sort"
	"time"

	"github.com/riskgraph/internal/bia"
	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/pkg/models"
)

// OutageMinutes is the whole number of minutes between start and now, never negative.
func OutageMinutes(start, now time.Time) int {
	d := now.UTC().Sub(start.UTC())
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Evaluate propagates the affected assets through deps and evaluates every
// impacted service that has a BIA profile. Results are sorted by service code.
func Evaluate(start, now time.Time, affected []string, deps graph.DependencyMap, catalog *Catalog) []models.ServiceImpact {
	return evaluateOutage(OutageMinutes(start, now), affected, deps, catalog)
}

func evaluateOutage(outage int, affected []string, deps graph.DependencyMap, catalog *Catalog) []models.ServiceImpact {
	failed := deps.Propagate(affected)
	model := bia.EscalationModel{OutageMinutes: outage}

	results := make([]models.ServiceImpact, 0)
	for serviceID, assets := range catalog.ServicesForAssets(failed) {
		profile := catalog.Profile(serviceID)
		if profile == nil {
			continue
		}
		service, _ := catalog.Service(serviceID)
		results = append(results, newServiceImpact(service, *model.Assess(profile).Escalation, assets))
	}
	sortImpacts(results)
	return results
}

func newServiceImpact(service models.CriticalService, r bia.ImpactResult, failedAssets []string) models.ServiceImpact {
	return models.ServiceImpact{
		ServiceID:            service.ID,
		ServiceCode:          service.Code,
		Name:                 service.Name,
		ImpactLevel:          r.Level,
		MTPDProgress:         r.MTPDProgress,
		CrisisRecommended:    r.CrisisRecommended,
		Warnings:             r.Warnings,
		NextThresholdMinutes: r.NextThresholdMinutes,
		NextThresholdLevel:   r.NextThresholdLevel,
		Breaches:             r.Breaches,
		FailedAssetIDs:       failedAssets,
	}
}

func sortImpacts(impacts []models.ServiceImpact) {
	sort.Slice(impacts, func(i, j int) bool {
		if impacts[i].ServiceCode != impacts[j].ServiceCode {
			return impacts[i].ServiceCode < impacts[j].ServiceCode
		}
		return impacts[i].ServiceID < impacts[j].ServiceID
	})
}
