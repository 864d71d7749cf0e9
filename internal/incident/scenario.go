package incident

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/riskgraph/internal/bia"
	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/internal/telemetry"
	"github.com/riskgraph/pkg/models"
)

// ScenarioRepository supplies hazard scenarios for what-if simulation
type ScenarioRepository interface {
	GetScenario(ctx context.Context, id string) (models.Scenario, error)
	GetHazard(ctx context.Context, id string) (models.Hazard, error)
	ListHazardLinks(ctx context.Context, hazardID string) ([]models.HazardLink, error)
}

// ScenarioServiceImpact is the legacy category impact on one service
type ScenarioServiceImpact struct {
	ServiceID      string                        `json:"service_id"`
	ServiceCode    string                        `json:"service_code"`
	Name           string                        `json:"name"`
	Impact         map[string]bia.CategoryImpact `json:"impact"`
	FailedAssetIDs []string                      `json:"failed_asset_ids"`
}

// ScenarioResult is the outcome of a hazard scenario simulation
type ScenarioResult struct {
	Scenario       models.Scenario         `json:"scenario"`
	Hazard         models.Hazard           `json:"hazard"`
	DurationHours  int                     `json:"duration_hours"`
	FailedAssetIDs []string                `json:"failed_asset_ids"`
	Services       []ScenarioServiceImpact `json:"services"`
}

// SimulateScenario fails every asset linked to the scenario's hazard, plus the
// assets of linked services, and resolves the legacy category impact of each
// affected service. durationHours overrides the scenario duration when set.
// Services without a BIA profile are reported with an empty impact.
func (m *Manager) SimulateScenario(ctx context.Context, scenarioID string, durationHours *int) (_ *ScenarioResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "scenario.simulate")
	defer span.End()
	telemetry.AddSpanAttributes(span, map[string]string{"scenario.id": scenarioID})
	began := time.Now()
	defer func() { m.observe("simulate_scenario", began, err) }()

	if m.scenarios == nil {
		return nil, ErrNoScenarioRepository
	}

	scenario, err := m.scenarios.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, notFound(err, ErrScenarioNotFound, scenarioID)
	}
	hazard, err := m.scenarios.GetHazard(ctx, scenario.HazardID)
	if err != nil {
		return nil, notFound(err, ErrScenarioNotFound, scenarioID)
	}
	links, err := m.scenarios.ListHazardLinks(ctx, hazard.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hazard links: %w", err)
	}

	services, err := m.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	mappings, err := m.repo.ListServiceMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list service mappings: %w", err)
	}
	profiles, err := m.repo.ListBIAProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list BIA profiles: %w", err)
	}
	edges, err := m.edges(ctx)
	if err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}
	catalog := NewCatalog(services, mappings, profiles)

	duration := scenario.DurationHours
	if durationHours != nil {
		duration = *durationHours
	}

	seeds := scenarioSeeds(links, catalog)
	failed := graph.PropagateFailures(seeds, graph.FilterEdges(edges, m.config.DependencyTypes...))
	model := bia.CategoryModel{DurationHours: duration}

	failedSet := make(map[string]struct{}, len(failed))
	for _, id := range failed {
		failedSet[id] = struct{}{}
	}

	result := &ScenarioResult{
		Scenario:       scenario,
		Hazard:         hazard,
		DurationHours:  duration,
		FailedAssetIDs: failed,
		Services:       make([]ScenarioServiceImpact, 0),
	}
	for serviceID, assets := range catalog.ServicesForAssets(failedSet) {
		service, _ := catalog.Service(serviceID)
		result.Services = append(result.Services, ScenarioServiceImpact{
			ServiceID:      service.ID,
			ServiceCode:    service.Code,
			Name:           service.Name,
			Impact:         model.Assess(catalog.Profile(serviceID)).Categories,
			FailedAssetIDs: assets,
		})
	}
	sortScenarioServices(result.Services)

	m.logger.Debug("Simulated scenario",
		zap.String("scenario_id", scenarioID),
		zap.String("hazard_id", hazard.ID),
		zap.Int("duration_hours", duration),
		zap.Int("failed_assets", len(failed)),
		zap.Int("services", len(result.Services)))

	return result, nil
}

func scenarioSeeds(links []models.HazardLink, catalog *Catalog) []string {
	var seeds, serviceIDs []string
	for _, l := range links {
		if l.AssetID != "" {
			seeds = append(seeds, l.AssetID)
		}
		if l.ServiceID != "" {
			serviceIDs = append(serviceIDs, l.ServiceID)
		}
	}
	if len(serviceIDs) > 0 {
		seeds = append(seeds, catalog.AssetsForServices(serviceIDs)...)
	}
	return seeds
}

func sortScenarioServices(services []ScenarioServiceImpact) {
	sort.Slice(services, func(i, j int) bool {
		if services[i].ServiceCode != services[j].ServiceCode {
			return services[i].ServiceCode < services[j].ServiceCode
		}
		return services[i].ServiceID < services[j].ServiceID
	})
}
