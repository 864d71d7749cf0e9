package incident

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/internal/store"
	"github.com/riskgraph/internal/telemetry"
	"github.com/riskgraph/pkg/models"
)

// Repository supplies the service catalog and recorded incidents.
type Repository interface {
	ListServices(ctx context.Context) ([]models.CriticalService, error)
	ListServiceMappings(ctx context.Context) ([]models.ServiceAssetMapping, error)
	ListBIAProfiles(ctx context.Context) ([]models.BIAProfile, error)
	GetIssue(ctx context.Context, id string) (models.RiskIssue, error)
	GetRisk(ctx context.Context, id string) (models.Risk, error)
}

// Recorder receives evaluation measurements
type Recorder interface {
	ObserveEvaluation(operation string, duration time.Duration, err error)
	RecordServiceImpact(impact models.ServiceImpact)
}

// Publisher hands evaluated impacts to downstream consumers
type Publisher interface {
	PublishServiceImpacts(ctx context.Context, incidentID string, outageMinutes int, impacts []models.ServiceImpact) error
}

// Config controls incident evaluation
type Config struct {
	// Concurrency bounds batch evaluation. Zero or less means one worker.
	Concurrency     int                     `yaml:"concurrency"`
	// DependencyTypes restricts the edges a scenario simulation propagates
	// over. Empty means every type. Incident evaluation always uses all edges.
	DependencyTypes []models.DependencyType `yaml:"dependency_types"`
}

// DefaultConfig returns default incident configuration
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

// Request is one incident in a batch evaluation
type Request struct {
	ID               string    `json:"id"`
	Start            time.Time `json:"start"`
	AffectedAssetIDs []string  `json:"affected_asset_ids"`
}

// Result is the evaluation of one Request
type Result struct {
	ID            string                 `json:"id"`
	OutageMinutes int                    `json:"outage_minutes"`
	Impacts       []models.ServiceImpact `json:"services"`
}

// Manager loads the catalog and dependency graph from its collaborators and
// runs the pure evaluation over them.
type Manager struct {
	repo      Repository
	scenarios ScenarioRepository
	deps      graph.DependencySource
	config    Config
	logger    *zap.Logger
	recorder  Recorder
	publisher Publisher
}

// NewManager creates a manager. deps may be the repository itself or a graph store.
func NewManager(repo Repository, deps graph.DependencySource, config Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:   repo,
		deps:   deps,
		config: config,
		logger: logger,
	}
}

// WithScenarios enables SimulateScenario.
func (m *Manager) WithScenarios(repo ScenarioRepository) *Manager {
	m.scenarios = repo
	return m
}

func (m *Manager) WithRecorder(r Recorder) *Manager {
	m.recorder = r
	return m
}

func (m *Manager) WithPublisher(p Publisher) *Manager {
	m.publisher = p
	return m
}

// EvaluateIncident evaluates an ad hoc incident over the current graph snapshot.
func (m *Manager) EvaluateIncident(ctx context.Context, start, now time.Time, affected []string) (_ []models.ServiceImpact, err error) {
	ctx, span := telemetry.StartSpan(ctx, "incident.evaluate")
	defer span.End()
	began := time.Now()
	defer func() { m.observe("evaluate_incident", began, err) }()

	catalog, deps, err := m.load(ctx)
	if err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}

	outage := OutageMinutes(start, now)
	impacts := evaluateOutage(outage, affected, deps, catalog)
	m.finish(ctx, "", outage, impacts)
	return impacts, nil
}

// EvaluateRecordedIncident evaluates a recorded incident. The affected assets
// are the risk's primary and linked assets and the outage starts at the
// incident's creation time.
func (m *Manager) EvaluateRecordedIncident(ctx context.Context, issueID string, now time.Time) (_ []models.ServiceImpact, err error) {
	ctx, span := telemetry.StartSpan(ctx, "incident.evaluate_recorded")
	defer span.End()
	telemetry.AddSpanAttributes(span, map[string]string{"incident.id": issueID})
	began := time.Now()
	defer func() { m.observe("evaluate_recorded_incident", began, err) }()

	req, err := m.RequestForIssue(ctx, issueID)
	if err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}

	catalog, deps, err := m.load(ctx)
	if err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}

	outage := OutageMinutes(req.Start, now)
	impacts := evaluateOutage(outage, req.AffectedAssetIDs, deps, catalog)
	m.finish(ctx, issueID, outage, impacts)
	return impacts, nil
}

// RequestForIssue resolves a recorded incident into a batch request.
func (m *Manager) RequestForIssue(ctx context.Context, issueID string) (Request, error) {
	issue, err := m.repo.GetIssue(ctx, issueID)
	if err != nil {
		return Request{}, notFound(err, ErrIssueNotFound, issueID)
	}
	r, err := m.repo.GetRisk(ctx, issue.RiskID)
	if err != nil {
		return Request{}, notFound(err, ErrIssueNotFound, issueID)
	}
	return Request{ID: issue.ID, Start: issue.CreatedAt, AffectedAssetIDs: r.AffectedAssetIDs()}, nil
}

// EvaluateIncidents evaluates a batch of incidents against one catalog and
// dependency map. Results are in request order.
func (m *Manager) EvaluateIncidents(ctx context.Context, requests []Request, now time.Time) (_ []Result, err error) {
	ctx, span := telemetry.StartSpan(ctx, "incident.evaluate_batch")
	defer span.End()
	began := time.Now()
	defer func() { m.observe("evaluate_incidents", began, err) }()

	catalog, deps, err := m.load(ctx)
	if err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}

	limit := m.config.Concurrency
	if limit <= 0 {
		limit = 1
	}

	results := make([]Result, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outage := OutageMinutes(req.Start, now)
			impacts := evaluateOutage(outage, req.AffectedAssetIDs, deps, catalog)
			results[i] = Result{ID: req.ID, OutageMinutes: outage, Impacts: impacts}
			m.finish(gctx, req.ID, outage, impacts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordSpanError(span, err, nil)
		return nil, err
	}

	m.logger.Info("Evaluated incident batch",
		zap.Int("incidents", len(requests)),
		zap.Int("concurrency", limit))
	return results, nil
}

func (m *Manager) load(ctx context.Context) (*Catalog, graph.DependencyMap, error) {
	services, err := m.repo.ListServices(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list services: %w", err)
	}
	mappings, err := m.repo.ListServiceMappings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list service mappings: %w", err)
	}
	profiles, err := m.repo.ListBIAProfiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list BIA profiles: %w", err)
	}
	edges, err := m.edges(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewCatalog(services, mappings, profiles), graph.BuildDependencyMap(edges), nil
}

func (m *Manager) edges(ctx context.Context) ([]models.AssetDependencyEdge, error) {
	edges, err := m.deps.ListDependencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return edges, nil
}

func (m *Manager) finish(ctx context.Context, incidentID string, outage int, impacts []models.ServiceImpact) {
	crises := 0
	for _, impact := range impacts {
		if impact.CrisisRecommended {
			crises++
		}
		if m.recorder != nil {
			m.recorder.RecordServiceImpact(impact)
		}
	}

	m.logger.Debug("Evaluated incident",
		zap.String("incident_id", incidentID),
		zap.Int("outage_minutes", outage),
		zap.Int("services", len(impacts)),
		zap.Int("crisis_recommended", crises))

	if m.publisher == nil || len(impacts) == 0 {
		return
	}
	if err := m.publisher.PublishServiceImpacts(ctx, incidentID, outage, impacts); err != nil {
		m.logger.Warn("Failed to publish service impacts",
			zap.String("incident_id", incidentID),
			zap.Error(err))
	}
}

func (m *Manager) observe(operation string, began time.Time, err error) {
	if m.recorder != nil {
		m.recorder.ObserveEvaluation(operation, time.Since(began), err)
	}
}

func notFound(err, sentinel error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}
