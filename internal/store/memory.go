// Package store provides the in-memory snapshot repository used by the CLI and tests.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/riskgraph/internal/bia"
	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/internal/risk"
	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// ErrNotFound is returned when a record does not exist in the snapshot.
var ErrNotFound = errors.New("record not found")

// Data is the on-disk layout of a snapshot file.
type Data struct {
	Assets          []models.Asset               `json:"assets"`
	Dependencies    []models.AssetDependencyEdge `json:"asset_dependencies"`
	Services        []models.CriticalService     `json:"critical_services"`
	ServiceMappings []models.ServiceAssetMapping `json:"service_asset_mappings"`
	BIAProfiles     []models.BIAProfile          `json:"bia_profiles"`
	Hazards         []models.Hazard              `json:"hazards"`
	HazardLinks     []models.HazardLink          `json:"hazard_links"`
	Scenarios       []models.Scenario            `json:"scenarios"`
	Risks           []models.Risk                `json:"risks"`
	Issues          []models.RiskIssue           `json:"risk_issues"`
	ScoringMethods  []models.RiskScoringMethod   `json:"scoring_methods,omitempty"`
}

// Memory serves a Data snapshot through the repository interfaces of the
// incident and risk packages. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	data      Data
	risks     map[string]int
	issues    map[string]int
	scenarios map[string]int
	hazards   map[string]int
}

// NewMemory indexes data. The slices are owned by the returned store.
func NewMemory(data Data) *Memory {
	m := &Memory{data: data}
	m.reindex()
	return m
}

// Load reads a snapshot from a JSON file.
func Load(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Memory, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return NewMemory(data), nil
}

// Encode writes the current snapshot as indented JSON.
func (m *Memory) Encode(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.data)
}

// Save writes the snapshot back to path.
func (m *Memory) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}

func (m *Memory) reindex() {
	m.risks = make(map[string]int, len(m.data.Risks))
	for i, r := range m.data.Risks {
		m.risks[r.ID] = i
	}
	m.issues = make(map[string]int, len(m.data.Issues))
	for i, is := range m.data.Issues {
		m.issues[is.ID] = i
	}
	m.scenarios = make(map[string]int, len(m.data.Scenarios))
	for i, s := range m.data.Scenarios {
		m.scenarios[s.ID] = i
	}
	m.hazards = make(map[string]int, len(m.data.Hazards))
	for i, h := range m.data.Hazards {
		m.hazards[h.ID] = i
	}
}

// Validate runs the write-time checks over every record of the snapshot.
func (m *Memory) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs validation.Errors
	collect := func(field string, err error) {
		if err != nil {
			errs.Add(field, "%v", err)
		}
	}

	collect("asset_dependencies", graph.ValidateEdges(m.data.Dependencies))
	for i, p := range m.data.BIAProfiles {
		collect(fmt.Sprintf("bia_profiles[%d]", i), bia.ValidateProfile(p))
	}
	for i, r := range m.data.Risks {
		collect(fmt.Sprintf("risks[%d]", i), validation.Struct(r))
	}
	for i, l := range m.data.HazardLinks {
		collect(fmt.Sprintf("hazard_links[%d]", i), validation.Struct(l))
	}
	for i, s := range m.data.Scenarios {
		collect(fmt.Sprintf("scenarios[%d]", i), validation.Struct(s))
	}
	for i, is := range m.data.Issues {
		collect(fmt.Sprintf("risk_issues[%d]", i), validation.Struct(is))
	}
	if len(m.data.ScoringMethods) > 0 {
		collect("scoring_methods", risk.ValidateMethods(m.data.ScoringMethods))
	}
	return errs.Err()
}

func (m *Memory) ListDependencies(ctx context.Context) ([]models.AssetDependencyEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AssetDependencyEdge(nil), m.data.Dependencies...), nil
}

// UpsertDependency replaces an edge with the same key or appends it.
func (m *Memory) UpsertDependency(ctx context.Context, edge models.AssetDependencyEdge) error {
	if edge.Strength == 0 {
		edge.Strength = models.DefaultDependencyStrength
	}
	if err := validation.Struct(edge); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.data.Dependencies {
		if e.Key() == edge.Key() {
			m.data.Dependencies[i] = edge
			return nil
		}
	}
	m.data.Dependencies = append(m.data.Dependencies, edge)
	return nil
}

func (m *Memory) ListServices(ctx context.Context) ([]models.CriticalService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CriticalService(nil), m.data.Services...), nil
}

func (m *Memory) ListServiceMappings(ctx context.Context) ([]models.ServiceAssetMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ServiceAssetMapping(nil), m.data.ServiceMappings...), nil
}

func (m *Memory) ListBIAProfiles(ctx context.Context) ([]models.BIAProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.BIAProfile(nil), m.data.BIAProfiles...), nil
}

func (m *Memory) GetIssue(ctx context.Context, id string) (models.RiskIssue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.issues[id]
	if !ok {
		return models.RiskIssue{}, fmt.Errorf("risk issue %s: %w", id, ErrNotFound)
	}
	return m.data.Issues[i], nil
}

// GetRisk returns a copy of the risk; mutate it and call SaveRisk to persist.
func (m *Memory) GetRisk(ctx context.Context, id string) (models.Risk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.risks[id]
	if !ok {
		return models.Risk{}, fmt.Errorf("risk %s: %w", id, ErrNotFound)
	}
	return cloneRisk(m.data.Risks[i]), nil
}

// SaveRisk replaces the stored risk with the same id.
func (m *Memory) SaveRisk(ctx context.Context, r models.Risk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.risks[r.ID]
	if !ok {
		return fmt.Errorf("risk %s: %w", r.ID, ErrNotFound)
	}
	m.data.Risks[i] = cloneRisk(r)
	return nil
}

// ListScoringMethods returns the snapshot's own method catalog. It is empty
// when the snapshot carries none; callers fall back to the configured catalog.
func (m *Memory) ListScoringMethods(ctx context.Context) ([]models.RiskScoringMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.RiskScoringMethod{}, m.data.ScoringMethods...), nil
}

func (m *Memory) GetScenario(ctx context.Context, id string) (models.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.scenarios[id]
	if !ok {
		return models.Scenario{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	return m.data.Scenarios[i], nil
}

func (m *Memory) GetHazard(ctx context.Context, id string) (models.Hazard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.hazards[id]
	if !ok {
		return models.Hazard{}, fmt.Errorf("hazard %s: %w", id, ErrNotFound)
	}
	return m.data.Hazards[i], nil
}

func (m *Memory) ListHazardLinks(ctx context.Context, hazardID string) ([]models.HazardLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var links []models.HazardLink
	for _, l := range m.data.HazardLinks {
		if l.HazardID == hazardID {
			links = append(links, l)
		}
	}
	return links, nil
}

// RiskIDs returns every risk id in sorted order.
func (m *Memory) RiskIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.risks))
	for id := range m.risks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IssueIDs returns every recorded incident id in sorted order.
func (m *Memory) IssueIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.issues))
	for id := range m.issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneRisk(r models.Risk) models.Risk {
	out := r
	out.LinkedAssetIDs = append([]string(nil), r.LinkedAssetIDs...)
	out.Treatments = append([]models.RiskTreatment(nil), r.Treatments...)
	out.ScoringHistory = append([]models.RiskScoringSnapshot(nil), r.ScoringHistory...)
	return out
}
