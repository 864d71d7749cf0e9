package store

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

const snapshotJSON = `{
	"asset_dependencies": [
		{"source_asset_id": "a1", "target_asset_id": "a2", "dependency_type": "hard", "strength": 4}
	],
	"critical_services": [{"id": "s1", "code": "PAY", "name": "Payments"}],
	"service_asset_mappings": [{"service_id": "s1", "asset_id": "a2"}],
	"bia_profiles": [{
		"service_id": "s1", "mao_hours": 2, "rto_hours": 1,
		"impact_escalation_curve": [{"time_minutes": 30, "level": "MINOR"}, {"time_minutes": 120, "level": "CRITICAL"}],
		"crisis_trigger_rules": {"mtpd_percentage_trigger": 0.5, "impact_level_trigger": "SEVERE"}
	}],
	"risks": [{"id": "r1", "title": "Outage", "likelihood": 3, "impact": 4, "status": "open", "primary_asset_id": "a1"}],
	"risk_issues": [{"id": "i1", "risk_id": "r1", "created_at": "2026-03-01T10:00:00Z"}],
	"hazards": [{"id": "h1", "code": "FLOOD", "name": "Flood"}],
	"hazard_links": [{"hazard_id": "h1", "asset_id": "a1"}],
	"scenarios": [{"id": "sc1", "name": "Flood", "hazard_id": "h1", "duration_hours": 6}]
}`

func decodeTestSnapshot(t *testing.T) *Memory {
	t.Helper()
	m, err := Decode(strings.NewReader(snapshotJSON))
	require.NoError(t, err)
	return m
}

func TestDecodeAndLookup(t *testing.T) {
	m := decodeTestSnapshot(t)
	ctx := context.Background()

	require.NoError(t, m.Validate())

	edges, err := m.ListDependencies(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, models.DependencyHard, edges[0].Type)

	issue, err := m.GetIssue(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "r1", issue.RiskID)

	_, err = m.GetIssue(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetRisk(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetScenario(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetHazard(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	links, err := m.ListHazardLinks(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	methods, err := m.ListScoringMethods(ctx)
	require.NoError(t, err)
	assert.Empty(t, methods, "no catalog in the snapshot")

	profiles, err := m.ListBIAProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Len(t, profiles[0].EscalationCurve.Steps, 2)
	require.NotNil(t, profiles[0].CrisisTriggerRules)
}

func TestSaveRiskIsolatesCopies(t *testing.T) {
	m := decodeTestSnapshot(t)
	ctx := context.Background()

	r, err := m.GetRisk(ctx, "r1")
	require.NoError(t, err)
	r.LinkedAssetIDs = append(r.LinkedAssetIDs, "a9")

	stored, err := m.GetRisk(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, stored.LinkedAssetIDs)

	require.NoError(t, m.SaveRisk(ctx, r))
	stored, err = m.GetRisk(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a9"}, stored.LinkedAssetIDs)

	assert.ErrorIs(t, m.SaveRisk(ctx, models.Risk{ID: "nope"}), ErrNotFound)
}

func TestUpsertDependency(t *testing.T) {
	m := decodeTestSnapshot(t)
	ctx := context.Background()

	require.NoError(t, m.UpsertDependency(ctx, models.AssetDependencyEdge{
		SourceAssetID: "a1", TargetAssetID: "a2", Type: models.DependencyHard, Strength: 1,
	}))
	require.NoError(t, m.UpsertDependency(ctx, models.NewDependencyEdge("a2", "a3", models.DependencyLogical)))

	err := m.UpsertDependency(ctx, models.NewDependencyEdge("a3", "a3", models.DependencyHard))
	assert.ErrorIs(t, err, validation.ErrValidation)

	edges, err := m.ListDependencies(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, 1, edges[0].Strength)
}

func TestValidateRejectsBadProfile(t *testing.T) {
	m := NewMemory(Data{
		BIAProfiles: []models.BIAProfile{{
			ServiceID: "s1",
			MAOHours:  2,
			EscalationCurve: models.NewEscalationCurve(
				models.EscalationStep{TimeMinutes: 60, Level: models.ImpactMinor},
				models.EscalationStep{TimeMinutes: 30, Level: models.ImpactDegraded},
			),
		}},
	})

	err := m.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrValidation)
	assert.Contains(t, err.Error(), "bia_profiles[0]")
}

func TestSaveRoundTrip(t *testing.T) {
	m := decodeTestSnapshot(t)
	path := filepath.Join(t.TempDir(), "snapshot.json")

	require.NoError(t, m.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, m.Encode(&a))
	require.NoError(t, loaded.Encode(&b))
	assert.JSONEq(t, a.String(), b.String())
	assert.Equal(t, []string{"r1"}, loaded.RiskIDs())
	assert.Equal(t, []string{"i1"}, loaded.IssueIDs())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
