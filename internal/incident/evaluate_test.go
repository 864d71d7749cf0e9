package incident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/pkg/models"
)

func TestOutageMinutes(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "same instant", now: start, want: 0},
		{name: "seconds floor", now: start.Add(59 * time.Second), want: 0},
		{name: "one hour", now: start.Add(time.Hour), want: 60},
		{name: "partial minute", now: start.Add(90*time.Minute + 30*time.Second), want: 90},
		{name: "clock skew", now: start.Add(-5 * time.Minute), want: 0},
		{name: "other zone", now: time.Date(2026, 3, 1, 12, 30, 0, 0, plusTwo), want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutageMinutes(start, tt.now))
		})
	}
}

func twoServiceCatalog() ([]models.AssetDependencyEdge, *Catalog) {
	edges := []models.AssetDependencyEdge{
		models.NewDependencyEdge("asset-a", "asset-b", models.DependencyHard),
	}
	catalog := NewCatalog(
		[]models.CriticalService{
			{ID: "svc-b", Code: "B-SVC", Name: "Billing"},
			{ID: "svc-a", Code: "A-SVC", Name: "Accounts"},
			{ID: "svc-x", Code: "X-SVC", Name: "Unprofiled"},
		},
		[]models.ServiceAssetMapping{
			{ServiceID: "svc-a", AssetID: "asset-a"},
			{ServiceID: "svc-b", AssetID: "asset-b"},
			{ServiceID: "svc-x", AssetID: "asset-b"},
		},
		[]models.BIAProfile{
			{ServiceID: "svc-a", MAOHours: 4},
			{ServiceID: "svc-b", MAOHours: 4},
		},
	)
	return edges, catalog
}

func TestEvaluatePropagatesToDependentServices(t *testing.T) {
	edges, catalog := twoServiceCatalog()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	impacts := Evaluate(start, start.Add(time.Hour), []string{"asset-a"}, graph.BuildDependencyMap(edges), catalog)

	require.Len(t, impacts, 2)
	assert.Equal(t, "A-SVC", impacts[0].ServiceCode)
	assert.Equal(t, "B-SVC", impacts[1].ServiceCode)
	for _, impact := range impacts {
		assert.Equal(t, models.ImpactMinor, impact.ImpactLevel, impact.ServiceCode)
		assert.Equal(t, 0.25, impact.MTPDProgress)
		assert.False(t, impact.CrisisRecommended)
	}
	assert.Equal(t, []string{"asset-a"}, impacts[0].FailedAssetIDs)
	assert.Equal(t, []string{"asset-b"}, impacts[1].FailedAssetIDs)
}

func TestEvaluateFollowsEdgeDirection(t *testing.T) {
	edges, catalog := twoServiceCatalog()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	impacts := Evaluate(start, start.Add(time.Hour), []string{"asset-b"}, graph.BuildDependencyMap(edges), catalog)

	require.Len(t, impacts, 1)
	assert.Equal(t, "svc-b", impacts[0].ServiceID)
}

func TestEvaluateNoAffectedAssets(t *testing.T) {
	edges, catalog := twoServiceCatalog()
	now := time.Now()

	impacts := Evaluate(now, now, nil, graph.BuildDependencyMap(edges), catalog)

	assert.NotNil(t, impacts)
	assert.Empty(t, impacts)
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog(nil, []models.ServiceAssetMapping{
		{ServiceID: "svc-1", AssetID: "a1"},
		{ServiceID: "svc-1", AssetID: "a1"},
		{ServiceID: "svc-1", AssetID: "a2"},
		{ServiceID: "svc-2", AssetID: "a3"},
	}, nil)

	svc, ok := catalog.Service("svc-1")
	require.True(t, ok)
	assert.Equal(t, "svc-1", svc.Code)
	assert.Nil(t, catalog.Profile("svc-1"))
	assert.Equal(t, []string{"a1", "a2"}, catalog.AssetsForServices([]string{"svc-1"}))

	grouped := catalog.ServicesForAssets(map[string]struct{}{"a1": {}, "a3": {}})
	assert.Equal(t, map[string][]string{"svc-1": {"a1"}, "svc-2": {"a3"}}, grouped)
}
