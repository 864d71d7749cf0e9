package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

func builtin(t *testing.T, code string) *models.RiskScoringMethod {
	t.Helper()
	m, err := FindMethod(BuiltinMethods(), code)
	require.NoError(t, err)
	return m
}

func newRisk(likelihood, impact int) *models.Risk {
	return &models.Risk{
		ID:         "risk-1",
		Likelihood: likelihood,
		Impact:     impact,
		Status:     models.RiskStatusOpen,
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestScoreRisk(t *testing.T) {
	tests := []struct {
		name       string
		likelihood int
		impact     int
		method     string
		treatments []models.RiskTreatment
		want       Scores
	}{
		{
			name:       "no method multiplies raw scales",
			likelihood: 3,
			impact:     4,
			treatments: []models.RiskTreatment{{Status: models.TreatmentInProgress, ProgressPercent: 90}},
			want:       Scores{Inherent: 12, Residual: 12, Impact: 4},
		},
		{
			name:       "weights apply to both factors",
			likelihood: 3,
			impact:     4,
			method:     "CUSTOM_WEIGHTED_V1",
			want:       Scores{Inherent: 17.16, Residual: 17.16, Impact: 4},
		},
		{
			name:       "only planned and in progress treatments count",
			likelihood: 3,
			impact:     4,
			method:     "CUSTOM_WEIGHTED_V1",
			treatments: []models.RiskTreatment{
				{Status: models.TreatmentPlanned, ProgressPercent: 50},
				{Status: models.TreatmentInProgress, ProgressPercent: 30},
				{Status: models.TreatmentCompleted, ProgressPercent: 100},
				{Status: models.TreatmentCancelled, ProgressPercent: 100},
			},
			want: Scores{Inherent: 17.16, Residual: 10.3, Impact: 4},
		},
		{
			name:       "treatment effect is capped",
			likelihood: 5,
			impact:     5,
			method:     "RESIDUAL_V1",
			treatments: []models.RiskTreatment{{Status: models.TreatmentInProgress, ProgressPercent: 100}},
			want:       Scores{Inherent: 25, Residual: 1.25, Impact: 5},
		},
		{
			name:       "inactive treatments leave residual at inherent",
			likelihood: 2,
			impact:     2,
			method:     "INHERENT_V1",
			treatments: []models.RiskTreatment{{Status: models.TreatmentCompleted, ProgressPercent: 100}},
			want:       Scores{Inherent: 4, Residual: 4, Impact: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method *models.RiskScoringMethod
			if tt.method != "" {
				method = builtin(t, tt.method)
			}
			r := newRisk(tt.likelihood, tt.impact)

			assert.Equal(t, tt.want, ScoreRisk(r, method, tt.treatments))
			assert.Empty(t, r.ScoringHistory, "ScoreRisk is pure")
		})
	}
}

func TestScoreRiskCIAOverride(t *testing.T) {
	cia := builtin(t, "CIA_V1")
	r := newRisk(2, 1)
	r.Confidentiality, r.Integrity, r.Availability = intPtr(5), intPtr(4), intPtr(4)

	got := ScoreRisk(r, cia, nil)
	assert.Equal(t, Scores{Inherent: 8, Residual: 8, Impact: 4}, got)

	t.Run("incomplete triad keeps stored impact", func(t *testing.T) {
		partial := newRisk(2, 3)
		partial.Confidentiality = intPtr(5)
		assert.Equal(t, 3, ScoreRisk(partial, cia, nil).Impact)
	})

	t.Run("non cia method ignores triad", func(t *testing.T) {
		assert.Equal(t, 1, ScoreRisk(r, builtin(t, "CLASSIC_V1"), nil).Impact)
	})
}

func TestResidualBoundedByInherent(t *testing.T) {
	for _, weight := range []float64{0, 0.5, 1, 1.2, 3} {
		method := &models.RiskScoringMethod{
			Code:                         "W",
			MethodType:                   models.MethodCustom,
			LikelihoodWeight:             1.1,
			ImpactWeight:                 0.9,
			TreatmentEffectivenessWeight: weight,
		}
		for progress := 0; progress <= 100; progress += 10 {
			for l := 1; l <= 5; l++ {
				r := newRisk(l, 6-l)
				scores := ScoreRisk(r, method, []models.RiskTreatment{{Status: models.TreatmentPlanned, ProgressPercent: progress}})
				assert.GreaterOrEqual(t, scores.Residual, 0.0)
				assert.LessOrEqual(t, scores.Residual, scores.Inherent, "weight=%v progress=%d", weight, progress)
			}
		}
	}
}

func TestRecomputeAppendsSnapshot(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil).WithClock(fixedClock())
	method := builtin(t, "CUSTOM_WEIGHTED_V1")
	r := newRisk(3, 4)
	r.Treatments = []models.RiskTreatment{{Status: models.TreatmentPlanned, ProgressPercent: 40}}

	first, err := engine.Recompute(r, method, "alice")
	require.NoError(t, err)
	second, err := engine.Recompute(r, method, "")
	require.NoError(t, err)

	assert.Equal(t, first.InherentScore, second.InherentScore)
	assert.Equal(t, first.ResidualScore, second.ResidualScore)
	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, r.ScoringHistory, 2)
	assert.Equal(t, first, r.ScoringHistory[0])
	assert.Equal(t, "alice", r.ScoringHistory[0].CalculatedBy)
	assert.Equal(t, "system", r.ScoringHistory[1].CalculatedBy)
	assert.Equal(t, "CUSTOM_WEIGHTED_V1", r.ScoringHistory[1].MethodCode)
	assert.Equal(t, 17.16, r.InherentScore)
	assert.Equal(t, 10.3, r.ResidualScore)
}

func TestRecomputeWritesCIAImpact(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil)
	r := newRisk(2, 1)
	r.Confidentiality, r.Integrity, r.Availability = intPtr(1), intPtr(2), intPtr(2)

	_, err := engine.Recompute(r, builtin(t, "CIA_V1"), "")
	require.NoError(t, err)

	assert.Equal(t, 2, r.Impact)
	assert.Equal(t, 4.0, r.InherentScore)
}

func TestRecomputeRejectsInvalidRisk(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil)
	r := newRisk(0, 4)
	before := *r

	_, err := engine.Recompute(r, nil, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrValidation))
	assert.Equal(t, before, *r)
}

func TestRecomputeReportsEveryProblem(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil)
	method := *builtin(t, "RESIDUAL_V1")
	method.ImpactWeight = -1

	_, err := engine.Recompute(newRisk(0, 3), &method, "")

	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"likelihood", "impact_weight"}, fields)
}

func TestRecomputeRunsHooks(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil)
	var seen []models.RiskScoringSnapshot
	engine.OnSnapshot(func(_ *models.Risk, s models.RiskScoringSnapshot) { seen = append(seen, s) })

	snap, err := engine.Recompute(newRisk(1, 1), nil, "")
	require.NoError(t, err)

	assert.Equal(t, []models.RiskScoringSnapshot{snap}, seen)
}

func TestUpdateScoringInputs(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(), nil).WithClock(fixedClock())

	t.Run("applies and scores", func(t *testing.T) {
		r := newRisk(1, 1)
		snap, err := engine.UpdateScoringInputs(r, builtin(t, "DREAD_V1"), models.DreadFactors{
			Damage: 4, Reproducibility: 3, Exploitability: 3, AffectedUsers: 4, Discoverability: 3,
		}, "bob")
		require.NoError(t, err)

		assert.Equal(t, 3, r.Likelihood)
		assert.Equal(t, 4, r.Impact)
		assert.Equal(t, 12.0, snap.InherentScore)
		assert.Len(t, r.ScoringHistory, 1)
	})

	t.Run("cia inputs on a risk without a stored impact", func(t *testing.T) {
		r := &models.Risk{ID: "risk-cia", Likelihood: 1, Status: models.RiskStatusOpen}

		snap, err := engine.UpdateScoringInputs(r, builtin(t, "CIA_V1"), models.CIAInputs{
			Likelihood: 3, Confidentiality: 5, Integrity: 4, Availability: 4,
		}, "bob")
		require.NoError(t, err)

		assert.Equal(t, 4, r.Impact, "mean of 5, 4, 4 rounds to 4")
		assert.Equal(t, 12.0, snap.InherentScore)
	})

	t.Run("invalid inputs leave risk untouched", func(t *testing.T) {
		r := newRisk(2, 2)
		before := *r

		_, err := engine.UpdateScoringInputs(r, builtin(t, "DREAD_V1"), models.DreadFactors{Damage: 4}, "bob")

		require.Error(t, err)
		assert.Equal(t, before, *r)
	})
}
