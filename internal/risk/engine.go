package risk

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// MaxTreatmentEffect caps the share of inherent risk treatments can remove.
const MaxTreatmentEffect = 0.95

// Engine computes risk scores and records scoring snapshots
type Engine struct {
	config EngineConfig
	logger *zap.Logger
	now    func() time.Time
	hooks  []SnapshotHook
}

// SnapshotHook is called after every appended snapshot.
type SnapshotHook func(risk *models.Risk, snapshot models.RiskScoringSnapshot)

// EngineConfig represents risk engine configuration
type EngineConfig struct {
	DefaultActor string                     `yaml:"default_actor"`
	Methods      []models.RiskScoringMethod `yaml:"methods"`
}

// DefaultEngineConfig returns default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultActor: "system",
		Methods:      BuiltinMethods(),
	}
}

// Scores is the result of one score computation
type Scores struct {
	Inherent float64 `json:"inherent_score"`
	Residual float64 `json:"residual_score"`
	// Impact is the impact the scores were computed with, after the CIA override.
	Impact int `json:"impact"`
}

// NewEngine creates a new risk engine
func NewEngine(config EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultActor == "" {
		config.DefaultActor = "system"
	}
	if len(config.Methods) == 0 {
		config.Methods = BuiltinMethods()
	}
	return &Engine{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the snapshot time source
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// OnSnapshot registers a hook run after each appended snapshot
func (e *Engine) OnSnapshot(hook SnapshotHook) {
	e.hooks = append(e.hooks, hook)
}

// Methods returns the configured scoring method catalog
func (e *Engine) Methods() []models.RiskScoringMethod {
	return e.config.Methods
}

// ScoreRisk computes inherent and residual scores. It does not modify risk.
func ScoreRisk(risk *models.Risk, method *models.RiskScoringMethod, treatments []models.RiskTreatment) Scores {
	impact := EffectiveImpact(risk, method)
	likelihood := float64(risk.Likelihood)

	if method == nil {
		inherent := likelihood * float64(impact)
		return Scores{Inherent: round2(inherent), Residual: round2(inherent), Impact: impact}
	}

	inherent := (likelihood * method.LikelihoodWeight) * (float64(impact) * method.ImpactWeight)

	effect := math.Min(averageActiveProgress(treatments)/100*method.TreatmentEffectivenessWeight, MaxTreatmentEffect)
	residual := math.Max(inherent*(1-effect), 0)

	return Scores{Inherent: round2(inherent), Residual: round2(residual), Impact: impact}
}

// EffectiveImpact returns the impact used for scoring. CIA methods derive it
// from the triad when all three ratings are set.
func EffectiveImpact(risk *models.Risk, method *models.RiskScoringMethod) int {
	if method != nil && method.MethodType == models.MethodCIA && risk.HasCIA() {
		return meanScale(*risk.Confidentiality, *risk.Integrity, *risk.Availability)
	}
	return risk.Impact
}

func averageActiveProgress(treatments []models.RiskTreatment) float64 {
	total, count := 0, 0
	for _, t := range treatments {
		if !t.Status.Active() {
			continue
		}
		total += t.ProgressPercent
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// Recompute scores the risk with its own treatments, writes the scores back and
// appends one snapshot. On error nothing is modified.
func (e *Engine) Recompute(risk *models.Risk, method *models.RiskScoringMethod, actor string) (models.RiskScoringSnapshot, error) {
	if err := validateForScoring(risk, method); err != nil {
		return models.RiskScoringSnapshot{}, err
	}
	if actor == "" {
		actor = e.config.DefaultActor
	}

	scores := ScoreRisk(risk, method, risk.Treatments)

	methodCode := ""
	if method != nil {
		methodCode = method.Code
	}

	risk.Impact = scores.Impact
	risk.InherentScore = scores.Inherent
	risk.ResidualScore = scores.Residual
	risk.ScoringMethodCode = methodCode

	snapshot := models.NewScoringSnapshot(risk.ID, methodCode, scores.Inherent, scores.Residual, actor, e.now())
	risk.ScoringHistory = append(risk.ScoringHistory, snapshot)

	e.logger.Debug("risk scores recomputed",
		zap.String("risk_id", risk.ID),
		zap.String("method", methodCode),
		zap.Float64("inherent", scores.Inherent),
		zap.Float64("residual", scores.Residual),
		zap.String("actor", actor),
	)

	for _, hook := range e.hooks {
		hook(risk, snapshot)
	}
	return snapshot, nil
}

// UpdateScoringInputs applies methodology inputs and recomputes in one step.
// Either both succeed or the risk is left as it was.
func (e *Engine) UpdateScoringInputs(risk *models.Risk, method *models.RiskScoringMethod, inputs models.ScoringInputs, actor string) (models.RiskScoringSnapshot, error) {
	draft := *risk
	if err := ApplyMethodologyInputs(&draft, method, inputs); err != nil {
		return models.RiskScoringSnapshot{}, err
	}
	snapshot, err := e.Recompute(&draft, method, actor)
	if err != nil {
		return models.RiskScoringSnapshot{}, fmt.Errorf("failed to recompute scores: %w", err)
	}
	*risk = draft
	return snapshot, nil
}

func validateForScoring(risk *models.Risk, method *models.RiskScoringMethod) error {
	var errs validation.Errors
	if risk.Likelihood < 1 || risk.Likelihood > 5 {
		errs.Add("likelihood", "must be between 1 and 5, got %d", risk.Likelihood)
	}
	if impact := EffectiveImpact(risk, method); impact < 1 || impact > 5 {
		errs.Add("impact", "must be between 1 and 5, got %d", impact)
	}
	for i, t := range risk.Treatments {
		if t.ProgressPercent < 0 || t.ProgressPercent > 100 {
			errs.Add(fmt.Sprintf("treatments[%d].progress_percent", i), "must be between 0 and 100, got %d", t.ProgressPercent)
		}
	}
	if method != nil {
		errs.Merge(ValidateMethod(*method))
	}
	return errs.Err()
}

// round2 rounds half to even at two decimals.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// meanScale averages 1-5 ratings, rounds half to even and clamps to [1,5].
func meanScale(values ...int) int {
	if len(values) == 0 {
		return 1
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	n := int(math.RoundToEven(float64(sum) / float64(len(values))))
	switch {
	case n < 1:
		return 1
	case n > 5:
		return 5
	default:
		return n
	}
}
