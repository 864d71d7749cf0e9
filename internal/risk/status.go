package risk

import "github.com/riskgraph/pkg/models"

var statusTransitions = map[models.RiskStatus][]models.RiskStatus{
	models.RiskStatusOpen:       {models.RiskStatusInProgress, models.RiskStatusClosed},
	models.RiskStatusInProgress: {models.RiskStatusOpen, models.RiskStatusClosed},
	models.RiskStatusClosed:     {models.RiskStatusOpen},
}

// CanTransition reports whether a risk may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to models.RiskStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionStatus moves the risk to a new status or returns a *TransitionError
// and leaves it unchanged.
func TransitionStatus(risk *models.Risk, to models.RiskStatus) error {
	if !CanTransition(risk.Status, to) {
		return &TransitionError{From: risk.Status, To: to}
	}
	risk.Status = to
	return nil
}
