package incident

import "errors"

var (
	// ErrIssueNotFound is returned when a recorded incident or its risk does not exist
	ErrIssueNotFound = errors.New("incident not found")

	// ErrScenarioNotFound is returned when a scenario or its hazard does not exist
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrNoScenarioRepository is returned when scenario simulation is not configured
	ErrNoScenarioRepository = errors.New("scenario repository not configured")
)
