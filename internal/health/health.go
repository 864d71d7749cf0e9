// Package health runs dependency checks for the graph backend, the event
// broker and the local snapshot.
package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

type HealthCheck interface {
	Name() string
	Check(ctx context.Context) HealthResult
}

type HealthResult struct {
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Report is the outcome of one run over every registered check
type Report struct {
	Status    HealthStatus   `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Checks    []HealthResult `json:"checks"`
}

type HealthChecker struct {
	checks []HealthCheck
	mu     sync.RWMutex
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make([]HealthCheck, 0)}
}

func (hc *HealthChecker) Register(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, check)
}

// Check runs all checks concurrently. Results are ordered by check name.
func (hc *HealthChecker) Check(ctx context.Context) []HealthResult {
	hc.mu.RLock()
	checks := make([]HealthCheck, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	results := make([]HealthResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := c.Check(ctx)
			res.Name = c.Name()
			res.Duration = time.Since(start)
			results[i] = res
		}()
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// Run checks everything and folds the results into a report
func (hc *HealthChecker) Run(ctx context.Context) Report {
	results := hc.Check(ctx)
	return Report{
		Status:    OverallStatus(results),
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

func OverallStatus(results []HealthResult) HealthStatus {
	hasDegraded := false
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// Pinger is satisfied by graph.Neo4jStore
type Pinger interface {
	Ping(ctx context.Context) error
}

// Neo4jCheck pings the graph database
type Neo4jCheck struct {
	DB            Pinger
	SlowThreshold time.Duration
}

func (c *Neo4jCheck) Name() string { return "neo4j" }

func (c *Neo4jCheck) Check(ctx context.Context) HealthResult {
	start := time.Now()
	err := c.DB.Ping(ctx)
	duration := time.Since(start)

	threshold := c.SlowThreshold
	if threshold == 0 {
		threshold = 100 * time.Millisecond
	}

	switch {
	case err != nil:
		return HealthResult{Status: StatusUnhealthy, Message: "Database connection failed", Error: err.Error()}
	case duration > threshold:
		return HealthResult{Status: StatusDegraded, Message: "Database responding slowly"}
	default:
		return HealthResult{Status: StatusHealthy, Message: "Database connection healthy"}
	}
}

// TopicLister is satisfied by kafka.TopicManager
type TopicLister interface {
	ListTopics(ctx context.Context) ([]string, error)
}

// KafkaCheck lists broker topics and reports degraded when a required one is missing
type KafkaCheck struct {
	Topics   TopicLister
	Required []string
}

func (c *KafkaCheck) Name() string { return "kafka" }

func (c *KafkaCheck) Check(ctx context.Context) HealthResult {
	topics, err := c.Topics.ListTopics(ctx)
	if err != nil {
		return HealthResult{Status: StatusUnhealthy, Message: "Kafka broker unreachable", Error: err.Error()}
	}

	present := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		present[t] = struct{}{}
	}
	var missing []string
	for _, t := range c.Required {
		if _, ok := present[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return HealthResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("Missing topics: %s", strings.Join(missing, ", ")),
		}
	}
	return HealthResult{Status: StatusHealthy, Message: fmt.Sprintf("%d topics available", len(topics))}
}

// Validator is satisfied by store.Memory
type Validator interface {
	Validate() error
}

// SnapshotCheck reports whether the loaded data passes validation
type SnapshotCheck struct {
	Store Validator
}

func (c *SnapshotCheck) Name() string { return "snapshot" }

func (c *SnapshotCheck) Check(_ context.Context) HealthResult {
	if err := c.Store.Validate(); err != nil {
		return HealthResult{Status: StatusDegraded, Message: "Snapshot has invalid records", Error: err.Error()}
	}
	return HealthResult{Status: StatusHealthy, Message: "Snapshot valid"}
}
