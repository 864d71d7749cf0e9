package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgraph/pkg/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadWithoutPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
graph:
  enabled: true
  uri: neo4j://graph:7687
  username: neo4j
kafka:
  enabled: true
  brokers: ["kafka:9092"]
  impact_topic: impacts
incident:
  concurrency: 8
  dependency_types: [hard, soft]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "neo4j://graph:7687", cfg.Graph.URI)
	assert.Equal(t, 50, cfg.Graph.MaxPoolSize, "default kept")
	assert.Equal(t, "impacts", cfg.Kafka.ImpactTopic)
	assert.Equal(t, "resilience.crisis-alerts", cfg.Kafka.CrisisTopic)
	assert.Equal(t, 10*time.Second, cfg.Kafka.Timeout)
	assert.Equal(t, 8, cfg.Incident.Concurrency)
	assert.Equal(t, []models.DependencyType{models.DependencyHard, models.DependencySoft}, cfg.Incident.DependencyTypes)
	assert.Len(t, cfg.Risk.Methods, 8)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "store:\n  snapshot_path: /tmp/snap.json\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/snap.json", cfg.Store.SnapshotPath)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad yaml", body: "logging: [unclosed"},
		{name: "bad log level", body: "logging:\n  level: shout\n"},
		{name: "broker without port", body: "kafka:\n  enabled: true\n  brokers: [kafka]\n"},
		{name: "graph without username", body: "graph:\n  enabled: true\n  username: \"\"\n"},
		{name: "unknown dependency type", body: "incident:\n  dependency_types: [cosmic]\n"},
		{name: "negative weight", body: "risk:\n  methods:\n    - code: X\n      method_type: classic\n      impact_weight: -1\n"},
		{name: "unknown tracing exporter", body: "tracing:\n  exporter: zipkin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
