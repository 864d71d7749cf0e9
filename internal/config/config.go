package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/internal/incident"
	"github.com/riskgraph/internal/logging"
	"github.com/riskgraph/internal/risk"
	"github.com/riskgraph/internal/telemetry"
)

// Config represents the overall application configuration
type Config struct {
	Logging  logging.Config          `yaml:"logging"`
	Store    StoreConfig             `yaml:"store"`
	Graph    graph.GraphConfig       `yaml:"graph"`
	Kafka    KafkaConfig             `yaml:"kafka"`
	Incident incident.Config         `yaml:"incident"`
	Risk     risk.EngineConfig       `yaml:"risk"`
	Metrics  MetricsConfig           `yaml:"metrics"`
	Tracing  telemetry.TracingConfig `yaml:"tracing"`
}

// StoreConfig locates the JSON snapshot the commands read
type StoreConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// KafkaConfig represents Kafka producer configuration
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"client_id"`
	ImpactTopic  string        `yaml:"impact_topic"`
	CrisisTopic  string        `yaml:"crisis_topic"`
	ScoreTopic   string        `yaml:"score_topic"`
	Timeout      time.Duration `yaml:"timeout"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// MetricsConfig represents metrics configuration. Metrics are written to
// TextfilePath when a command finishes.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging:  logging.DefaultConfig(),
		Store:    StoreConfig{SnapshotPath: "data/snapshot.json"},
		Graph:    graph.DefaultGraphConfig(),
		Kafka:    DefaultKafkaConfig(),
		Incident: incident.DefaultConfig(),
		Risk:     risk.DefaultEngineConfig(),
		Metrics:  MetricsConfig{TextfilePath: "riskgraph.prom"},
		Tracing:  telemetry.DefaultTracingConfig(),
	}
}

// DefaultKafkaConfig returns default Kafka configuration
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "riskgraph",
		ImpactTopic:  "resilience.service-impacts",
		CrisisTopic:  "resilience.crisis-alerts",
		ScoreTopic:   "risk.scores",
		Timeout:      10 * time.Second,
		BatchTimeout: 100 * time.Millisecond,
	}
}

// Load reads configuration from path, falling back to CONFIG_PATH. With
// neither set the defaults are returned. Values in the file override defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Kafka.ImpactTopic == "" {
		cfg.Kafka.ImpactTopic = "resilience.service-impacts"
	}
	if cfg.Kafka.CrisisTopic == "" {
		cfg.Kafka.CrisisTopic = cfg.Kafka.ImpactTopic
	}
	if cfg.Kafka.Timeout == 0 {
		cfg.Kafka.Timeout = 10 * time.Second
	}
	if len(cfg.Risk.Methods) == 0 {
		cfg.Risk.Methods = risk.BuiltinMethods()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
