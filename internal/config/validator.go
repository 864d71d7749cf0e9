package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/riskgraph/internal/risk"
)

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config error: %w", err)
	}

	if err := c.validateKafka(); err != nil {
		return fmt.Errorf("kafka config error: %w", err)
	}

	if err := c.validateNeo4j(); err != nil {
		return fmt.Errorf("neo4j config error: %w", err)
	}

	if err := c.validateIncident(); err != nil {
		return fmt.Errorf("incident config error: %w", err)
	}

	if err := risk.ValidateMethods(c.Risk.Methods); err != nil {
		return fmt.Errorf("risk config error: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		return fmt.Errorf("metrics config error: textfile_path is required when metrics are enabled")
	}

	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("tracing config error: unknown exporter %q", c.Tracing.Exporter)
	}

	return nil
}

func (c *Config) validateKafka() error {
	if !c.Kafka.Enabled {
		return nil
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("brokers is required")
	}
	for _, broker := range c.Kafka.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("invalid broker format: %s (expected host:port)", broker)
		}
	}
	if c.Kafka.ImpactTopic == "" {
		return fmt.Errorf("impact_topic is required")
	}
	return nil
}

func (c *Config) validateNeo4j() error {
	if !c.Graph.Enabled {
		return nil
	}
	if c.Graph.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if _, err := url.Parse(c.Graph.URI); err != nil {
		return fmt.Errorf("invalid uri format: %w", err)
	}
	if c.Graph.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Graph.MaxPoolSize <= 0 {
		return fmt.Errorf("max_pool_size must be greater than 0")
	}
	return nil
}

func (c *Config) validateIncident() error {
	if c.Incident.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	for _, t := range c.Incident.DependencyTypes {
		switch t {
		case "hard", "soft", "logical":
		default:
			return fmt.Errorf("unknown dependency type %q", t)
		}
	}
	return nil
}
