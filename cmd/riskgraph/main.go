package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/riskgraph/internal/config"
	"github.com/riskgraph/internal/events"
	"github.com/riskgraph/internal/graph"
	"github.com/riskgraph/internal/incident"
	"github.com/riskgraph/internal/kafka"
	"github.com/riskgraph/internal/logging"
	"github.com/riskgraph/internal/metrics"
	"github.com/riskgraph/internal/store"
	"github.com/riskgraph/internal/telemetry"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the components a command runs against
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Memory
	deps      graph.DependencySource
	neo4j     *graph.Neo4jStore
	producer  kafka.Producer
	publisher *events.KafkaPublisher
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	tracing   func(context.Context) error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if snapshotPath != "" {
		cfg.Store.SnapshotPath = snapshotPath
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	a.tracing, err = telemetry.InitTracing(cfg.Tracing, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a.store, err = store.Load(cfg.Store.SnapshotPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	a.deps = a.store

	if cfg.Graph.Enabled {
		a.neo4j, err = graph.NewNeo4jStore(ctx, cfg.Graph, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize graph store: %w", err)
		}
		a.deps = a.neo4j
	}

	if cfg.Kafka.Enabled {
		a.producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize kafka producer: %w", err)
		}
		a.publisher = events.NewKafkaPublisher(a.producer, cfg.Kafka, logger).WithRecorder(a.metrics)
	}

	logger.Debug("Components initialized",
		zap.String("version", version),
		zap.String("snapshot", cfg.Store.SnapshotPath),
		zap.Bool("neo4j", cfg.Graph.Enabled),
		zap.Bool("kafka", cfg.Kafka.Enabled))
	return a, nil
}

func (a *app) manager() *incident.Manager {
	m := incident.NewManager(a.store, a.deps, a.cfg.Incident, a.logger).
		WithScenarios(a.store).
		WithRecorder(a.metrics)
	if a.publisher != nil {
		m.WithPublisher(a.publisher)
	}
	return m
}

// close releases everything newApp opened and flushes metrics
func (a *app) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("Error closing kafka producer", zap.Error(err))
		}
	}
	if a.neo4j != nil {
		if err := a.neo4j.Close(); err != nil {
			a.logger.Warn("Error closing graph store", zap.Error(err))
		}
	}
	if a.tracing != nil {
		if err := a.tracing(context.Background()); err != nil {
			a.logger.Warn("Error during tracing shutdown", zap.Error(err))
		}
	}
	if a.cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(a.cfg.Metrics.TextfilePath, a.registry); err != nil {
			a.logger.Warn("Failed to write metrics", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func showVersion() {
	fmt.Printf("riskgraph version %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Built: %s\n", date)
}
