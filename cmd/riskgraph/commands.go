package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riskgraph/internal/health"
	"github.com/riskgraph/internal/incident"
	"github.com/riskgraph/internal/kafka"
	"github.com/riskgraph/internal/risk"
	"github.com/riskgraph/pkg/models"
)

var (
	configFile   string
	snapshotPath string
	outputFormat string

	durationHours int
	evaluateAll   bool
	evaluateAt    string
	incidentStart string
	assetIDs      []string
	methodCode    string
	actor         string
	writeBack     bool

	rootCmd = &cobra.Command{
		Use:          "riskgraph",
		Short:        "Operational resilience and risk analysis over an asset dependency graph",
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run:   func(cmd *cobra.Command, args []string) { showVersion() },
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate-scenario [scenario-id]",
		Short: "Simulate a hazard scenario and report the impact on critical services",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulateScenario,
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate-incident [issue-id]",
		Short: "Evaluate the BIA impact of a recorded or ad hoc incident",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEvaluateIncident,
	}

	scoreCmd = &cobra.Command{
		Use:   "score-risk [risk-id]",
		Short: "Recompute the inherent and residual scores of a risk",
		Args:  cobra.ExactArgs(1),
		RunE:  runScoreRisk,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate every record in the snapshot",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check the snapshot, graph database and event broker",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}

	topicsCmd = &cobra.Command{
		Use:   "kafka-topics",
		Short: "Create the event topics on the configured brokers",
		Args:  cobra.NoArgs,
		RunE:  runKafkaTopics,
	}

	graphSyncCmd = &cobra.Command{
		Use:   "graph-sync",
		Short: "Upsert the snapshot's dependency edges into Neo4j",
		Args:  cobra.NoArgs,
		RunE:  runGraphSync,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (defaults to $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file, overrides store.snapshot_path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "text", "Output format: text or json")

	simulateCmd.Flags().IntVar(&durationHours, "duration-hours", 0, "Override the scenario duration")

	evaluateCmd.Flags().BoolVar(&evaluateAll, "all", false, "Evaluate every recorded incident")
	evaluateCmd.Flags().StringVar(&evaluateAt, "at", "", "Evaluation time in RFC 3339 (default now)")
	evaluateCmd.Flags().StringVar(&incidentStart, "start", "", "Ad hoc incident start in RFC 3339")
	evaluateCmd.Flags().StringSliceVar(&assetIDs, "assets", nil, "Ad hoc incident affected asset ids")

	scoreCmd.Flags().StringVar(&methodCode, "method", "", "Scoring method code (default: the risk's method, then the catalog default)")
	scoreCmd.Flags().StringVar(&actor, "actor", "", "Actor recorded in the snapshot")
	scoreCmd.Flags().BoolVar(&writeBack, "write", false, "Write the rescored risk back to the snapshot file")

	rootCmd.AddCommand(versionCmd, simulateCmd, evaluateCmd, scoreCmd, validateCmd, healthCmd, topicsCmd, graphSyncCmd)
}

// withApp runs fn against a freshly wired app and releases it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func runSimulateScenario(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var override *int
		if cmd.Flags().Changed("duration-hours") {
			override = &durationHours
		}
		result, err := a.manager().SimulateScenario(ctx, args[0], override)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		return writeScenario(cmd.OutOrStdout(), result)
	})
}

func runEvaluateIncident(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		now, err := parseTime(evaluateAt, time.Now())
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		m := a.manager()

		var results []incident.Result
		switch {
		case evaluateAll:
			results, err = evaluateRecorded(ctx, m, a.store.IssueIDs(), now)
		case len(args) == 1:
			results, err = evaluateOne(ctx, m, args[0], now)
		case len(assetIDs) > 0:
			results, err = evaluateAdHoc(ctx, m, now)
		default:
			err = errors.New("give an issue id, --all, or --assets with --start")
		}
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return writeJSON(cmd.OutOrStdout(), results)
		}
		return writeIncidents(cmd.OutOrStdout(), results)
	})
}

func evaluateRecorded(ctx context.Context, m *incident.Manager, issueIDs []string, now time.Time) ([]incident.Result, error) {
	requests := make([]incident.Request, 0, len(issueIDs))
	for _, id := range issueIDs {
		req, err := m.RequestForIssue(ctx, id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return m.EvaluateIncidents(ctx, requests, now)
}

func evaluateOne(ctx context.Context, m *incident.Manager, issueID string, now time.Time) ([]incident.Result, error) {
	req, err := m.RequestForIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	impacts, err := m.EvaluateRecordedIncident(ctx, issueID, now)
	if err != nil {
		return nil, err
	}
	return []incident.Result{resultFor(issueID, req.Start, now, impacts)}, nil
}

func evaluateAdHoc(ctx context.Context, m *incident.Manager, now time.Time) ([]incident.Result, error) {
	start, err := parseTime(incidentStart, time.Time{})
	if err != nil || start.IsZero() {
		return nil, errors.New("ad hoc incidents need a valid --start")
	}
	impacts, err := m.EvaluateIncident(ctx, start, now, assetIDs)
	if err != nil {
		return nil, err
	}
	return []incident.Result{resultFor("", start, now, impacts)}, nil
}

func resultFor(id string, start, now time.Time, impacts []models.ServiceImpact) incident.Result {
	return incident.Result{ID: id, OutageMinutes: incident.OutageMinutes(start, now), Impacts: impacts}
}

func runScoreRisk(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		r, err := a.store.GetRisk(ctx, args[0])
		if err != nil {
			return fmt.Errorf("risk %s: %w", args[0], err)
		}
		engine := risk.NewEngine(a.cfg.Risk, a.logger)
		engine.OnSnapshot(a.metrics.RecordSnapshot)

		methods, err := a.store.ListScoringMethods(ctx)
		if err != nil {
			return err
		}
		if len(methods) == 0 {
			methods = engine.Methods()
		}
		method, err := resolveMethod(methods, methodCode, r.ScoringMethodCode)
		if err != nil {
			return err
		}

		snapshot, err := engine.Recompute(&r, method, actor)
		if err != nil {
			return err
		}

		if a.publisher != nil {
			if err := a.publisher.PublishRiskScored(ctx, snapshot); err != nil {
				a.logger.Warn("Failed to publish risk score", zap.String("risk_id", r.ID), zap.Error(err))
			}
		}
		if writeBack {
			if err := a.store.SaveRisk(ctx, r); err != nil {
				return err
			}
			if err := a.store.Save(a.cfg.Store.SnapshotPath); err != nil {
				return err
			}
		}

		if outputFormat == "json" {
			return writeJSON(cmd.OutOrStdout(), snapshot)
		}
		return writeSnapshot(cmd.OutOrStdout(), snapshot)
	})
}

// resolveMethod picks the requested method, then the risk's own, then the
// catalog default. A nil method means classic scoring.
func resolveMethod(methods []models.RiskScoringMethod, requested, current string) (*models.RiskScoringMethod, error) {
	for _, code := range []string{requested, current} {
		if code != "" {
			return risk.FindMethod(methods, code)
		}
	}
	if def, ok := risk.DefaultMethod(methods); ok {
		return def, nil
	}
	return nil, nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		if err := a.store.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s is valid\n", a.cfg.Store.SnapshotPath)
		return nil
	})
}

func runHealth(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		hc := health.NewHealthChecker()
		hc.Register(&health.SnapshotCheck{Store: a.store})
		if a.neo4j != nil {
			hc.Register(&health.Neo4jCheck{DB: a.neo4j})
		}
		if a.cfg.Kafka.Enabled {
			required := make([]string, 0)
			for _, t := range kafka.Topics(a.cfg.Kafka) {
				required = append(required, t.Name)
			}
			hc.Register(&health.KafkaCheck{
				Topics:   kafka.NewTopicManager(a.cfg.Kafka.Brokers, a.logger),
				Required: required,
			})
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		report := hc.Run(ctx)

		if outputFormat == "json" {
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else if err := writeHealth(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if report.Status == health.StatusUnhealthy {
			return errors.New("unhealthy")
		}
		return nil
	})
}

func runKafkaTopics(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if len(a.cfg.Kafka.Brokers) == 0 {
			return kafka.ErrInvalidBrokers
		}
		tm := kafka.NewTopicManager(a.cfg.Kafka.Brokers, a.logger)
		if err := tm.CreateTopics(ctx, kafka.Topics(a.cfg.Kafka)); err != nil {
			return err
		}
		topics, err := tm.ListTopics(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(topics, "\n"))
		return nil
	})
}

func runGraphSync(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if a.neo4j == nil {
			return errors.New("graph.enabled is false")
		}
		edges, err := a.store.ListDependencies(ctx)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if err := a.neo4j.UpsertDependency(ctx, edge); err != nil {
				return fmt.Errorf("edge %s->%s: %w", edge.SourceAssetID, edge.TargetAssetID, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d dependencies\n", len(edges))
		return nil
	})
}

func parseTime(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, value)
}
