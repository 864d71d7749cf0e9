package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

const (
	listDependenciesQuery = `
		MATCH (s:Asset)-[d:DEPENDS_ON]->(t:Asset)
		RETURN s.id AS source, t.id AS target, d.type AS type, d.strength AS strength, d.description AS description
	`

	upsertDependencyQuery = `
		MERGE (s:Asset {id: $source})
		MERGE (t:Asset {id: $target})
		MERGE (s)-[d:DEPENDS_ON {type: $type}]->(t)
		SET d.strength = $strength, d.description = $description, d.updated_at = datetime()
	`
)

// Neo4jStore reads and writes asset dependencies in Neo4j.
// Assets are (:Asset {id}) nodes and each dependency is a DEPENDS_ON relationship
// from source to target carrying its type and strength.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	config GraphConfig
	logger *zap.Logger
}

// NewNeo4jStore creates a new Neo4j graph store
func NewNeo4jStore(ctx context.Context, config GraphConfig, logger *zap.Logger) (*Neo4jStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(
		config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = config.MaxPoolSize
			c.MaxConnectionLifetime = time.Hour
			c.ConnectionAcquisitionTimeout = config.ConnTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	store := &Neo4jStore{
		driver: driver,
		config: config,
		logger: logger,
	}

	if err := store.initializeSchema(verifyCtx); err != nil {
		logger.Warn("failed to initialize graph schema", zap.Error(err))
	}

	return store, nil
}

func (s *Neo4jStore) initializeSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.Run(ctx, "CREATE CONSTRAINT asset_id IF NOT EXISTS FOR (a:Asset) REQUIRE a.id IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("failed to create constraint asset_id: %w", err)
	}
	return nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.config.Database,
	})
}

func (s *Neo4jStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.QueryTimeout)
}

// ListDependencies returns every DEPENDS_ON edge. Records that cannot be mapped are skipped.
func (s *Neo4jStore) ListDependencies(ctx context.Context) ([]models.AssetDependencyEdge, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, listDependenciesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}

	var edges []models.AssetDependencyEdge
	for result.Next(ctx) {
		edge, err := edgeFromRecord(result.Record())
		if err != nil {
			s.logger.Warn("skipping dependency record", zap.Error(err))
			continue
		}
		edges = append(edges, edge)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dependencies: %w", err)
	}

	s.logger.Debug("loaded dependency edges", zap.Int("count", len(edges)))
	return edges, nil
}

// UpsertDependency validates and writes one edge.
func (s *Neo4jStore) UpsertDependency(ctx context.Context, edge models.AssetDependencyEdge) error {
	if edge.Strength == 0 {
		edge.Strength = models.DefaultDependencyStrength
	}
	if err := validation.Struct(edge); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.Run(ctx, upsertDependencyQuery, edgeParams(edge))
	if err != nil {
		return fmt.Errorf("failed to upsert dependency %s: %w", edge.Key(), err)
	}
	return nil
}

// Ping verifies connectivity
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close closes the database connection
func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func edgeParams(edge models.AssetDependencyEdge) map[string]any {
	return map[string]any{
		"source":      edge.SourceAssetID,
		"target":      edge.TargetAssetID,
		"type":        string(edge.Type),
		"strength":    int64(edge.Strength),
		"description": edge.Description,
	}
}

func edgeFromRecord(rec *neo4j.Record) (models.AssetDependencyEdge, error) {
	source, err := recordString(rec, "source")
	if err != nil {
		return models.AssetDependencyEdge{}, err
	}
	target, err := recordString(rec, "target")
	if err != nil {
		return models.AssetDependencyEdge{}, err
	}

	edge := models.NewDependencyEdge(source, target, models.DependencyHard)

	if v, ok := rec.Get("type"); ok && v != nil {
		t, ok := v.(string)
		if !ok {
			return models.AssetDependencyEdge{}, fmt.Errorf("field type: unexpected %T", v)
		}
		edge.Type = models.DependencyType(t)
	}
	if v, ok := rec.Get("strength"); ok && v != nil {
		n, ok := v.(int64)
		if !ok {
			return models.AssetDependencyEdge{}, fmt.Errorf("field strength: unexpected %T", v)
		}
		edge.Strength = int(n)
	}
	if v, ok := rec.Get("description"); ok && v != nil {
		if d, ok := v.(string); ok {
			edge.Description = d
		}
	}
	return edge, nil
}

func recordString(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", fmt.Errorf("field %s: missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("field %s: unexpected %T", key, v)
	}
	return s, nil
}
