package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

// ErrDuplicateEdge is returned when an edge with the same source, target and type exists.
var ErrDuplicateEdge = errors.New("dependency edge already exists")

// DependencySource supplies the asset dependency edges of the current graph snapshot
type DependencySource interface {
	ListDependencies(ctx context.Context) ([]models.AssetDependencyEdge, error)
}

// DependencyStore is a DependencySource that also accepts writes
type DependencyStore interface {
	DependencySource
	UpsertDependency(ctx context.Context, edge models.AssetDependencyEdge) error
	Ping(ctx context.Context) error
	Close() error
}

// GraphConfig represents graph database configuration
type GraphConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	MaxPoolSize  int           `yaml:"max_pool_size"`
	ConnTimeout  time.Duration `yaml:"conn_timeout"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DefaultGraphConfig returns default graph configuration
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		URI:          "bolt://localhost:7687",
		Database:     "neo4j",
		MaxPoolSize:  50,
		ConnTimeout:  30 * time.Second,
		QueryTimeout: 30 * time.Second,
	}
}

// ValidateEdges checks each edge and rejects duplicate (source, target, type) triples.
func ValidateEdges(edges []models.AssetDependencyEdge) error {
	seen := make(map[string]struct{}, len(edges))
	for i, e := range edges {
		if err := validation.Struct(e); err != nil {
			return fmt.Errorf("edge %d (%s): %w", i, e.Key(), err)
		}
		if _, ok := seen[e.Key()]; ok {
			return fmt.Errorf("edge %d: %w: %s", i, ErrDuplicateEdge, e.Key())
		}
		seen[e.Key()] = struct{}{}
	}
	return nil
}
