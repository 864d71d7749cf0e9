package graph

import (
	"sort"

	"github.com/riskgraph/pkg/models"
)

// DependencyMap is a directed adjacency map: for every edge u->v, v is in m[u].
// A built map is never modified by propagation and may be shared between
// concurrent evaluations.
type DependencyMap map[string]map[string]struct{}

// BuildDependencyMap builds the adjacency map for a set of edges.
// Edge type and strength are ignored.
func BuildDependencyMap(edges []models.AssetDependencyEdge) DependencyMap {
	m := make(DependencyMap)
	for _, e := range edges {
		targets, ok := m[e.SourceAssetID]
		if !ok {
			targets = make(map[string]struct{})
			m[e.SourceAssetID] = targets
		}
		targets[e.TargetAssetID] = struct{}{}
	}
	return m
}

// Targets returns the assets reachable in one hop from id, sorted.
func (m DependencyMap) Targets(id string) []string {
	out := make([]string, 0, len(m[id]))
	for t := range m[id] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of distinct source/target pairs.
func (m DependencyMap) EdgeCount() int {
	n := 0
	for _, targets := range m {
		n += len(targets)
	}
	return n
}

// Propagate returns the set of failed assets reachable from seeds along edge direction.
// Seeds are always part of the result. Each asset enters the frontier at most once,
// so cycles terminate.
func (m DependencyMap) Propagate(seeds []string) map[string]struct{} {
	failed := make(map[string]struct{}, len(seeds))
	frontier := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if _, ok := failed[id]; ok {
			continue
		}
		failed[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for len(frontier) > 0 {
		current := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		for target := range m[current] {
			if _, ok := failed[target]; ok {
				continue
			}
			failed[target] = struct{}{}
			frontier = append(frontier, target)
		}
	}

	return failed
}

// PropagateFailures builds a map from edges and propagates from seeds in one call.
// The result is sorted.
func PropagateFailures(seeds []string, edges []models.AssetDependencyEdge) []string {
	return SortedIDs(BuildDependencyMap(edges).Propagate(seeds))
}

// FilterEdges keeps edges whose type is in types. No types keeps every edge.
func FilterEdges(edges []models.AssetDependencyEdge, types ...models.DependencyType) []models.AssetDependencyEdge {
	if len(types) == 0 {
		return edges
	}
	allowed := make(map[models.DependencyType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := make([]models.AssetDependencyEdge, 0, len(edges))
	for _, e := range edges {
		if _, ok := allowed[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out
}

// SortedIDs returns the members of a set in ascending order.
func SortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
