package deptrace

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// BuildGraph converts a trace result into a directed graph keyed by file
// path. Parallel imports between the same pair of files collapse into one
// edge.
func BuildGraph(result *Result) (graphlib.Graph[string, string], error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())

	for _, file := range result.Files {
		if err := g.AddVertex(file); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add vertex %s: %w", file, err)
		}
	}

	for _, edge := range result.Edges {
		err := g.AddEdge(edge.FromFile, edge.ToFile)
		if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", edge.FromFile, edge.ToFile, err)
		}
	}

	return g, nil
}

// Cycles returns the import cycles in a trace result as sorted strongly
// connected components of size two or more.
func Cycles(result *Result) ([][]string, error) {
	g, err := BuildGraph(result)
	if err != nil {
		return nil, err
	}

	components, err := graphlib.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute strongly connected components: %w", err)
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
