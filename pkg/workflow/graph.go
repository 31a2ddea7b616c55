package workflow

import (
	"fmt"
	"log/slog"

	"github.com/sutraflow/sutra/pkg/models"
)

// BuildDependencies converts a graph's edge list into, for every node id, the
// set of node ids it directly depends on. Edges whose endpoints are not
// declared nodes are logged and skipped; a dangling edge is recoverable,
// unlike a cycle, which surfaces later as a scheduling deadlock.
func BuildDependencies(graph *models.WorkflowGraph, logger *slog.Logger) map[string]map[string]struct{} {
	dependencies := make(map[string]map[string]struct{}, len(graph.Nodes))
	for _, node := range graph.Nodes {
		dependencies[node.ID] = make(map[string]struct{})
	}

	for _, edge := range graph.Edges {
		if edge == nil || edge.Source == "" || edge.Target == "" {
			continue
		}

		if _, ok := dependencies[edge.Target]; !ok {
			logger.Warn("Ignoring edge with undeclared target node",
				"source", edge.Source, "target", edge.Target)

			continue
		}

		if _, ok := dependencies[edge.Source]; !ok {
			logger.Warn("Ignoring edge with undeclared source node",
				"source", edge.Source, "target", edge.Target)

			continue
		}

		dependencies[edge.Target][edge.Source] = struct{}{}
	}

	return dependencies
}

// validateGraph checks the structural invariants that make a graph executable
// at all: at least one node and unique node ids. Cycles are not checked here;
// the scheduler diagnoses them when a full pass finds no ready node.
func validateGraph(graph *models.WorkflowGraph) error {
	if len(graph.Nodes) == 0 {
		return fmt.Errorf("workflow graph has no nodes")
	}

	seen := make(map[string]struct{}, len(graph.Nodes))

	for _, node := range graph.Nodes {
		if node == nil || node.ID == "" {
			return fmt.Errorf("workflow graph contains a node without an id")
		}

		if node.Type == "" {
			return fmt.Errorf("node '%s' has no type", node.ID)
		}

		if _, dup := seen[node.ID]; dup {
			return fmt.Errorf("duplicate node id '%s'", node.ID)
		}

		seen[node.ID] = struct{}{}
	}

	return nil
}
