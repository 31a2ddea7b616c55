// Package testutil provides test data builders for workflow graphs.
package testutil

import (
	"github.com/sutraflow/sutra/pkg/models"
)

// Node creates a test node with default values that can be overridden.
func Node(id, nodeType string, overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:     id,
		Type:   nodeType,
		Config: map[string]any{},
		Inputs: map[string]any{},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithConfig sets the node config.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// WithInputs sets the node's declared input bindings.
func WithInputs(inputs map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Inputs = inputs
	}
}

// Graph assembles a workflow graph from nodes and edges given as source,
// target pairs.
func Graph(id string, nodes []*models.Node, edgePairs ...[2]string) *models.WorkflowGraph {
	edges := make([]*models.Edge, 0, len(edgePairs))
	for _, pair := range edgePairs {
		edges = append(edges, &models.Edge{Source: pair[0], Target: pair[1]})
	}

	return &models.WorkflowGraph{
		ID:    id,
		Name:  id,
		Nodes: nodes,
		Edges: edges,
	}
}
