// Package models defines the core domain models for graph-based workflow execution.
package models

// Node represents one step in a workflow graph. The Type selects the executor
// that will run it; Config carries executor-specific settings and Inputs carries
// the declared input bindings resolved against earlier node outputs.
type Node struct {
	ID     string         `json:"id"     validate:"required"`
	Type   string         `json:"type"   validate:"required"`
	Config map[string]any `json:"config,omitempty"`
	Inputs map[string]any `json:"inputs,omitempty"`
}

// Edge is a directed producer -> consumer dependency between two nodes.
type Edge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// WorkflowGraph is a full workflow definition: an ordered node list plus the
// edges connecting them. Node ids must be unique; the edge relation must be
// acyclic (enforced at execution time).
type WorkflowGraph struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Nodes       []*Node        `json:"nodes" validate:"required,min=1,dive,required"`
	Edges       []*Edge        `json:"edges" validate:"dive,required"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NodeByID returns the node with the given id, or nil when absent.
func (g *WorkflowGraph) NodeByID(id string) *Node {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
