// Package generation turns natural language automation requests into workflow
// graphs. When an LLM endpoint is configured the request is delegated to it;
// otherwise, or whenever the model response cannot be used, a deterministic
// fallback produces a minimal single-node workflow.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sutraflow/sutra/pkg/models"
)

// Result is a generated workflow plus the assistant's follow-ups.
type Result struct {
	Workflow    models.WorkflowGraph `json:"workflow"`
	Suggestions []string             `json:"suggestions"`
	Questions   []string             `json:"questions"`
}

// Generator produces a workflow graph from a free-form prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

var nameKeywords = []string{"find", "send", "create", "process", "automate", "generate"}

// WorkflowName derives a short display name from the prompt's first action
// keyword.
func WorkflowName(prompt string) string {
	for _, word := range strings.Fields(strings.ToLower(prompt)) {
		for _, keyword := range nameKeywords {
			if word == keyword {
				return strings.ToUpper(keyword[:1]) + keyword[1:] + " Workflow"
			}
		}
	}

	return "Automation Workflow"
}

// FallbackWorkflow builds the minimal single-node workflow used when no model
// is available or its response is unusable.
func FallbackWorkflow(prompt string) *Result {
	return &Result{
		Workflow: models.WorkflowGraph{
			ID:          "wf-" + uuid.New().String()[:8],
			Name:        WorkflowName(prompt),
			Description: fmt.Sprintf("Automation workflow for: %s", prompt),
			Nodes: []*models.Node{
				{
					ID:     "1",
					Type:   "aiAgent",
					Config: map[string]any{"prompt": prompt},
					Inputs: map[string]any{},
				},
			},
			Edges: []*models.Edge{},
			Metadata: map[string]any{
				"title":      WorkflowName(prompt),
				"complexity": "simple",
			},
		},
		Suggestions: []string{
			"Consider adding more specific steps to make this workflow more robust",
			"You may need to connect external services for full functionality",
		},
		Questions: []string{
			"What specific outcome are you looking for?",
			"Do you have any existing tools or services you'd like to integrate?",
		},
	}
}
