package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, ExecutionStatusPending.IsTerminal())
	assert.False(t, ExecutionStatusRunning.IsTerminal())
	assert.True(t, ExecutionStatusCompleted.IsTerminal())
	assert.True(t, ExecutionStatusFailed.IsTerminal())
	assert.True(t, ExecutionStatusCancelled.IsTerminal())
}

func TestWorkflowExecution_StepByNodeID(t *testing.T) {
	t.Parallel()

	execution := &WorkflowExecution{
		Steps: []*ExecutionStep{
			{NodeID: "a", Status: ExecutionStatusCompleted},
			{NodeID: "b", Status: ExecutionStatusPending},
		},
	}

	step := execution.StepByNodeID("b")
	assert.NotNil(t, step)
	assert.Equal(t, ExecutionStatusPending, step.Status)

	assert.Nil(t, execution.StepByNodeID("missing"))
}

func TestWorkflowGraph_NodeByID(t *testing.T) {
	t.Parallel()

	graph := &WorkflowGraph{
		Nodes: []*Node{
			{ID: "a", Type: "data"},
			{ID: "b", Type: "log"},
		},
	}

	node := graph.NodeByID("b")
	assert.NotNil(t, node)
	assert.Equal(t, "log", node.Type)

	assert.Nil(t, graph.NodeByID("missing"))
}
