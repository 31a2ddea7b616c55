package workflow

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/testutil"
)

func TestResolver_Resolve_DirectKeyBinding(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"topic": "topic"}))

	namespace := map[string]any{"topic": "golang"}

	inputs := resolver.Resolve(node, namespace, "", nil)
	assert.Equal(t, "golang", inputs["topic"])
}

func TestResolver_Resolve_DottedBinding(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"body": "fetch.content"}))

	namespace := map[string]any{
		"fetch": map[string]any{"content": "hello", "status": 200},
	}

	inputs := resolver.Resolve(node, namespace, "", nil)
	assert.Equal(t, "hello", inputs["body"])
}

func TestResolver_Resolve_DottedBindingDegradesToWholeOutput(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"body": "fetch.content"}))

	// The producer's output is a scalar, so field addressing falls back to
	// the output itself.
	namespace := map[string]any{"fetch": "plain text response"}

	inputs := resolver.Resolve(node, namespace, "", nil)
	assert.Equal(t, "plain text response", inputs["body"])
}

func TestResolver_Resolve_StructuredBinding(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{
		"message": map[string]any{"source": "v1.report", "field": "text"},
		"payload": map[string]any{"source": "v1.report"},
	}))

	namespace := map[string]any{
		"v1.report": map[string]any{"text": "summary", "data": []any{1.0, 2.0}},
	}

	inputs := resolver.Resolve(node, namespace, "", nil)
	assert.Equal(t, "summary", inputs["message"])
	assert.Equal(t, []any{1.0, 2.0}, inputs["payload"], "field defaults to 'data'")
}

func TestResolver_Resolve_UnresolvedBindingIsAbsent(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"body": "missing.field"}))

	inputs := resolver.Resolve(node, map[string]any{}, "", nil)
	assert.NotContains(t, inputs, "body")
}

func TestResolver_Resolve_DeclaredBindingNotPaperedOverByFallback(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"prompt": "missing.field"}))

	// The last completed node has a conventional key available, but the
	// explicit binding failed, so the fallback must not mask it.
	namespace := map[string]any{
		"previous": map[string]any{"result": "tempting"},
	}

	inputs := resolver.Resolve(node, namespace, "previous", []string{"prompt"})
	assert.NotContains(t, inputs, "prompt")
}

func TestResolver_Resolve_FallbackScansLastCompletedOnly(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub")

	namespace := map[string]any{
		"older":  map[string]any{"result": "stale"},
		"latest": map[string]any{"content": "fresh"},
	}

	inputs := resolver.Resolve(node, namespace, "latest", []string{"prompt"})
	assert.Equal(t, "fresh", inputs["prompt"])
}

func TestResolver_Resolve_FallbackKeyPriority(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub")

	// "result" wins over "data" regardless of map iteration order.
	namespace := map[string]any{
		"prev": map[string]any{"data": "second choice", "result": "first choice"},
	}

	inputs := resolver.Resolve(node, namespace, "prev", []string{"prompt"})
	assert.Equal(t, "first choice", inputs["prompt"])
}

func TestResolver_Resolve_NoFallbackWithoutCompletedNode(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub")

	inputs := resolver.Resolve(node, map[string]any{}, "", []string{"prompt"})
	assert.Empty(t, inputs)
}

func TestResolver_Resolve_IsIdempotent(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(slog.Default())
	node := testutil.Node("n", "stub", testutil.WithInputs(map[string]any{"body": "fetch.content"}))

	namespace := map[string]any{
		"fetch": map[string]any{"content": "hello"},
	}

	first := resolver.Resolve(node, namespace, "fetch", []string{"body"})
	second := resolver.Resolve(node, namespace, "fetch", []string{"body"})
	assert.Equal(t, first, second)
}

func TestBuildDependencies_SkipsDanglingEdges(t *testing.T) {
	t.Parallel()

	graph := testutil.Graph("g",
		[]*models.Node{
			testutil.Node("a", "stub"),
			testutil.Node("b", "stub"),
		},
		[2]string{"a", "b"},
		[2]string{"ghost", "b"},
		[2]string{"a", "phantom"},
	)

	deps := BuildDependencies(graph, slog.Default())

	assert.Empty(t, deps["a"])
	assert.Equal(t, map[string]struct{}{"a": {}}, deps["b"])
	assert.NotContains(t, deps, "phantom")
}

func TestValidateGraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		graph   *models.WorkflowGraph
		wantErr string
	}{
		{
			name:    "empty graph",
			graph:   &models.WorkflowGraph{},
			wantErr: "no nodes",
		},
		{
			name: "missing node id",
			graph: testutil.Graph("g", []*models.Node{
				testutil.Node("", "stub"),
			}),
			wantErr: "without an id",
		},
		{
			name: "missing node type",
			graph: testutil.Graph("g", []*models.Node{
				testutil.Node("a", ""),
			}),
			wantErr: "has no type",
		},
		{
			name: "duplicate ids",
			graph: testutil.Graph("g", []*models.Node{
				testutil.Node("a", "stub"),
				testutil.Node("a", "stub"),
			}),
			wantErr: "duplicate node id",
		},
		{
			name: "valid",
			graph: testutil.Graph("g", []*models.Node{
				testutil.Node("a", "stub"),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateGraph(tt.graph)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
