package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
)

const (
	endpointEnvVar = "SUTRA_LLM_ENDPOINT"
	apiKeyEnvVar   = "SUTRA_LLM_API_KEY"

	defaultModel   = "gpt-4o-mini"
	requestTimeout = 60 * time.Second
)

const systemPrompt = `You are an expert workflow designer for an automation platform that creates workflows from natural language descriptions.

Analyze the user request and respond with a single JSON object:
{
  "workflow": {
    "name": "Descriptive workflow name",
    "description": "What the workflow does",
    "nodes": [{"id": "unique_id", "type": "node_type", "config": {}, "inputs": {}}],
    "edges": [{"source": "source_node_id", "target": "target_node_id"}]
  },
  "suggestions": ["Suggestion 1"],
  "questions": ["Clarifying question 1"]
}

Keep workflows simple and focused, use clear node ids, and only use the node types you are given.`

// LLMGenerator asks an OpenAI-compatible chat completion endpoint to design
// the workflow. Responses are validated against the known node types and any
// failure degrades to the deterministic fallback rather than an error.
type LLMGenerator struct {
	logger     *slog.Logger
	client     *http.Client
	endpoint   string
	apiKey     string
	model      string
	validTypes []string
}

// NewLLMGenerator wires a generator against the given node type catalog. The
// endpoint and API key come from the environment when left empty.
func NewLLMGenerator(logger *slog.Logger, validTypes []string) *LLMGenerator {
	return &LLMGenerator{
		logger:     logger.With("module", "generation"),
		client:     &http.Client{Timeout: requestTimeout},
		endpoint:   os.Getenv(endpointEnvVar),
		apiKey:     os.Getenv(apiKeyEnvVar),
		model:      defaultModel,
		validTypes: validTypes,
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	if g.endpoint == "" {
		g.logger.Info("No LLM endpoint configured, using fallback workflow")

		return FallbackWorkflow(prompt), nil
	}

	content, err := g.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("Workflow generation request failed, using fallback", "error", err)

		return FallbackWorkflow(prompt), nil
	}

	result, err := g.parseResponse(content, prompt)
	if err != nil {
		g.logger.Warn("Unusable model response, using fallback", "error", err)

		return FallbackWorkflow(prompt), nil
	}

	return result, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *LLMGenerator) complete(ctx context.Context, prompt string) (string, error) {
	user := fmt.Sprintf("Available node types: %s\n\nUSER REQUEST: %q\n\nGenerate the workflow in the specified JSON format.",
		strings.Join(g.validTypes, ", "), prompt)

	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", fmt.Errorf("completion endpoint returned %s: %s", resp.Status, string(body))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion response")
	}

	return completion.Choices[0].Message.Content, nil
}

// parseResponse extracts the JSON object from the model output, which may be
// wrapped in prose or a code fence, and normalizes the workflow it carries.
func (g *LLMGenerator) parseResponse(content, prompt string) (*Result, error) {
	start := strings.Index(content, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	end := strings.LastIndex(content, "}")
	if end < start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var result Result
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	if len(result.Workflow.Nodes) == 0 {
		return nil, fmt.Errorf("model response contains no nodes")
	}

	g.normalize(&result.Workflow, prompt)

	return &result, nil
}

func (g *LLMGenerator) normalize(graph *models.WorkflowGraph, prompt string) {
	if graph.ID == "" {
		graph.ID = "wf-" + strings.ToLower(strings.ReplaceAll(WorkflowName(prompt), " ", "-"))
	}

	if graph.Name == "" {
		graph.Name = WorkflowName(prompt)
	}

	if graph.Description == "" {
		graph.Description = prompt
	}

	nodes := graph.Nodes[:0]

	for i, node := range graph.Nodes {
		if node == nil {
			continue
		}

		if node.ID == "" {
			node.ID = fmt.Sprintf("node_%d", i+1)
		}

		// Unknown node types fall back to the AI agent so the generated
		// workflow stays runnable.
		if !slices.Contains(g.validTypes, node.Type) {
			g.logger.Debug("Coercing unknown node type", "node_id", node.ID, "type", node.Type)
			node.Type = "aiAgent"
		}

		if node.Config == nil {
			node.Config = map[string]any{}
		}

		if node.Inputs == nil {
			node.Inputs = map[string]any{}
		}

		nodes = append(nodes, node)
	}

	graph.Nodes = nodes

	edges := graph.Edges[:0]

	for _, edge := range graph.Edges {
		if edge == nil || edge.Source == "" || edge.Target == "" {
			continue
		}

		edges = append(edges, edge)
	}

	graph.Edges = edges
}
