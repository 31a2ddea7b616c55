// Package aiagent implements the AI agent node executor: task-driven content
// generation against an OpenAI-compatible chat completion endpoint.
package aiagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
)

const (
	endpointEnvVar = "SUTRA_LLM_ENDPOINT"
	apiKeyEnvVar   = "SUTRA_LLM_API_KEY"
	defaultModel   = "gpt-4o-mini"
	requestTimeout = 120 * time.Second
)

// Executor handles nodes of type "aiAgent". The remote model, its retries and
// its authentication are the provider's concern; this executor only shapes
// the prompt from the task and reports the completion.
type Executor struct {
	logger *slog.Logger
	client *http.Client
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger: logger.With("module", "aiagent_executor"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	if temperature, ok := config["temperature"].(float64); ok {
		if temperature < 0 || temperature > 2 {
			errs = append(errs, "temperature must be between 0 and 2")
		}
	}

	if maxTokens, ok := config["max_tokens"].(float64); ok && maxTokens < 1 {
		errs = append(errs, "max_tokens must be positive")
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return []string{"task", "prompt"}
}

func (e *Executor) OptionalInputs() []string {
	return []string{"topic", "context", "model", "temperature", "max_tokens"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Generated content",
		"properties": map[string]any{
			"result":  map[string]any{"type": "string", "description": "The generated content"},
			"content": map[string]any{"type": "string", "description": "Alias of result for downstream defaults"},
			"task":    map[string]any{"type": "string"},
			"topic":   map[string]any{"type": "string"},
			"model":   map[string]any{"type": "string"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	endpoint, _ := executionCtx.Config["endpoint"].(string)
	if endpoint == "" {
		endpoint = os.Getenv(endpointEnvVar)
	}

	if endpoint == "" {
		return models.ExecutionResult{
			Success:       false,
			Error:         "LLM endpoint not configured: set 'endpoint' in the node config or " + endpointEnvVar,
			ExecutionTime: time.Since(started),
		}, nil
	}

	task := stringInput(executionCtx.Inputs, "task", "research")
	topic := stringInput(executionCtx.Inputs, "topic", "general research")
	prompt := stringInput(executionCtx.Inputs, "prompt", "")
	contextText := stringInput(executionCtx.Inputs, "context", "")

	systemPrompt, userPrompt := buildPrompts(task, topic, prompt, contextText)

	model := stringInput(executionCtx.Inputs, "model", "")
	if model == "" {
		model, _ = executionCtx.Config["model"].(string)
	}

	if model == "" {
		model = defaultModel
	}

	content, err := e.complete(ctx, endpoint, executionCtx.Config, model, systemPrompt, userPrompt)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("completion request failed: %v", err),
			ExecutionTime: time.Since(started),
		}, nil
	}

	e.logger.Info("AI agent completed", "task", task, "topic", topic, "content_length", len(content))

	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"result":  content,
			"content": content,
			"task":    task,
			"topic":   topic,
			"model":   model,
		},
		Metadata:      map[string]any{"endpoint": endpoint},
		ExecutionTime: time.Since(started),
	}, nil
}

func buildPrompts(task, topic, prompt, contextText string) (string, string) {
	switch task {
	case "research":
		return fmt.Sprintf("You are an AI research agent. Research the topic: %s", topic),
			fmt.Sprintf("Please provide comprehensive research on: %s", topic)
	case "generate":
		return fmt.Sprintf("You are an AI content generation agent. Generate content about: %s", topic),
			fmt.Sprintf("Please generate engaging content about: %s", topic)
	case "analyze":
		return fmt.Sprintf("You are an AI analysis agent. Analyze the topic: %s", topic),
			fmt.Sprintf("Please provide detailed analysis of: %s", topic)
	default:
		return "You are an intelligent AI agent. Process the given input and provide a helpful response.",
			fmt.Sprintf("Context: %s\n\nTask: %s\n\nTopic: %s", contextText, prompt, topic)
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *Executor) complete(ctx context.Context, endpoint string, config map[string]any, model, systemPrompt, userPrompt string) (string, error) {
	temperature := 0.1
	if value, ok := config["temperature"].(float64); ok {
		temperature = value
	}

	request := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}

	if maxTokens, ok := config["max_tokens"].(float64); ok && maxTokens >= 1 {
		request.MaxTokens = int(maxTokens)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	apiKey, _ := config["api_key"].(string)
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar)
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("unexpected completion response: %w", err)
	}

	if decoded.Error != nil {
		return "", fmt.Errorf("provider error: %s", decoded.Error.Message)
	}

	if resp.StatusCode != http.StatusOK || len(decoded.Choices) == 0 {
		return "", fmt.Errorf("provider returned status %s with no choices", resp.Status)
	}

	return decoded.Choices[0].Message.Content, nil
}

func stringInput(inputs map[string]any, key, fallback string) string {
	if value, ok := inputs[key].(string); ok && value != "" {
		return value
	}

	return fallback
}
