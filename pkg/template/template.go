// Package template provides templating functionality for dynamic node configuration.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
)

// RenderWithContext renders a config string against one node invocation's
// view of the run: its resolved inputs, raw config, the accumulated output
// namespace and the process environment.
func RenderWithContext(input string, executionCtx *models.ExecutionContext) (any, error) {
	data := map[string]any{
		"inputs":       executionCtx.Inputs,
		"config":       executionCtx.Config,
		"node_results": executionCtx.PreviousOutputs,
		"env":          getEnvVars(),
		"execution": map[string]any{
			"id":          executionCtx.ExecutionID,
			"workflow_id": executionCtx.WorkflowID,
			"node_id":     executionCtx.NodeID,
		},
	}

	return Render(input, data)
}

func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("config").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}
				num := make([]byte, 1)
				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	// Values that render to JSON documents are decoded so downstream nodes
	// receive structured data rather than a string.
	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		if err := json.Unmarshal([]byte(result), &jsonResult); err == nil {
			return jsonResult, nil
		}
	}

	return result, nil
}

// RenderString is Render for callers that need a plain string back.
func RenderString(templateStr string, executionCtx *models.ExecutionContext) (string, error) {
	rendered, err := RenderWithContext(templateStr, executionCtx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v", rendered), nil
}

func getEnvVars() map[string]string {
	envVars := make(map[string]string)

	for _, pair := range os.Environ() {
		if key, value, found := strings.Cut(pair, "="); found {
			envVars[key] = value
		}
	}

	return envVars
}
