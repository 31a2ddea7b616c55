// Package data implements the data processing node executor: extraction,
// mapping, validation, transformation and storage of values flowing between
// workflow steps.
package data

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sutraflow/sutra/pkg/models"
)

var operations = []string{"pass_through", "extract", "map", "validate", "transform", "store"}

// Executor handles nodes of type "data". One instance is shared across runs,
// so all state lives in concurrency-safe members.
type Executor struct {
	logger *slog.Logger

	memory  sync.Map // key -> stored value, for storage_type "memory"
	mu      sync.Mutex
	clients map[string]redis.UniversalClient // addr -> client, for storage_type "redis"
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger:  logger.With("module", "data_executor"),
		clients: make(map[string]redis.UniversalClient),
	}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	operation, _ := config["operation"].(string)
	if operation != "" && !isValidOperation(operation) {
		errs = append(errs, fmt.Sprintf("invalid operation: %s", operation))
	}

	switch operation {
	case "extract":
		if _, ok := config["fields"]; !ok {
			errs = append(errs, "extract operation requires 'fields' configuration")
		}
	case "map":
		if _, ok := config["mapping"]; !ok {
			errs = append(errs, "map operation requires 'mapping' configuration")
		}
	case "validate":
		if _, ok := config["rules"]; !ok {
			errs = append(errs, "validate operation requires 'rules' configuration")
		}
	case "transform":
		if _, ok := config["transformation"]; !ok {
			errs = append(errs, "transform operation requires 'transformation' configuration")
		}
	case "store":
		if _, ok := config["storage_type"]; !ok {
			errs = append(errs, "store operation requires 'storage_type' configuration")
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return []string{"data"}
}

func (e *Executor) OptionalInputs() []string {
	return []string{"metadata", "schema"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Processed data output",
		"properties": map[string]any{
			"data":               map[string]any{"description": "Processed data"},
			"metadata":           map[string]any{"type": "object", "description": "Processing metadata"},
			"validation_results": map[string]any{"type": "array", "description": "Validation results if applicable"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	operation, _ := executionCtx.Config["operation"].(string)
	if operation == "" {
		operation = "pass_through"
	}

	var result models.ExecutionResult

	switch operation {
	case "pass_through":
		result = passThrough(executionCtx)
	case "extract":
		result = extract(executionCtx)
	case "map":
		result = mapData(executionCtx)
	case "validate":
		result = validate(executionCtx)
	case "transform":
		result = transform(executionCtx)
	case "store":
		result = e.store(ctx, executionCtx)
	default:
		result = models.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("unknown operation: %s", operation),
		}
	}

	result.ExecutionTime = time.Since(started)

	return result, nil
}

func passThrough(executionCtx models.ExecutionContext) models.ExecutionResult {
	return success(executionCtx.Inputs["data"], map[string]any{"operation": "pass_through"})
}

func extract(executionCtx models.ExecutionContext) models.ExecutionResult {
	fields := stringSlice(executionCtx.Config["fields"])

	pick := func(item map[string]any) map[string]any {
		picked := make(map[string]any, len(fields))
		for _, field := range fields {
			picked[field] = item[field]
		}

		return picked
	}

	switch value := executionCtx.Inputs["data"].(type) {
	case map[string]any:
		return success(pick(value), map[string]any{"operation": "extract", "fields": fields})
	case []any:
		extracted := make([]any, 0, len(value))

		for _, item := range value {
			mapped, ok := item.(map[string]any)
			if !ok {
				return failure("data items must be objects for extract operation")
			}

			extracted = append(extracted, pick(mapped))
		}

		return success(extracted, map[string]any{"operation": "extract", "fields": fields})
	default:
		return failure("data must be an object or a list for extract operation")
	}
}

func mapData(executionCtx models.ExecutionContext) models.ExecutionResult {
	mapping, _ := executionCtx.Config["mapping"].(map[string]any)

	rename := func(item map[string]any) map[string]any {
		renamed := make(map[string]any, len(mapping))

		for oldKey, newKeyValue := range mapping {
			newKey, ok := newKeyValue.(string)
			if !ok {
				continue
			}

			if value, present := item[oldKey]; present {
				renamed[newKey] = value
			}
		}

		return renamed
	}

	switch value := executionCtx.Inputs["data"].(type) {
	case map[string]any:
		return success(rename(value), map[string]any{"operation": "map", "mapping": mapping})
	case []any:
		mapped := make([]any, 0, len(value))

		for _, item := range value {
			itemMap, ok := item.(map[string]any)
			if !ok {
				return failure("data items must be objects for map operation")
			}

			mapped = append(mapped, rename(itemMap))
		}

		return success(mapped, map[string]any{"operation": "map", "mapping": mapping})
	default:
		return failure("data must be an object or a list for map operation")
	}
}

func validate(executionCtx models.ExecutionContext) models.ExecutionResult {
	value, _ := executionCtx.Inputs["data"].(map[string]any)
	rules, _ := executionCtx.Config["rules"].([]any)

	results := make([]any, 0, len(rules))
	valid := true

	for _, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		ruleType, _ := rule["type"].(string)
		field, _ := rule["field"].(string)

		switch ruleType {
		case "required":
			if fieldValue, present := value[field]; !present || fieldValue == nil {
				results = append(results, ruleResult(rule, false, fmt.Sprintf("required field '%s' is missing or null", field)))

				valid = false
			} else {
				results = append(results, ruleResult(rule, true, fmt.Sprintf("field '%s' is present", field)))
			}
		case "type":
			expected, _ := rule["value"].(string)

			fieldValue, present := value[field]
			if !present {
				continue
			}

			actual := typeName(fieldValue)
			if actual != expected {
				results = append(results, ruleResult(rule, false, fmt.Sprintf("field '%s' should be %s, got %s", field, expected, actual)))

				valid = false
			} else {
				results = append(results, ruleResult(rule, true, fmt.Sprintf("field '%s' has correct type %s", field, expected)))
			}
		}
	}

	result := models.ExecutionResult{
		Success: valid,
		Output: map[string]any{
			"data":               value,
			"metadata":           map[string]any{"operation": "validate"},
			"validation_results": results,
		},
	}
	if !valid {
		result.Error = "data validation failed"
	}

	return result
}

func transform(executionCtx models.ExecutionContext) models.ExecutionResult {
	transformation, _ := executionCtx.Config["transformation"].(map[string]any)
	value := executionCtx.Inputs["data"]

	apply := func(convert func(string) string) any {
		switch typed := value.(type) {
		case string:
			return convert(typed)
		case map[string]any:
			converted := make(map[string]any, len(typed))

			for key, item := range typed {
				if text, ok := item.(string); ok {
					converted[key] = convert(text)
				} else {
					converted[key] = item
				}
			}

			return converted
		default:
			return value
		}
	}

	transformed := value

	switch {
	case truthy(transformation["uppercase"]):
		transformed = apply(strings.ToUpper)
	case truthy(transformation["lowercase"]):
		transformed = apply(strings.ToLower)
	}

	return success(transformed, map[string]any{"operation": "transform", "transformation": transformation})
}

func (e *Executor) store(ctx context.Context, executionCtx models.ExecutionContext) models.ExecutionResult {
	storageType, _ := executionCtx.Config["storage_type"].(string)
	if storageType == "" {
		storageType = "memory"
	}

	key, _ := executionCtx.Config["key"].(string)
	if key == "" {
		key = executionCtx.ExecutionID + ":" + executionCtx.NodeID
	}

	value := executionCtx.Inputs["data"]

	switch storageType {
	case "memory":
		e.memory.Store(key, value)
	case "redis":
		client, err := e.redisClient(executionCtx.Config)
		if err != nil {
			return failure(err.Error())
		}

		if err := client.Set(ctx, key, fmt.Sprintf("%v", value), 0).Err(); err != nil {
			return failure(fmt.Sprintf("redis store failed: %v", err))
		}
	default:
		return failure(fmt.Sprintf("unsupported storage_type: %s", storageType))
	}

	return success(value, map[string]any{
		"operation":    "store",
		"storage_type": storageType,
		"key":          key,
		"stored":       true,
	})
}

func (e *Executor) redisClient(config map[string]any) (redis.UniversalClient, error) {
	connection, _ := config["connection"].(map[string]any)

	addr, _ := connection["addr"].(string)
	if addr == "" {
		return nil, fmt.Errorf("redis storage requires connection.addr")
	}

	password, _ := connection["password"].(string)

	e.mu.Lock()
	defer e.mu.Unlock()

	if client, ok := e.clients[addr]; ok {
		return client, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	e.clients[addr] = client
	e.logger.Info("Created redis client for data storage", "addr", addr)

	return client, nil
}

func success(data any, metadata map[string]any) models.ExecutionResult {
	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"data":     data,
			"metadata": metadata,
		},
	}
}

func failure(errText string) models.ExecutionResult {
	return models.ExecutionResult{Success: false, Error: errText}
}

func ruleResult(rule map[string]any, valid bool, message string) map[string]any {
	return map[string]any{"rule": rule, "valid": valid, "message": message}
}

func isValidOperation(operation string) bool {
	for _, candidate := range operations {
		if candidate == operation {
			return true
		}
	}

	return false
}

func stringSlice(value any) []string {
	items, _ := value.([]any)
	fields := make([]string, 0, len(items))

	for _, item := range items {
		if text, ok := item.(string); ok {
			fields = append(fields, text)
		}
	}

	return fields
}

func typeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		return typed == "true"
	default:
		return false
	}
}
