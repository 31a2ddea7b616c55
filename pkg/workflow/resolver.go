package workflow

import (
	"log/slog"
	"strings"

	"github.com/sutraflow/sutra/pkg/models"
)

// fallbackKeys is the fixed, ordered list of conventional output fields
// scanned when a required input has no explicit binding. The scan covers only
// the most recently completed node's output, modeling "connect the previous
// step's main output by default".
var fallbackKeys = []string{"result", "output", "content", "text", "data"}

// Resolver resolves a node's declared input bindings against the accumulated
// output namespace. Resolution is pure: the same bindings against an
// unchanged namespace always yield the same values, and failures produce
// absent keys rather than errors; the executor's own required-input check is
// the enforcement point.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger.With("module", "input_resolver")}
}

// Resolve produces the input map for one node invocation.
//
// Binding forms:
//   - "key"            direct lookup in the namespace
//   - "producer.field" lookup of field within producer's output; degrades to
//     the whole output when that output is not a map
//   - {source, field}  structured equivalent of the dotted form, for producer
//     ids that contain a literal '.'
//
// Required inputs left unbound fall back to, in order: the key itself in the
// namespace (the virtual start producer's seeded inputs), then the
// conventional-key scan over the most recently completed node's output.
func (r *Resolver) Resolve(node *models.Node, namespace map[string]any, lastCompleted string, required []string) map[string]any {
	inputs := make(map[string]any, len(node.Inputs))

	for key, binding := range node.Inputs {
		value, ok := r.resolveBinding(binding, namespace)
		if !ok {
			r.logger.Debug("Input binding did not resolve",
				"node_id", node.ID, "input", key, "binding", binding)

			continue
		}

		inputs[key] = value
	}

	for _, key := range required {
		if _, bound := inputs[key]; bound {
			continue
		}

		if _, declared := node.Inputs[key]; declared {
			// An explicit binding that failed to resolve is not papered
			// over by the fallback search.
			continue
		}

		if value, ok := namespace[key]; ok {
			inputs[key] = value

			continue
		}

		if value, ok := scanConventionalKeys(namespace, lastCompleted); ok {
			inputs[key] = value
		}
	}

	return inputs
}

func (r *Resolver) resolveBinding(binding any, namespace map[string]any) (any, bool) {
	switch spec := binding.(type) {
	case string:
		if producer, field, found := strings.Cut(spec, "."); found {
			return lookupField(namespace, producer, field)
		}

		value, ok := namespace[spec]

		return value, ok
	case map[string]any:
		producer, _ := spec["source"].(string)
		if producer == "" {
			return nil, false
		}

		field, _ := spec["field"].(string)
		if field == "" {
			field = "data"
		}

		return lookupField(namespace, producer, field)
	default:
		return nil, false
	}
}

// lookupField addresses a field inside a producer's output. A producer whose
// output is not a map is used verbatim: dotted addressing degrades gracefully
// to a direct reference.
func lookupField(namespace map[string]any, producer, field string) (any, bool) {
	output, ok := namespace[producer]
	if !ok {
		return nil, false
	}

	if mapped, isMap := output.(map[string]any); isMap {
		if value, present := mapped[field]; present {
			return value, true
		}
	}

	return output, true
}

func scanConventionalKeys(namespace map[string]any, lastCompleted string) (any, bool) {
	if lastCompleted == "" {
		return nil, false
	}

	output, ok := namespace[lastCompleted].(map[string]any)
	if !ok {
		return nil, false
	}

	for _, key := range fallbackKeys {
		if value, present := output[key]; present && value != nil {
			return value, true
		}
	}

	return nil, false
}
