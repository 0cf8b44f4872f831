// Package dataflow resolves {{nodeId.output.path}} style references in node
// configs against the accumulated execution state. Resolution is a pure
// function of (value, state): the same inputs always yield the same result,
// which is what makes a serialized state snapshot sufficient to resume an
// execution days later without re-running earlier nodes.
package dataflow

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/oliveagle/jsonpath"
)

var referencePattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Resolve substitutes references in a config value. Strings consisting of a
// single reference resolve to the referenced value with its type preserved;
// strings mixing references with literal text interpolate each reference as
// a string. Maps and slices are resolved recursively; other scalars pass
// through untouched. A missing path resolves to nil (whole-reference) or
// the empty string (interpolation), never an error.
func Resolve(value any, state *models.ExecutionState) any {
	switch typed := value.(type) {
	case string:
		return resolveString(typed, state)
	case map[string]any:
		resolved := make(map[string]any, len(typed))
		for key, entry := range typed {
			resolved[key] = Resolve(entry, state)
		}

		return resolved
	case []any:
		resolved := make([]any, len(typed))
		for i, entry := range typed {
			resolved[i] = Resolve(entry, state)
		}

		return resolved
	default:
		return value
	}
}

// ResolveConfig resolves every value of a node config map.
func ResolveConfig(config map[string]any, state *models.ExecutionState) map[string]any {
	resolved := make(map[string]any, len(config))

	for key, value := range config {
		resolved[key] = Resolve(value, state)
	}

	return resolved
}

// Lookup resolves a dotted reference path ("nodeId.output.field",
// "trigger.body.email", "vars.region") against the state. The boolean
// reports whether the path was present.
func Lookup(path string, state *models.ExecutionState) (any, bool) {
	document := stateDocument(state)

	value, err := jsonpath.JsonPathLookup(document, "$."+path)
	if err != nil {
		return nil, false
	}

	return value, true
}

func resolveString(input string, state *models.ExecutionState) any {
	matches := referencePattern.FindStringSubmatch(input)
	if matches != nil && matches[0] == input {
		// Whole-value reference: preserve the referenced type.
		value, _ := Lookup(matches[1], state)

		return value
	}

	if !referencePattern.MatchString(input) {
		return input
	}

	return referencePattern.ReplaceAllStringFunc(input, func(ref string) string {
		submatch := referencePattern.FindStringSubmatch(ref)

		value, ok := Lookup(submatch[1], state)
		if !ok || value == nil {
			return ""
		}

		return stringify(value)
	})
}

// Document lays the state out as one navigable object: reserved buckets
// plus one {"output": ...} entry per completed node. It is the environment
// both for reference lookup and for expression evaluation in branch nodes.
func Document(state *models.ExecutionState) map[string]any {
	return stateDocument(state)
}

// stateDocument lays the state out for path lookup: reserved buckets plus
// one {"output": ...} entry per completed node.
func stateDocument(state *models.ExecutionState) map[string]any {
	document := map[string]any{
		models.StateBucketTrigger:   state.Trigger,
		models.StateBucketVariables: state.Variables,
		"variables":                 state.Variables,
	}

	if state.Event != nil {
		document[models.StateBucketEvent] = state.Event
	}

	for nodeID, output := range state.NodeOutputs {
		document[nodeID] = map[string]any{"output": output}
	}

	return document
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(raw)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
