package models

import (
	"reflect"

	"github.com/oliveagle/jsonpath"
)

// Match condition operators. The predicate language is deliberately small:
// a plain key/value pair requires equality at that dotted path, $eq/$ne
// check (in)equality, $exists checks presence. All fields must match
// (logical AND); there is no $or or $in. This is a fixed, documented
// contract, not an unfinished feature.
const (
	OperatorEq     = "$eq"
	OperatorNe     = "$ne"
	OperatorExists = "$exists"
)

// MatchCondition is a predicate over an incoming event payload, keyed by
// dotted field paths. A nil or empty condition matches any payload for its
// coarse bucket (a catch-all wait).
type MatchCondition map[string]any

// Matches evaluates the condition against a payload. Missing paths never
// error; they compare as absent.
func (c MatchCondition) Matches(payload map[string]any) bool {
	if len(c) == 0 {
		return true
	}

	for path, expected := range c {
		value, present := lookupPath(payload, path)

		if !matchField(value, present, expected) {
			return false
		}
	}

	return true
}

func matchField(value any, present bool, expected any) bool {
	operators, ok := expected.(map[string]any)
	if !ok {
		// Plain key/value pair: equality at the path.
		return present && valuesEqual(value, expected)
	}

	for operator, operand := range operators {
		switch operator {
		case OperatorExists:
			want, _ := operand.(bool)
			if present != want {
				return false
			}
		case OperatorEq:
			if !present || !valuesEqual(value, operand) {
				return false
			}
		case OperatorNe:
			if present && valuesEqual(value, operand) {
				return false
			}
		default:
			// Unknown operators never match rather than silently passing.
			return false
		}
	}

	return true
}

// lookupPath resolves a dotted path against the payload.
func lookupPath(payload map[string]any, path string) (any, bool) {
	if payload == nil {
		return nil, false
	}

	value, err := jsonpath.JsonPathLookup(payload, "$."+path)
	if err != nil {
		return nil, false
	}

	return value, true
}

// valuesEqual compares two values with JSON numeric semantics, so a 1 from
// a stored condition equals the 1.0 a decoded payload carries.
func valuesEqual(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
