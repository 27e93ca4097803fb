package reactive

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args gives a callback read access to its inputs and state properties
type Args struct {
	values map[Prop]any
}

func newArgs(state State, cb *Callback) Args {
	values := make(map[Prop]any, len(cb.Inputs)+len(cb.State))
	for _, p := range cb.Inputs {
		values[p] = state[p]
	}
	for _, p := range cb.State {
		values[p] = state[p]
	}
	return Args{values: values}
}

// NewArgs builds Args directly, mostly for calling a Func in tests
func NewArgs(values map[Prop]any) Args {
	return Args{values: values}
}

// Get returns the raw value
func (a Args) Get(p Prop) any {
	return a.values[p]
}

// String returns the value as text, "" when unset
func (a Args) String(p Prop) string {
	switch v := a.values[p].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value as an int, nil when unset or not a whole number.
// JSON decoding hands numbers over as float64.
func (a Args) Int(p Prop) *int {
	var n int
	switch v := a.values[p].(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if math.IsNaN(v) || v != math.Trunc(v) {
			return nil
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

// Strings returns a multi-value property. A single string becomes a
// one-element slice.
func (a Args) Strings(p Prop) []string {
	switch v := a.values[p].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Map returns an object-valued property such as a hover payload
func (a Args) Map(p Prop) map[string]any {
	m, _ := a.values[p].(map[string]any)
	return m
}
