package parts

import (
	"fmt"
	"sort"
)

// CombineOption configures CombineReducers.
type CombineOption func(*combiner)

// CombineWithDiagnostics attaches a logger that is notified when a mapping
// entry is skipped because its reducer is nil.
func CombineWithDiagnostics(logger DiagnosticLogger) CombineOption {
	return func(c *combiner) {
		if logger == nil {
			return
		}
		c.diagnostics = logger
	}
}

// combiner holds the bookkeeping precomputed once at CombineReducers time:
// the valid keys in their fixed iteration order and their reducers. Repeated
// invocations never re-derive it.
type combiner struct {
	keys        []string
	reducers    map[string]Reducer
	diagnostics DiagnosticLogger
}

// CombineReducers merges a mapping of key to reducer into a single reducer
// over a composite object keyed the same way. Iteration order is fixed when
// the combinator is built (keys sorted) so replaying an action sequence is
// deterministic. Entries with a nil reducer are dropped; with diagnostics
// configured each one is reported before being skipped.
//
// The returned reducer preserves identity: when no key's value changes under
// sameValueZero it returns the original state object. A per-key reducer that
// returns untyped nil halts the call with an UndefinedResultError.
func CombineReducers(reducers map[string]Reducer, opts ...CombineOption) CompositeReducer {
	c := &combiner{
		reducers:    make(map[string]Reducer, len(reducers)),
		diagnostics: noopDiagnosticLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	keys := make([]string, 0, len(reducers))
	for key := range reducers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		reducer := reducers[key]
		if reducer == nil {
			c.diagnostics.LogDiagnostic(fmt.Sprintf("parts: no reducer provided for key %q, the key is ignored", key))
			continue
		}
		c.keys = append(c.keys, key)
		c.reducers[key] = reducer
	}
	return c.reduce
}

func (c *combiner) reduce(state State, action Action) (State, error) {
	previous := state
	if previous == nil {
		// The defined default is substituted at the top level only; missing
		// keys still hand nil to their reducer.
		previous = State{}
	}

	next := make(State, len(c.keys))
	changed := false
	for _, key := range c.keys {
		prev := previous[key]
		result := c.reducers[key](prev, action)
		if result == nil {
			return nil, &UndefinedResultError{Key: key, ActionType: actionTypeOf(action)}
		}
		next[key] = result
		if !sameValueZero(prev, result) {
			changed = true
		}
	}

	if !changed && state != nil {
		return state, nil
	}
	return next, nil
}
