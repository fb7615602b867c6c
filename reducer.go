package parts

import (
	"fmt"
	"time"
)

// Config assembles the inputs for NewReducer.
//
// Parts is the ordered collection used to compute initial state; owner-key
// collisions are resolved by list order (later parts win). Registry routes
// part actions and is derived from Parts when nil. Other optionally merges a
// non-part reducer into the composite: either a CompositeReducer over the
// full state or a map[string]Reducer combined through CombineReducers.
type Config struct {
	Parts    []Part
	Registry PartMap
	Other    any
}

type reducerConfig struct {
	diagnostics DiagnosticLogger
	dispatchLog DispatchLogger
	recorder    TransitionRecorder
}

// ReducerOption configures the reducer returned by NewReducer.
type ReducerOption func(*reducerConfig)

// WithDiagnostics routes construction warnings (skipped reducer-map entries)
// to logger.
func WithDiagnostics(logger DiagnosticLogger) ReducerOption {
	return func(cfg *reducerConfig) {
		if logger == nil {
			return
		}
		cfg.diagnostics = logger
	}
}

// WithDispatchLogger records every pass through the built reducer.
func WithDispatchLogger(logger DispatchLogger) ReducerOption {
	return func(cfg *reducerConfig) {
		if logger == nil {
			cfg.dispatchLog = noopDispatchLogger{}
			return
		}
		cfg.dispatchLog = logger
	}
}

// WithTransitionRecorder records provenance for every applied transition.
func WithTransitionRecorder(recorder TransitionRecorder) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.recorder = recorder
	}
}

// NewReducer composes the part registry dispatch with the optional other
// reducer into a single top-level state-transition function. Construction
// fails with an InvalidOtherReducerError when Config.Other is neither a
// composite reducer function nor a reducer mapping.
func NewReducer(cfg Config, opts ...ReducerOption) (CompositeReducer, error) {
	rc := reducerConfig{
		diagnostics: noopDiagnosticLogger{},
		dispatchLog: noopDispatchLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&rc)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewPartMap(cfg.Parts...)
	}

	other, err := normalizeOtherReducer(cfg.Other, rc.diagnostics)
	if err != nil {
		return nil, err
	}

	root := &rootReducer{
		parts:    append([]Part(nil), cfg.Parts...),
		registry: registry,
		other:    other,
		log:      rc.dispatchLog,
		recorder: rc.recorder,
	}
	return root.reduce, nil
}

// InitialState produces composite state by invoking every part's reducer once
// with no previous state and the empty action placeholder, assigning each
// result under the part's owner key in list order. Owner-key collisions are
// not deduplicated; later parts overwrite earlier ones.
func InitialState(list []Part) State {
	state := make(State, len(list))
	for _, part := range list {
		if !part.Stateful() {
			continue
		}
		state[part.Owner] = part.Reducer(nil, emptyAction{})
	}
	return state
}

func normalizeOtherReducer(other any, diagnostics DiagnosticLogger) (CompositeReducer, error) {
	switch v := other.(type) {
	case nil:
		return nil, nil
	case CompositeReducer:
		if v == nil {
			return nil, nil
		}
		return v, nil
	case func(State, Action) (State, error):
		if v == nil {
			return nil, nil
		}
		return v, nil
	case map[string]Reducer:
		return CombineReducers(v, CombineWithDiagnostics(diagnostics)), nil
	default:
		return nil, &InvalidOtherReducerError{Received: fmt.Sprintf("%T", other)}
	}
}

type rootReducer struct {
	parts    []Part
	registry PartMap
	other    CompositeReducer
	log      DispatchLogger
	recorder TransitionRecorder
}

func (r *rootReducer) reduce(state State, action Action) (State, error) {
	start := time.Now()
	next, event, err := r.step(state, action)
	event.ActionType = actionTypeOf(action)
	event.Duration = time.Since(start)
	event.Err = err

	r.log.LogDispatch(event)
	if r.recorder != nil && err == nil {
		r.recorder.RecordTransition(Transition{
			ActionType: event.ActionType,
			Branch:     event.Branch,
			Target:     event.Target,
			Owner:      event.Owner,
			Changed:    event.Changed,
		})
	}
	return next, err
}

func (r *rootReducer) step(state State, action Action) (State, DispatchLogEvent, error) {
	if state == nil {
		next, err := r.initialize()
		return next, DispatchLogEvent{Branch: BranchInit, Changed: err == nil}, err
	}

	if pa, ok := action.(PartAction); ok && pa.PartTarget() != "" {
		target := pa.PartTarget()
		event := DispatchLogEvent{Branch: BranchPart, Target: target}
		part, ok := r.registry.Lookup(target)
		if !ok {
			return nil, event, &UnregisteredPartError{Target: target}
		}
		event.Owner = part.Owner

		prev := state[part.Owner]
		result := part.Reducer(prev, action)
		if result == nil {
			return nil, event, &UndefinedResultError{Key: part.Owner, ActionType: actionTypeOf(action)}
		}
		if sameValueZero(prev, result) {
			return state, event, nil
		}
		next := cloneState(state)
		next[part.Owner] = result
		event.Changed = true
		return next, event, nil
	}

	if r.other == nil {
		return state, DispatchLogEvent{Branch: BranchNoop}, nil
	}

	event := DispatchLogEvent{Branch: BranchOther}
	out, err := r.other(state, action)
	if err != nil {
		return nil, event, err
	}
	if sameState(out, state) {
		return state, event, nil
	}
	next := cloneState(state)
	for key, value := range out {
		next[key] = value
	}
	event.Changed = true
	return next, event, nil
}

// initialize computes the lazy first state: every part's contribution merged
// with the other reducer's own initialization output. The other reducer wins
// on owner-key collisions.
func (r *rootReducer) initialize() (State, error) {
	state := InitialState(r.parts)
	for key, value := range state {
		if value == nil {
			return nil, &UndefinedResultError{Key: key}
		}
	}
	if r.other == nil {
		return state, nil
	}
	out, err := r.other(nil, emptyAction{})
	if err != nil {
		return nil, err
	}
	for key, value := range out {
		state[key] = value
	}
	return state, nil
}
