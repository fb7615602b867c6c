package parts

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func counterPart() Part {
	return NewPart("counter", func(prev any, action Action) any {
		n, _ := prev.(int)
		if pa, ok := action.(PartAction); ok && pa.PartTarget() == "counter" {
			return n + 1
		}
		if prev == nil {
			return 0
		}
		return prev
	})
}

func TestGetInitialState(t *testing.T) {
	state := InitialState([]Part{counterPart()})
	if !reflect.DeepEqual(state, State{"counter": 0}) {
		t.Fatalf("expected {counter: 0}, got %v", state)
	}
}

func TestInitialStateOwnerCollisionLastWins(t *testing.T) {
	first := NewPart("first", func(any, Action) any { return "first" }, WithOwner("shared"))
	second := NewPart("second", func(any, Action) any { return "second" }, WithOwner("shared"))

	state := InitialState([]Part{first, second})
	if state["shared"] != "second" {
		t.Fatalf("expected the later part to win the owner key, got %v", state["shared"])
	}
}

func TestReducerCounterScenario(t *testing.T) {
	reducer, err := NewReducer(Config{Parts: []Part{counterPart()}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := reducer(nil, Event{Type: "whatever"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial["counter"] != 0 {
		t.Fatalf("expected counter 0, got %v", initial["counter"])
	}

	next, err := reducer(initial, PartEvent{Target: "counter", Type: "increment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next["counter"] != 1 {
		t.Fatalf("expected counter 1, got %v", next["counter"])
	}
	if sameState(initial, next) {
		t.Fatal("expected a new state object after a change")
	}

	same, err := reducer(next, Event{Type: "noop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameState(next, same) {
		t.Fatal("expected a non-part action to be a no-op returning the same reference")
	}
}

func TestReducerPartNoopPreservesIdentity(t *testing.T) {
	stable := NewPart("stable", passthroughReducer)
	reducer, err := NewReducer(Config{Parts: []Part{stable}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := State{"stable": None}
	next, err := reducer(state, PartEvent{Target: "stable", Type: "poke"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameState(state, next) {
		t.Fatal("expected identity to be preserved when the part did not change")
	}
}

func TestReducerSingleKeyReplacement(t *testing.T) {
	uiState := map[string]any{"open": false}
	ui := NewPart("ui", func(prev any, _ Action) any {
		if prev == nil {
			return uiState
		}
		return prev
	})
	reducer, err := NewReducer(Config{Parts: []Part{counterPart(), ui}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, err := reducer(initial, PartEvent{Target: "counter", Type: "increment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next["counter"] != 1 {
		t.Fatalf("expected the target key to change, got %v", next["counter"])
	}
	if !sameValueZero(initial["ui"], next["ui"]) {
		t.Fatal("expected every untouched key to keep its previous reference")
	}
}

func TestReducerUnregisteredPartIsFatal(t *testing.T) {
	reducer, err := NewReducer(Config{Parts: []Part{counterPart()}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = reducer(state, PartEvent{Target: "ghost", Type: "boo"})
	if err == nil {
		t.Fatal("expected an error for an unregistered part target")
	}
	var unregistered *UnregisteredPartError
	if !errors.As(err, &unregistered) {
		t.Fatalf("expected UnregisteredPartError, got %T", err)
	}
	if unregistered.Target != "ghost" {
		t.Fatalf("expected the missing target, got %q", unregistered.Target)
	}
	if !strings.Contains(err.Error(), "Config.Parts") {
		t.Fatalf("expected guidance to register the part, got %q", err.Error())
	}
}

func TestReducerPartUndefinedResultIsFatal(t *testing.T) {
	broken := NewPart("broken", func(any, Action) any { return nil })
	reducer, err := NewReducer(Config{Parts: []Part{broken}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = reducer(State{"broken": 1}, PartEvent{Target: "broken", Type: "boom"})
	var undefined *UndefinedResultError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedResultError, got %v", err)
	}
	if undefined.Key != "broken" {
		t.Fatalf("expected the owner key, got %q", undefined.Key)
	}
}

func TestReducerOtherReducerMapScenario(t *testing.T) {
	x := NewPart("x", func(prev any, _ Action) any {
		if prev == nil {
			return 0
		}
		return prev
	})
	reducer, err := NewReducer(Config{
		Parts: []Part{x},
		Other: map[string]Reducer{
			"ui": func(prev any, _ Action) any {
				if prev == nil {
					return map[string]any{"open": false}
				}
				return prev
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial["x"] != 0 {
		t.Fatalf("expected x 0, got %v", initial["x"])
	}
	ui, ok := initial["ui"].(map[string]any)
	if !ok || ui["open"] != false {
		t.Fatalf("expected ui to be initialized, got %v", initial["ui"])
	}

	next, err := reducer(initial, Event{Type: "tick"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameState(initial, next) {
		t.Fatal("expected root reference to be unchanged when the other slice did not change")
	}
}

func TestReducerOtherReducerFunctionMerge(t *testing.T) {
	other := func(state State, action Action) (State, error) {
		if state == nil {
			return State{"mode": "idle"}, nil
		}
		if action.ActionType() == "activate" {
			return State{"mode": "active"}, nil
		}
		return state, nil
	}
	reducer, err := NewReducer(Config{Parts: []Part{counterPart()}, Other: other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial["mode"] != "idle" || initial["counter"] != 0 {
		t.Fatalf("expected merged initial state, got %v", initial)
	}

	next, err := reducer(initial, Event{Type: "activate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sameState(initial, next) {
		t.Fatal("expected a new state object when the other slice changed")
	}
	if next["mode"] != "active" {
		t.Fatalf("expected mode active, got %v", next["mode"])
	}
	if next["counter"] != 0 {
		t.Fatal("expected part keys to survive the other-reducer merge")
	}
}

func TestReducerInitializationOtherWinsOnCollision(t *testing.T) {
	shared := NewPart("shared", func(any, Action) any { return "from-part" })
	reducer, err := NewReducer(Config{
		Parts: []Part{shared},
		Other: map[string]Reducer{
			"shared": func(prev any, _ Action) any {
				if prev == nil {
					return "from-other"
				}
				return prev
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state["shared"] != "from-other" {
		t.Fatalf("expected the other reducer to win the collision, got %v", state["shared"])
	}
}

func TestReducerInitializationIdempotence(t *testing.T) {
	build := func() CompositeReducer {
		reducer, err := NewReducer(Config{
			Parts: []Part{counterPart()},
			Other: map[string]Reducer{
				"ui": func(prev any, _ Action) any {
					if prev == nil {
						return map[string]any{"open": false}
					}
					return prev
				},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return reducer
	}

	reducer := build()
	first, err := reducer(nil, Event{Type: "alpha"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := reducer(nil, Event{Type: "omega"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("initial state must not depend on the triggering action: %v vs %v", first, second)
	}
}

func TestReducerDeterministicReplay(t *testing.T) {
	actions := []Action{
		PartEvent{Target: "counter", Type: "increment"},
		Event{Type: "noop"},
		PartEvent{Target: "counter", Type: "increment"},
		Event{Type: "activate"},
	}

	replay := func() State {
		reducer, err := NewReducer(Config{
			Parts: []Part{counterPart()},
			Other: map[string]Reducer{
				"mode": func(prev any, action Action) any {
					if prev == nil {
						return "idle"
					}
					if action.ActionType() == "activate" {
						return "active"
					}
					return prev
				},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		state, err := reducer(nil, Event{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, action := range actions {
			state, err = reducer(state, action)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		return state
	}

	first := replay()
	second := replay()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected replay to be deterministic: %v vs %v", first, second)
	}
	if first["counter"] != 2 || first["mode"] != "active" {
		t.Fatalf("unexpected final state: %v", first)
	}
}

func TestNewReducerRejectsInvalidOtherReducer(t *testing.T) {
	_, err := NewReducer(Config{Parts: []Part{counterPart()}, Other: 42})
	if err == nil {
		t.Fatal("expected construction to fail for an invalid other reducer")
	}
	var invalid *InvalidOtherReducerError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOtherReducerError, got %T", err)
	}
	if invalid.Received != "int" {
		t.Fatalf("expected the received type in the error, got %q", invalid.Received)
	}
}

func TestReducerDispatchLoggerAndRecorder(t *testing.T) {
	var events []DispatchLogEvent
	var transitions []Transition
	reducer, err := NewReducer(
		Config{Parts: []Part{counterPart()}},
		WithDispatchLogger(DispatchLoggerFunc(func(event DispatchLogEvent) {
			events = append(events, event)
		})),
		WithTransitionRecorder(TransitionRecorderFunc(func(transition Transition) {
			transitions = append(transitions, transition)
		})),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := reducer(nil, Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = reducer(state, PartEvent{Target: "counter", Type: "increment"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err = reducer(state, Event{Type: "noop"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 dispatch events, got %d", len(events))
	}
	wantBranches := []string{BranchInit, BranchPart, BranchNoop}
	for i, want := range wantBranches {
		if events[i].Branch != want {
			t.Fatalf("expected branch %q at %d, got %q", want, i, events[i].Branch)
		}
	}
	if !events[1].Changed || events[1].Target != "counter" || events[1].Owner != "counter" {
		t.Fatalf("unexpected part dispatch event: %+v", events[1])
	}

	if len(transitions) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(transitions))
	}
	payload, err := transitions[1].ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := TransitionFromJSON(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != transitions[1] {
		t.Fatalf("expected transition JSON roundtrip to be lossless: %+v vs %+v", decoded, transitions[1])
	}
}
