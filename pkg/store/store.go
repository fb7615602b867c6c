package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	parts "github.com/goliatone/go-parts"
	"github.com/goliatone/go-parts/pkg/activity"
)

// Listener is notified with the new composite state after every dispatch that
// replaced the state object.
type Listener func(state parts.State)

// Store hosts a composite reducer and owns the composite state object.
type Store struct {
	mu        sync.RWMutex
	reducer   parts.CompositeReducer
	state     parts.State
	listeners map[int]Listener
	nextID    int
	emitter   *activity.Emitter
}

// Option configures a Store.
type Option func(*Store)

// WithEmitter attaches an activity emitter notified on every dispatch.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(s *Store) {
		s.emitter = emitter
	}
}

// New constructs a Store around reducer and computes the initial state by
// invoking it once with no previous state.
func New(reducer parts.CompositeReducer, opts ...Option) (*Store, error) {
	if reducer == nil {
		return nil, fmt.Errorf("store: reducer is required")
	}
	s := &Store{
		reducer:   reducer,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	state, err := reducer(nil, parts.Event{})
	if err != nil {
		return nil, fmt.Errorf("store: initialize: %w", err)
	}
	s.state = state

	s.emit(context.Background(), activity.BuildStateInitializedEvent(activity.DispatchEventInput{
		DispatchID: uuid.NewString(),
		Changed:    true,
	}))
	return s, nil
}

// GetState returns the current composite state object.
func (s *Store) GetState() parts.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action through the reducer. Listeners are notified only
// when the state object was replaced; an unchanged dispatch returns the same
// reference the store already held.
func (s *Store) Dispatch(ctx context.Context, action parts.Action) (parts.State, error) {
	if action == nil {
		return nil, fmt.Errorf("store: action is required")
	}

	s.mu.Lock()
	prev := s.state
	next, err := s.reducer(prev, action)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("store: dispatch %q: %w", action.ActionType(), err)
	}
	changed := !sameReference(prev, next)
	s.state = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if changed {
		for _, listener := range listeners {
			listener(next)
		}
	}
	s.emit(ctx, dispatchEvent(action, changed))
	return next, nil
}

// Subscribe registers listener and returns its unsubscribe function.
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		out = append(out, listener)
	}
	return out
}

func (s *Store) emit(ctx context.Context, event activity.Event) {
	if s.emitter == nil {
		return
	}
	// Emission failures are the hooks' concern, never the dispatch path's.
	_ = s.emitter.Emit(ctx, event)
}

func dispatchEvent(action parts.Action, changed bool) activity.Event {
	input := activity.DispatchEventInput{
		DispatchID: uuid.NewString(),
		ActionType: action.ActionType(),
		Changed:    changed,
	}
	if pa, ok := action.(parts.PartAction); ok && pa.PartTarget() != "" {
		input.Target = pa.PartTarget()
		return activity.BuildPartDispatchedEvent(input)
	}
	return activity.BuildActionDispatchedEvent(input)
}

func sameReference(a, b parts.State) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
