package parts

// State is the composite state object assembled from every part's owner key
// plus any keys contributed by other reducers. It is only ever replaced, never
// mutated in place, by the reducers this package builds.
type State map[string]any

// Action describes a dispatched event. Implementations that also satisfy
// PartAction are routed to a single registered part; everything else flows
// through the other-reducer path.
type Action interface {
	ActionType() string
}

// PartAction targets one registered part by its target identifier.
type PartAction interface {
	Action
	PartTarget() string
}

// Payloader exposes an optional payload carried by an action. Expression
// reducers bind it into their evaluation environment.
type Payloader interface {
	ActionPayload() any
}

// Event is a plain action with an optional payload.
type Event struct {
	Type    string
	Payload any
}

// ActionType implements Action.
func (e Event) ActionType() string { return e.Type }

// ActionPayload implements Payloader.
func (e Event) ActionPayload() any { return e.Payload }

// PartEvent is an action addressed to the part registered under Target.
type PartEvent struct {
	Target  string
	Type    string
	Payload any
}

// ActionType implements Action.
func (e PartEvent) ActionType() string { return e.Type }

// PartTarget implements PartAction.
func (e PartEvent) PartTarget() string { return e.Target }

// ActionPayload implements Payloader.
func (e PartEvent) ActionPayload() any { return e.Payload }

// emptyAction is the placeholder used when computing initial state so that
// initialization never depends on the triggering action.
type emptyAction struct{}

func (emptyAction) ActionType() string { return "" }

// IsPartAction reports whether action targets a registered part.
func IsPartAction(action Action) bool {
	pa, ok := action.(PartAction)
	return ok && pa.PartTarget() != ""
}

// Reducer computes the next value of one state slice from its previous value
// and an action. A nil prev means "no previous state" (the initialization
// call). Returning untyped nil violates the contract; a reducer that wants to
// express emptiness returns None, and one that wants a no-op returns prev.
type Reducer func(prev any, action Action) any

// CompositeReducer is the top-level state-transition contract consumed by a
// hosting store. A nil state requests initialization. Fatal contract
// violations surface through the error return.
type CompositeReducer func(state State, action Action) (State, error)

// noValue is the type of the None sentinel.
type noValue struct{}

func (noValue) String() string { return "<none>" }

// None is the explicit "no value" sentinel. Use it where a slice of state is
// deliberately empty; untyped nil is reserved for the missing-value contract
// violation.
var None noValue

func actionTypeOf(action Action) string {
	if action == nil {
		return ""
	}
	return action.ActionType()
}

func actionPayloadOf(action Action) any {
	if p, ok := action.(Payloader); ok {
		return p.ActionPayload()
	}
	return nil
}

func actionTargetOf(action Action) string {
	if pa, ok := action.(PartAction); ok {
		return pa.PartTarget()
	}
	return ""
}

func cloneState(state State) State {
	next := make(State, len(state)+1)
	for key, value := range state {
		next[key] = value
	}
	return next
}
