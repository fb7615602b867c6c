package parts

import "fmt"

// UndefinedResultError reports a reducer that produced no value for its key.
// The reducer contract requires a defined result on every invocation: return
// the unchanged previous value for a no-op, or None for deliberate emptiness.
type UndefinedResultError struct {
	Key        string
	ActionType string
}

func (e *UndefinedResultError) Error() string {
	action := e.ActionType
	if action == "" {
		action = "<unknown>"
	}
	return fmt.Sprintf(
		"parts: reducer for key %q returned no value while handling action %q; return the previous state (or parts.None for an empty slice) instead",
		e.Key, action,
	)
}

// UnregisteredPartError reports a part action whose target id is absent from
// the registry built at reducer construction time.
type UnregisteredPartError struct {
	Target string
}

func (e *UnregisteredPartError) Error() string {
	return fmt.Sprintf(
		"parts: no part registered for target %q; add the part to Config.Parts when building the reducer",
		e.Target,
	)
}

// InvalidOtherReducerError reports an other-reducer construction argument that
// is neither a composite reducer function nor a reducer mapping.
type InvalidOtherReducerError struct {
	Received string
}

func (e *InvalidOtherReducerError) Error() string {
	return fmt.Sprintf(
		"parts: other reducer must be a CompositeReducer or a map[string]Reducer, received %s",
		e.Received,
	)
}
