package parts

import "github.com/goliatone/go-parts/internal/hydrate"

// stateBinding is the value expression environments see as `state`. The None
// sentinel is surfaced as nil so expressions can test for emptiness naturally.
func stateBinding(prev any) any {
	if _, ok := prev.(noValue); ok {
		return nil
	}
	return prev
}

// actionBinding is the value expression environments see as `action`.
func actionBinding(action Action) map[string]any {
	return map[string]any{
		"type":    actionTypeOf(action),
		"target":  actionTargetOf(action),
		"payload": actionPayloadOf(action),
	}
}

func reducerEnv(prev any, action Action) map[string]any {
	return map[string]any{
		"state":   stateBinding(prev),
		"action":  actionBinding(action),
		"type":    actionTypeOf(action),
		"payload": actionPayloadOf(action),
	}
}

// noopResult is what an expression reducer hands back when it must decline to
// change state, typically after a runtime evaluation failure.
func noopResult(prev any) any {
	if prev == nil {
		return None
	}
	return prev
}

// normalizeResult maps an engine's output onto the reducer contract: explicit
// null becomes the None sentinel and dynamic container types are normalized
// into plain Go shapes. Values that need no conversion keep their identity.
func normalizeResult(value any) any {
	if value == nil {
		return None
	}
	return hydrate.Normalize(value)
}
