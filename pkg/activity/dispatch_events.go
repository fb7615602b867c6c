package activity

import "strings"

// DispatchEventInput describes the common fields for dispatch lifecycle
// events emitted by a hosting store.
type DispatchEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	DispatchID string
	ActionType string
	Target     string
	Owner      string
	Changed    bool
	Metadata   map[string]any
}

// BuildStateInitializedEvent constructs a normalized event for the lazy first
// state computation.
func BuildStateInitializedEvent(input DispatchEventInput) Event {
	return buildDispatchEvent("state.initialized", "state", input)
}

// BuildPartDispatchedEvent constructs a normalized event for a part action
// routed through the registry.
func BuildPartDispatchedEvent(input DispatchEventInput) Event {
	return buildDispatchEvent("state.part.dispatched", "part", input)
}

// BuildActionDispatchedEvent constructs a normalized event for a non-part
// action handled by the other-reducer path.
func BuildActionDispatchedEvent(input DispatchEventInput) Event {
	return buildDispatchEvent("state.action.dispatched", "action", input)
}

func buildDispatchEvent(verb, objectType string, input DispatchEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.ActionType != "" {
		metadata = ensureMetadata(metadata)
		metadata["action_type"] = input.ActionType
	}
	if input.Owner != "" {
		metadata = ensureMetadata(metadata)
		metadata["owner"] = input.Owner
	}
	metadata = ensureMetadata(metadata)
	metadata["changed"] = input.Changed

	objectID := strings.TrimSpace(input.Target)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Owner)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.ActionType)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		DispatchID: strings.TrimSpace(input.DispatchID),
		Metadata:   metadata,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
