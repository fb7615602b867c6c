package parts

import "encoding/json"

// Transition captures provenance for one applied dispatch: which branch
// handled the action, the owner key it touched, and whether the composite
// state object was replaced.
type Transition struct {
	ActionType string `json:"action_type"`
	Branch     string `json:"branch"`
	Target     string `json:"target,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Changed    bool   `json:"changed"`
}

// ToJSON serialises the transition for logging or transport helpers.
func (t Transition) ToJSON() ([]byte, error) {
	type alias Transition
	return json.Marshal(alias(t))
}

// TransitionFromJSON deserialises a payload previously produced by ToJSON.
func TransitionFromJSON(payload []byte) (Transition, error) {
	type alias Transition
	var transition alias
	if err := json.Unmarshal(payload, &transition); err != nil {
		return Transition{}, err
	}
	return Transition(transition), nil
}

// TransitionRecorder observes every successfully applied transition.
type TransitionRecorder interface {
	RecordTransition(Transition)
}

// TransitionRecorderFunc adapts a function to TransitionRecorder.
type TransitionRecorderFunc func(Transition)

// RecordTransition implements TransitionRecorder.
func (f TransitionRecorderFunc) RecordTransition(transition Transition) {
	if f != nil {
		f(transition)
	}
}
