//go:build !js_eval

package parts

import "fmt"

// NewJSReducer is unavailable without the js_eval build tag.
func NewJSReducer(expression string, opts ...JSReducerOption) (Reducer, error) {
	_ = applyJSReducerOptions(opts)
	return nil, fmt.Errorf("parts: js reducers require the js_eval build tag")
}

func jsReducerAvailable() bool {
	return false
}
