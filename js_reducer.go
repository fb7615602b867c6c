//go:build js_eval

package parts

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// jsReducer evaluates its expression with github.com/dop251/goja.
type jsReducer struct {
	expression string
	program    *goja.Program
	cache      ProgramCache
	registry   *FunctionRegistry
	logger     EvaluatorLogger
}

// NewJSReducer compiles a JavaScript expression into a Reducer. The
// expression sees `state` and `action` (type/target/payload) plus registered
// custom functions, and must produce the next state value. A JS null result
// maps to the None sentinel; an undefined result violates the reducer
// contract.
func NewJSReducer(expression string, opts ...JSReducerOption) (Reducer, error) {
	if expression == "" {
		return nil, wrapCompileError("js", expression, fmt.Errorf("expression must not be empty"))
	}
	cfg := applyJSReducerOptions(opts)
	e := &jsReducer{
		expression: expression,
		cache:      cfg.cache,
		registry:   cfg.registry,
		logger:     cfg.logger,
	}
	program, err := e.loadOrCompile()
	if err != nil {
		return nil, err
	}
	e.program = program
	return e.reduce, nil
}

func (e *jsReducer) loadOrCompile() (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(e.expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(e.expression), false)
	if err != nil {
		return nil, wrapCompileError("js", e.expression, err)
	}
	if e.cache != nil {
		e.cache.Set(e.expression, program)
	}
	return program, nil
}

func (e *jsReducer) reduce(prev any, action Action) any {
	vm := goja.New()
	vm.Set("state", stateBinding(prev))
	vm.Set("action", actionBinding(action))
	vm.Set("type", actionTypeOf(action))
	vm.Set("payload", actionPayloadOf(action))
	if e.registry != nil {
		vm.Set("call", func(name string, args ...any) (any, error) {
			return e.registry.Call(name, args...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			vm.Set(fn, func(args ...any) (any, error) {
				return e.registry.Call(fn, args...)
			})
		}
	}

	start := time.Now()
	value, err := vm.RunProgram(e.program)
	e.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:     "js",
		Expr:       e.expression,
		ActionType: actionTypeOf(action),
		Duration:   time.Since(start),
		Err:        wrapEvaluationError("js", e.expression, actionTypeOf(action), err),
	})
	if err != nil {
		return noopResult(prev)
	}
	if goja.IsUndefined(value) {
		// The missing-value contract violation, surfaced upstream.
		return nil
	}
	if goja.IsNull(value) {
		return None
	}
	return normalizeResult(value.Export())
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

func jsReducerAvailable() bool {
	return true
}
