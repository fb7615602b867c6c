package parts

import (
	"fmt"
	"time"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELReducerOption configures a CEL-backed reducer.
type CELReducerOption func(*celReducer)

// CELWithProgramCache wires a ProgramCache into the CEL reducer.
func CELWithProgramCache(cache ProgramCache) CELReducerOption {
	return func(e *celReducer) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL reducer.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELReducerOption {
	return func(e *celReducer) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// CELWithEvaluatorLogger records every evaluation of the CEL reducer.
func CELWithEvaluatorLogger(logger EvaluatorLogger) CELReducerOption {
	return func(e *celReducer) {
		if logger == nil {
			return
		}
		e.logger = logger
	}
}

// celReducer evaluates its expression with github.com/google/cel-go.
type celReducer struct {
	expression string
	program    celgo.Program
	cache      ProgramCache
	registry   *FunctionRegistry
	logger     EvaluatorLogger
}

// NewCELReducer compiles expression into a Reducer. The expression sees the
// dyn variables `state` and `action` (type/target/payload) plus a `call`
// function when a registry is configured, and must produce the next state
// value. Runtime failures are logged and leave the previous state unchanged.
func NewCELReducer(expression string, opts ...CELReducerOption) (Reducer, error) {
	if expression == "" {
		return nil, wrapCompileError("cel", expression, fmt.Errorf("expression must not be empty"))
	}
	e := &celReducer{
		expression: expression,
		logger:     noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	program, err := e.loadOrCompile()
	if err != nil {
		return nil, err
	}
	e.program = program
	return e.reduce, nil
}

func (e *celReducer) loadOrCompile() (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(e.expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, wrapCompileError("cel", e.expression, err)
	}
	ast, issues := env.Parse(e.expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapCompileError("cel", e.expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapCompileError("cel", e.expression, issues.Err())
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, wrapCompileError("cel", e.expression, err)
	}
	if e.cache != nil {
		e.cache.Set(e.expression, program)
	}
	return program, nil
}

func (e *celReducer) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("state", celgo.DynType),
		celgo.Variable("action", celgo.DynType),
	}
	if e.registry != nil {
		// CEL overloads are fixed arity; declare one per supported
		// argument count, all sharing the variadic binding.
		argTypes := []*celgo.Type{celgo.StringType}
		overloads := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
		for i := 0; i <= maxCallArgs; i++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", i),
				append([]*celgo.Type(nil), argTypes...),
				celgo.DynType,
				celgo.FunctionBinding(e.callBinding()),
			))
			argTypes = append(argTypes, celgo.DynType)
		}
		opts = append(opts, celgo.Function("call", overloads...))
	}
	return celgo.NewEnv(opts...)
}

func (e *celReducer) reduce(prev any, action Action) any {
	activation := map[string]any{
		"state":  stateBinding(prev),
		"action": actionBinding(action),
	}

	start := time.Now()
	out, _, err := e.program.Eval(activation)
	e.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:     "cel",
		Expr:       e.expression,
		ActionType: actionTypeOf(action),
		Duration:   time.Since(start),
		Err:        wrapEvaluationError("cel", e.expression, actionTypeOf(action), err),
	})
	if err != nil {
		return noopResult(prev)
	}
	return normalizeResult(celNative(out))
}

// maxCallArgs bounds how many arguments a CEL expression may pass to a
// registered function after the function name.
const maxCallArgs = 4

func (e *celReducer) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("parts: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("parts: call requires a function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("parts: call name must be a string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

// celNative unwraps CEL container values into plain Go maps and slices.
func celNative(val ref.Val) any {
	if val == nil {
		return nil
	}
	if val == types.NullValue {
		return nil
	}
	switch v := val.Value().(type) {
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			out[fmt.Sprint(key.Value())] = celNative(entry)
		}
		return out
	case []ref.Val:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = celNative(entry)
		}
		return out
	default:
		return v
	}
}
