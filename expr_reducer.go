package parts

import (
	"fmt"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprReducerOption configures an expr-backed reducer.
type ExprReducerOption func(*exprReducer)

// ExprWithProgramCache wires a ProgramCache into the expr reducer.
func ExprWithProgramCache(cache ProgramCache) ExprReducerOption {
	return func(e *exprReducer) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr reducer.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprReducerOption {
	return func(e *exprReducer) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// ExprWithEvaluatorLogger records every evaluation of the expr reducer.
func ExprWithEvaluatorLogger(logger EvaluatorLogger) ExprReducerOption {
	return func(e *exprReducer) {
		if logger == nil {
			return
		}
		e.logger = logger
	}
}

// exprReducer evaluates its expression with github.com/expr-lang/expr.
type exprReducer struct {
	expression string
	program    *exprvm.Program
	cache      ProgramCache
	registry   *FunctionRegistry
	logger     EvaluatorLogger
}

// NewExprReducer compiles expression into a Reducer. The expression sees
// `state`, `action` (type/target/payload), `type` and `payload`, plus any
// registered custom functions, and must produce the next state value.
// Compilation problems surface here; runtime failures are logged through the
// configured EvaluatorLogger and leave the previous state unchanged.
func NewExprReducer(expression string, opts ...ExprReducerOption) (Reducer, error) {
	if expression == "" {
		return nil, wrapCompileError("expr", expression, fmt.Errorf("expression must not be empty"))
	}
	e := &exprReducer{
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

func (e *exprReducer) loadOrCompile() (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(e.expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		// The builtin type() would shadow the action-type binding.
		exprlang.DisableBuiltin("type"),
	}
	for _, name := range e.registry.Names() {
		fn := name
		options = append(options, exprlang.Function(fn, func(args ...any) (any, error) {
			return e.registry.Call(fn, args...)
		}))
	}
	program, err := exprlang.Compile(e.expression, options...)
	if err != nil {
		return nil, wrapCompileError("expr", e.expression, err)
	}
	if e.cache != nil {
		e.cache.Set(e.expression, program)
	}
	return program, nil
}

func (e *exprReducer) reduce(prev any, action Action) any {
	env := reducerEnv(prev, action)
	if e.registry != nil {
		env["call"] = func(name string, args ...any) (any, error) {
			return e.registry.Call(name, args...)
		}
		for _, name := range e.registry.Names() {
			fn := name
			env[fn] = func(args ...any) (any, error) {
				return e.registry.Call(fn, args...)
			}
		}
	}

	start := time.Now()
	result, err := exprlang.Run(e.program, env)
	e.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:     "expr",
		Expr:       e.expression,
		ActionType: actionTypeOf(action),
		Duration:   time.Since(start),
		Err:        wrapEvaluationError("expr", e.expression, actionTypeOf(action), err),
	})
	if err != nil {
		return noopResult(prev)
	}
	return normalizeResult(result)
}
