package parts

import (
	"errors"
	"fmt"
)

// EvaluationError captures expression-engine metadata alongside the
// originating error.
type EvaluationError struct {
	Engine     string
	Expr       string
	ActionType string
	Err        error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("parts: %s reducer %s action=%q: %v", e.Engine, describeExpression(e.Expr), e.ActionType, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapCompileError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Err: err}
}

func wrapEvaluationError(engine, expr, actionType string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.ActionType == "" {
			evalErr.ActionType = actionType
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:     engine,
		Expr:       expr,
		ActionType: actionType,
		Err:        err,
	}
}
