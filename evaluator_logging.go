package parts

import "time"

// EvaluatorLogEvent describes one expression-reducer evaluation attempt.
type EvaluatorLogEvent struct {
	Engine     string
	Expr       string
	ActionType string
	Duration   time.Duration
	Err        error
}

// EvaluatorLogger records expression-reducer evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}
