package parts

import "time"

// DiagnosticLogger receives non-fatal construction diagnostics, such as a
// reducer mapping entry whose value is nil. Diagnostics are opt-in: supply a
// logger through CombineWithDiagnostics or WithDiagnostics instead of relying
// on any ambient build-mode flag.
type DiagnosticLogger interface {
	LogDiagnostic(message string)
}

// DiagnosticLoggerFunc adapts a function to DiagnosticLogger.
type DiagnosticLoggerFunc func(string)

// LogDiagnostic implements DiagnosticLogger.
func (f DiagnosticLoggerFunc) LogDiagnostic(message string) {
	if f != nil {
		f(message)
	}
}

type noopDiagnosticLogger struct{}

func (noopDiagnosticLogger) LogDiagnostic(string) {}

// Dispatch branch labels reported on DispatchLogEvent and Transition records.
const (
	BranchInit  = "init"
	BranchPart  = "part"
	BranchOther = "other"
	BranchNoop  = "noop"
)

// DispatchLogEvent describes one pass through a composite reducer.
type DispatchLogEvent struct {
	ActionType string
	Branch     string
	Target     string
	Owner      string
	Changed    bool
	Duration   time.Duration
	Err        error
}

// DispatchLogger records dispatch events emitted by reducers built with
// NewReducer.
type DispatchLogger interface {
	LogDispatch(DispatchLogEvent)
}

// DispatchLoggerFunc adapts a function to DispatchLogger.
type DispatchLoggerFunc func(DispatchLogEvent)

// LogDispatch implements DispatchLogger.
func (f DispatchLoggerFunc) LogDispatch(event DispatchLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopDispatchLogger struct{}

func (noopDispatchLogger) LogDispatch(DispatchLogEvent) {}
