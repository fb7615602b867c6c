package parts

type jsReducerConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	logger   EvaluatorLogger
}

// JSReducerOption configures a JS-backed reducer.
type JSReducerOption func(*jsReducerConfig)

// JSWithProgramCache applies a ProgramCache to the JS reducer.
func JSWithProgramCache(cache ProgramCache) JSReducerOption {
	return func(cfg *jsReducerConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS reducer.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSReducerOption {
	return func(cfg *jsReducerConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithEvaluatorLogger records every evaluation of the JS reducer.
func JSWithEvaluatorLogger(logger EvaluatorLogger) JSReducerOption {
	return func(cfg *jsReducerConfig) {
		if logger == nil {
			return
		}
		cfg.logger = logger
	}
}

func applyJSReducerOptions(opts []JSReducerOption) jsReducerConfig {
	cfg := jsReducerConfig{
		logger: noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
