package parts

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-parts/internal/hydrate"
)

// Expression engines a manifest part may declare.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Manifest declares parts whose reducers are expression backed, letting state
// composition be driven from configuration instead of Go code.
type Manifest struct {
	Parts []ManifestPart `yaml:"parts"`
}

// ManifestPart declares a single expression-backed part.
type ManifestPart struct {
	Name       string `yaml:"name"`
	Owner      string `yaml:"owner,omitempty"`
	Engine     string `yaml:"engine"`
	Expression string `yaml:"expression"`
	Initial    any    `yaml:"initial,omitempty"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(payload []byte) (Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parts: manifest decode: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// Validate checks that every declared part has a unique name, a supported
// engine and an expression.
func (m Manifest) Validate() error {
	if len(m.Parts) == 0 {
		return errors.New("parts: manifest declares no parts")
	}
	seen := make(map[string]struct{}, len(m.Parts))
	for i, declared := range m.Parts {
		if declared.Name == "" {
			return fmt.Errorf("parts: manifest part %d is missing a name", i)
		}
		if _, ok := seen[declared.Name]; ok {
			return fmt.Errorf("parts: manifest part %q declared twice", declared.Name)
		}
		seen[declared.Name] = struct{}{}
		switch declared.Engine {
		case EngineExpr, EngineCEL, EngineJS:
		default:
			return fmt.Errorf("parts: manifest part %q uses unsupported engine %q", declared.Name, declared.Engine)
		}
		if declared.Expression == "" {
			return fmt.Errorf("parts: manifest part %q is missing an expression", declared.Name)
		}
	}
	return nil
}

type manifestConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	logger   EvaluatorLogger
}

// ManifestOption shares engine plumbing across every part a manifest builds.
type ManifestOption func(*manifestConfig)

// ManifestWithProgramCache shares a compiled-program cache across manifest
// parts.
func ManifestWithProgramCache(cache ProgramCache) ManifestOption {
	return func(cfg *manifestConfig) {
		cfg.cache = cache
	}
}

// ManifestWithFunctionRegistry exposes registered functions to every manifest
// part's expression.
func ManifestWithFunctionRegistry(registry *FunctionRegistry) ManifestOption {
	return func(cfg *manifestConfig) {
		cfg.registry = registry
	}
}

// ManifestWithEvaluatorLogger records evaluations of every manifest part.
func ManifestWithEvaluatorLogger(logger EvaluatorLogger) ManifestOption {
	return func(cfg *manifestConfig) {
		cfg.logger = logger
	}
}

// BuildParts compiles each declared expression and returns the resulting Part
// descriptors in declaration order, ready for NewReducer. Each reducer is
// seeded with the declared initial value on its first invocation.
func (m Manifest) BuildParts(opts ...ManifestOption) ([]Part, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cfg := manifestConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	built := make([]Part, 0, len(m.Parts))
	for _, declared := range m.Parts {
		reducer, err := cfg.buildReducer(declared)
		if err != nil {
			return nil, fmt.Errorf("parts: manifest part %q: %w", declared.Name, err)
		}
		var options []PartOption
		if declared.Owner != "" {
			options = append(options, WithOwner(declared.Owner))
		}
		seeded := withInitial(reducer, hydrate.Normalize(declared.Initial))
		built = append(built, NewPart(declared.Name, seeded, options...))
	}
	return built, nil
}

func (cfg manifestConfig) buildReducer(declared ManifestPart) (Reducer, error) {
	switch declared.Engine {
	case EngineExpr:
		return NewExprReducer(declared.Expression,
			ExprWithProgramCache(cfg.cache),
			ExprWithFunctionRegistry(cfg.registry),
			ExprWithEvaluatorLogger(cfg.logger),
		)
	case EngineCEL:
		return NewCELReducer(declared.Expression,
			CELWithProgramCache(cfg.cache),
			CELWithFunctionRegistry(cfg.registry),
			CELWithEvaluatorLogger(cfg.logger),
		)
	case EngineJS:
		return NewJSReducer(declared.Expression,
			JSWithProgramCache(cfg.cache),
			JSWithFunctionRegistry(cfg.registry),
			JSWithEvaluatorLogger(cfg.logger),
		)
	default:
		return nil, fmt.Errorf("unsupported engine %q", declared.Engine)
	}
}

// withInitial substitutes the declared initial value on the first invocation
// so manifest parts always contribute a defined owner-key value.
func withInitial(reducer Reducer, initial any) Reducer {
	return func(prev any, action Action) any {
		if prev == nil {
			if initial == nil {
				prev = None
			} else {
				prev = initial
			}
		}
		return reducer(prev, action)
	}
}
