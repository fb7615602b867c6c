package parts

import (
	"strings"
	"testing"
)

const counterManifest = `
parts:
  - name: counter
    engine: expr
    initial: 0
    expression: 'type == "increment" ? state + 1 : state'
  - name: mode
    owner: ui
    engine: cel
    initial: idle
    expression: "action.type == 'activate' ? 'active' : state"
`

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest([]byte(counterManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(manifest.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(manifest.Parts))
	}
	if manifest.Parts[0].Name != "counter" || manifest.Parts[0].Engine != EngineExpr {
		t.Fatalf("unexpected first part: %+v", manifest.Parts[0])
	}
	if manifest.Parts[1].Owner != "ui" {
		t.Fatalf("expected an explicit owner, got %q", manifest.Parts[1].Owner)
	}
}

func TestParseManifestRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseManifest([]byte("parts: [\n")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestManifestValidate(t *testing.T) {
	cases := []struct {
		name     string
		manifest Manifest
		fragment string
	}{
		{
			name:     "no parts",
			manifest: Manifest{},
			fragment: "declares no parts",
		},
		{
			name: "missing name",
			manifest: Manifest{Parts: []ManifestPart{
				{Engine: EngineExpr, Expression: "state"},
			}},
			fragment: "missing a name",
		},
		{
			name: "duplicate name",
			manifest: Manifest{Parts: []ManifestPart{
				{Name: "dup", Engine: EngineExpr, Expression: "state"},
				{Name: "dup", Engine: EngineExpr, Expression: "state"},
			}},
			fragment: "declared twice",
		},
		{
			name: "unsupported engine",
			manifest: Manifest{Parts: []ManifestPart{
				{Name: "bad", Engine: "lua", Expression: "state"},
			}},
			fragment: "unsupported engine",
		},
		{
			name: "missing expression",
			manifest: Manifest{Parts: []ManifestPart{
				{Name: "empty", Engine: EngineExpr},
			}},
			fragment: "missing an expression",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected %q in %q", tc.fragment, err.Error())
			}
		})
	}
}

func TestManifestBuildPartsDispatchRoundtrip(t *testing.T) {
	manifest, err := ParseManifest([]byte(counterManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	built, err := manifest.BuildParts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(built))
	}

	reducer, err := NewReducer(Config{Parts: built})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := reducer(nil, Event{Type: "@@init"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state["counter"] != 0 {
		t.Fatalf("expected the declared initial, got %v (%T)", state["counter"], state["counter"])
	}
	if state["ui"] != "idle" {
		t.Fatalf("expected the declared initial, got %v", state["ui"])
	}

	next, err := reducer(state, PartEvent{Target: "counter", Type: "increment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next["counter"] != 1 {
		t.Fatalf("expected 1, got %v (%T)", next["counter"], next["counter"])
	}

	activated, err := reducer(next, PartEvent{Target: "mode", Type: "activate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activated["ui"] != "active" {
		t.Fatalf("expected active, got %v", activated["ui"])
	}
	if activated["counter"] != 1 {
		t.Fatalf("expected the counter to survive, got %v", activated["counter"])
	}
}

func TestManifestBuildPartsSharedRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("clamp", func(args ...any) (any, error) {
		n := args[0].(int)
		if n > 10 {
			return 10, nil
		}
		return n, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manifest := Manifest{Parts: []ManifestPart{{
		Name:       "gauge",
		Engine:     EngineExpr,
		Initial:    9,
		Expression: `type == "bump" ? clamp(state + 5) : state`,
	}}}
	built, err := manifest.BuildParts(
		ManifestWithFunctionRegistry(registry),
		ManifestWithProgramCache(NewMemoryProgramCache()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reducer, err := NewReducer(Config{Parts: built})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := reducer(nil, Event{Type: "@@init"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bumped, err := reducer(state, PartEvent{Target: "gauge", Type: "bump"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bumped["gauge"] != 10 {
		t.Fatalf("expected the clamped value, got %v", bumped["gauge"])
	}
}

func TestManifestBuildPartsCompileErrorNamesPart(t *testing.T) {
	manifest := Manifest{Parts: []ManifestPart{{
		Name:       "broken",
		Engine:     EngineExpr,
		Expression: "state +",
	}}}
	_, err := manifest.BuildParts()
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Fatalf("expected the part name in %q", err.Error())
	}
}

func TestManifestBuildPartsJSRequiresBuildTag(t *testing.T) {
	if jsReducerAvailable() {
		t.Skip("js engine compiled in")
	}
	manifest := Manifest{Parts: []ManifestPart{{
		Name:       "scripted",
		Engine:     EngineJS,
		Expression: "state",
	}}}
	_, err := manifest.BuildParts()
	if err == nil {
		t.Fatal("expected an error without the js engine")
	}
	if !strings.Contains(err.Error(), "js_eval") {
		t.Fatalf("expected the build tag hint in %q", err.Error())
	}
}
