package pongo

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ncforge/ncgen/pkg/render"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderString_LiteralPassthrough(t *testing.T) {
	engine := newEngine(t)
	source := "%\nG21 G40 G90\nM30\n%\n"

	out, err := engine.RenderString(source, map[string]any{"unused": 1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != source {
		t.Fatalf("literal template changed: %q -> %q", source, out)
	}
}

func TestRenderString_Substitution(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString("F{{ feed_rate | format_number(0) }}", map[string]any{
		"feed_rate": float64(1200),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "F1200" {
		t.Fatalf("out = %q, want F1200", out)
	}
}

func TestRenderString_RangeLoop(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString(
		"{% for i in range(1, passes + 1) %}P{{ i }};{% endfor %}",
		map[string]any{"passes": 3},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "P1;P2;P3;" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderString_UndefinedVariable(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.RenderString("line one\nF{{ feed_rate }}", map[string]any{})
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected render.Error, got %v", err)
	}
	if rerr.Kind != render.UndefinedVariable {
		t.Fatalf("kind = %s, want %s", rerr.Kind, render.UndefinedVariable)
	}
	if rerr.Expression != "feed_rate" {
		t.Fatalf("error does not name the variable: %+v", rerr)
	}
	if rerr.Line != 2 {
		t.Fatalf("line = %d, want 2", rerr.Line)
	}
}

func TestRenderString_CommentedVariableNeedsNoBinding(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString("F{{ feed }} {# {{ draft_var }} #}", map[string]any{
		"feed": 100,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "F100 " {
		t.Fatalf("out = %q, want %q", out, "F100 ")
	}
}

func TestRenderString_CommentBlockNeedsNoBinding(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString(
		"{% comment %}{{ draft_var }}{% endcomment %}ok",
		map[string]any{},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %q, want %q", out, "ok")
	}
}

func TestRenderString_UntakenBranchBodyNeedsNoBinding(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString(
		"{% if coolant %}M0{{ coolant_code }}{% endif %}",
		map[string]any{"coolant": false},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("out = %q, want empty", out)
	}

	// The condition itself is still evaluated and still needs a binding.
	_, err = engine.RenderString("{% if coolant %}M08{% endif %}", map[string]any{})
	var rerr *render.Error
	if !errors.As(err, &rerr) || rerr.Kind != render.UndefinedVariable {
		t.Fatalf("expected undefined variable for condition, got %v", err)
	}
	if rerr.Expression != "coolant" {
		t.Fatalf("error does not name the condition: %+v", rerr)
	}
}

func TestRenderString_LoopLocalIsNotUndefined(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RenderString(
		"{% for step in range(0, 2) %}{{ step }}{% endfor %}",
		map[string]any{},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "01" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderString_UndefinedFilter(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.RenderString("{{ x | no_such_filter(1) }}", map[string]any{"x": 1})
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected render.Error, got %v", err)
	}
	if rerr.Kind != render.UndefinedFilter {
		t.Fatalf("kind = %s, want %s (%v)", rerr.Kind, render.UndefinedFilter, err)
	}
	if rerr.Expression != "no_such_filter" {
		t.Fatalf("error does not name the filter: %+v", rerr)
	}
}

func TestRenderString_FilterTypeMismatch(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.RenderString("{{ x | format_number(2) }}", map[string]any{"x": "abc"})
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected render.Error, got %v", err)
	}
	if rerr.Kind != render.FilterTypeMismatch {
		t.Fatalf("kind = %s, want %s (%v)", rerr.Kind, render.FilterTypeMismatch, err)
	}
	if rerr.Expression != "format_number" {
		t.Fatalf("error does not name the filter: %+v", rerr)
	}
}

func TestRenderString_SyntaxError(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.RenderString("{% endfor %}", map[string]any{})
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected render.Error, got %v", err)
	}
	if rerr.Kind != render.SyntaxError {
		t.Fatalf("kind = %s, want %s", rerr.Kind, render.SyntaxError)
	}
}

func TestRenderString_CacheColdWarmIdentical(t *testing.T) {
	engine := newEngine(t)
	source := "T{{ tool | pad_zero(4) }} F{{ feed | format_number(1) }}"
	bindings := map[string]any{"tool": 7, "feed": 250.5}

	cold, err := engine.RenderString(source, bindings)
	if err != nil {
		t.Fatalf("cold render: %v", err)
	}
	warm, err := engine.RenderString(source, bindings)
	if err != nil {
		t.Fatalf("warm render: %v", err)
	}
	if cold != warm {
		t.Fatalf("cache changed output: %q vs %q", cold, warm)
	}
	if cold != "T0007 F250.5" {
		t.Fatalf("out = %q", cold)
	}
}

func TestRenderString_ConcurrentRenders(t *testing.T) {
	engine := newEngine(t)
	source := "O{{ id | pad_zero(4) }}"

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	failures := make([]error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out, err := engine.RenderString(source, map[string]any{"id": w + 1})
			results[w] = out
			failures[w] = err
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		if failures[w] != nil {
			t.Fatalf("worker %d: %v", w, failures[w])
		}
		want := fmt.Sprintf("O%04d", w+1)
		if results[w] != want {
			t.Fatalf("worker %d: out = %q, want %q", w, results[w], want)
		}
	}
}

func TestVariables_FirstAppearanceOrder(t *testing.T) {
	engine := newEngine(t)
	source := "F{{ feed }} {% for i in range(1, passes + 1) %}{{ i }}{% endfor %} {{ material }} F{{ feed }}"

	names, err := engine.Variables(source)
	if err != nil {
		t.Fatalf("variables: %v", err)
	}
	want := []string{"feed", "passes", "material"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestVariables_ParseErrorSurfaces(t *testing.T) {
	engine := newEngine(t)

	if _, err := engine.Variables("{% if %}"); err == nil {
		t.Fatalf("expected parse error")
	}
}
