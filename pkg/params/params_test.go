package params

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ncforge/ncgen/pkg/scheme"
	"github.com/ncforge/ncgen/pkg/testsupport"
)

func fixtureScheme(t *testing.T) *scheme.Scheme {
	t.Helper()
	return testsupport.MustParseScheme(t)
}

func TestValidate_AllDefaults(t *testing.T) {
	s := fixtureScheme(t)

	normalized, errs := Validate(s, map[string]any{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := map[string]any{
		"feed_rate":     float64(1200),
		"spindle_speed": 800,
		"passes":        3,
		"tool_number":   1,
		"coolant":       true,
		"material":      "steel",
	}
	if diff := cmp.Diff(want, normalized); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_TextualCoercion(t *testing.T) {
	s := fixtureScheme(t)

	normalized, errs := Validate(s, map[string]any{
		"feed_rate": "1200",
		"coolant":   "off",
		"passes":    "5",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if normalized["feed_rate"] != float64(1200) {
		t.Fatalf("feed_rate = %v", normalized["feed_rate"])
	}
	if normalized["coolant"] != false {
		t.Fatalf("coolant = %v", normalized["coolant"])
	}
	if normalized["passes"] != 5 {
		t.Fatalf("passes = %v", normalized["passes"])
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	s := fixtureScheme(t)

	_, errs := Validate(s, map[string]any{"feed_rate": "6000"})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	e := errs[0]
	if e.Field != "feed_rate" || e.Code != CodeOutOfRange {
		t.Fatalf("unexpected error: %+v", e)
	}
	// the message must carry both the limit and the offending value
	for _, needle := range []string{"5000", "6000"} {
		if !contains(e.Message, needle) {
			t.Fatalf("message %q missing %q", e.Message, needle)
		}
	}
}

func TestValidate_EnumAndRequired(t *testing.T) {
	s, err := scheme.Parse([]byte(`name: demo
parameters:
  g:
    mode:
      type: enum
      options: [A, B]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, errs := Validate(s, map[string]any{"mode": "C"})
	if len(errs) != 1 || errs[0].Code != CodeNotInOptions {
		t.Fatalf("expected not_in_options, got %v", errs)
	}
	if !contains(errs[0].Message, "A") || !contains(errs[0].Message, "B") {
		t.Fatalf("message %q does not list the allowed set", errs[0].Message)
	}

	_, errs = Validate(s, map[string]any{})
	if len(errs) != 1 || errs[0].Code != CodeRequiredMissing {
		t.Fatalf("expected required_missing, got %v", errs)
	}
}

func TestValidate_OptionalWithoutDefaultOmitted(t *testing.T) {
	s, err := scheme.Parse([]byte(`name: demo
parameters:
  g:
    note:
      type: string
      required: false
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	normalized, errs := Validate(s, map[string]any{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, present := normalized["note"]; present {
		t.Fatalf("optional parameter should be omitted, got %v", normalized)
	}
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	s := fixtureScheme(t)

	_, errs := Validate(s, map[string]any{
		"feed_rate": "fast",
		"passes":    "50",
		"material":  "wood",
	})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	// schema declaration order, not input order
	wantOrder := []struct {
		field string
		code  Code
	}{
		{"feed_rate", CodeBadType},
		{"passes", CodeOutOfRange},
		{"material", CodeNotInOptions},
	}
	for i, want := range wantOrder {
		if errs[i].Field != want.field || errs[i].Code != want.code {
			t.Fatalf("errs[%d] = %+v, want %s/%s", i, errs[i], want.field, want.code)
		}
	}
}

func TestValidate_UnknownKeysIgnored(t *testing.T) {
	s := fixtureScheme(t)

	normalized, errs := Validate(s, map[string]any{"stale_ui_field": "whatever"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, leaked := normalized["stale_ui_field"]; leaked {
		t.Fatalf("unknown key leaked into normalized output")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	s := fixtureScheme(t)
	raw := map[string]any{"feed_rate": "6000", "material": "wood"}

	n1, e1 := Validate(s, raw)
	n2, e2 := Validate(s, raw)
	if diff := cmp.Diff(n1, n2); diff != "" {
		t.Fatalf("normalized not deterministic:\n%s", diff)
	}
	if diff := cmp.Diff(e1, e2); diff != "" {
		t.Fatalf("errors not deterministic:\n%s", diff)
	}
}

func TestValidate_SchemeDefaultsWinOverDefDefaults(t *testing.T) {
	s, err := scheme.Parse([]byte(`name: demo
parameters:
  g:
    feed:
      type: number
      default: 1000
defaults:
  feed: 2000
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	normalized, errs := Validate(s, map[string]any{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if normalized["feed"] != float64(2000) {
		t.Fatalf("feed = %v, want scheme-level default 2000", normalized["feed"])
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
