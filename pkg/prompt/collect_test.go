package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ncforge/ncgen/pkg/scheme"
	"github.com/ncforge/ncgen/pkg/testsupport"
)

// scriptedDriver replays canned answers and records every prompt it was
// asked, in order.
type scriptedDriver struct {
	inputs   map[string]string
	confirms map[string]bool
	selects  map[string]int

	asked []string
	seen  []any
	fail  error
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	d.seen = append(d.seen, cfg)
	if d.fail != nil {
		return "", d.fail
	}
	if answer, ok := d.inputs[cfg.Message]; ok {
		return answer, nil
	}
	return cfg.Default, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, cfg.Message)
	d.seen = append(d.seen, cfg)
	if d.fail != nil {
		return false, d.fail
	}
	if answer, ok := d.confirms[cfg.Message]; ok {
		return answer, nil
	}
	return cfg.Default, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	d.asked = append(d.asked, cfg.Message)
	d.seen = append(d.seen, cfg)
	if d.fail != nil {
		return 0, d.fail
	}
	if answer, ok := d.selects[cfg.Message]; ok {
		return answer, nil
	}
	return cfg.DefaultIndex, nil
}

func TestCollect_WalksGroupsInOrder(t *testing.T) {
	s := testsupport.MustParseScheme(t)
	d := &scriptedDriver{}

	if _, err := Collect(testsupport.Context(), d, s); err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []string{
		"feed_rate (mm/min)",
		"spindle_speed (rpm)",
		"passes",
		"tool_number",
		"coolant",
		"material",
	}
	if diff := cmp.Diff(want, d.asked); diff != "" {
		t.Errorf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_AcceptingDefaults(t *testing.T) {
	s := testsupport.MustParseScheme(t)
	d := &scriptedDriver{}

	raw, err := Collect(testsupport.Context(), d, s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string]any{
		"feed_rate":     "1200",
		"spindle_speed": "800",
		"passes":        "3",
		"tool_number":   "1",
		"coolant":       true,
		"material":      "steel",
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_ScriptedAnswers(t *testing.T) {
	s := testsupport.MustParseScheme(t)
	d := &scriptedDriver{
		inputs:   map[string]string{"feed_rate (mm/min)": "2500"},
		confirms: map[string]bool{"coolant": false},
		selects:  map[string]int{"material": 2},
	}

	raw, err := Collect(testsupport.Context(), d, s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if raw["feed_rate"] != "2500" {
		t.Errorf("feed_rate = %v", raw["feed_rate"])
	}
	if raw["coolant"] != false {
		t.Errorf("coolant = %v", raw["coolant"])
	}
	if raw["material"] != "brass" {
		t.Errorf("material = %v", raw["material"])
	}
}

func TestCollect_EnumDefaultIndexFromScheme(t *testing.T) {
	s := testsupport.MustParseScheme(t)
	d := &scriptedDriver{}

	if _, err := Collect(testsupport.Context(), d, s); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var sel SelectConfig
	found := false
	for _, cfg := range d.seen {
		if c, ok := cfg.(SelectConfig); ok {
			sel, found = c, true
		}
	}
	if !found {
		t.Fatalf("no select prompt issued")
	}
	if sel.DefaultIndex != 0 || sel.Options[sel.DefaultIndex] != "steel" {
		t.Fatalf("select default = %+v", sel)
	}
}

func TestCollect_EmptyAnswerWithoutDefaultOmitted(t *testing.T) {
	doc := `name: engraving
templates:
  - name: main
    file: main.j2
parameters:
  main:
    note:
      type: string
`
	s, err := scheme.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	d := &scriptedDriver{}
	raw, err := Collect(testsupport.Context(), d, s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, present := raw["note"]; present {
		t.Fatalf("optional unanswered parameter must be omitted: %v", raw)
	}
}

func TestCollect_DriverErrorAborts(t *testing.T) {
	s := testsupport.MustParseScheme(t)
	d := &scriptedDriver{fail: ErrInterrupted}

	if _, err := Collect(testsupport.Context(), d, s); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v", err)
	}
	if len(d.asked) != 1 {
		t.Fatalf("collection must stop on the first failed prompt, asked %v", d.asked)
	}
}
