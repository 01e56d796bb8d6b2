package prompt

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ncforge/ncgen/pkg/scheme"
)

// Collect walks the scheme's parameter groups in declaration order and
// prompts for each definition: Select for enums, Confirm for booleans, Input
// for everything else. Answers are returned as a raw parameter map for the
// validator; Collect itself performs no validation beyond what the driver
// enforces. Empty answers for optional parameters without defaults are
// omitted from the result.
func Collect(ctx context.Context, d Driver, s *scheme.Scheme) (map[string]any, error) {
	raw := make(map[string]any, s.ParamCount())

	for _, group := range s.Groups {
		for _, def := range group.Params {
			value, supplied, err := ask(ctx, d, s, def)
			if err != nil {
				return nil, err
			}
			if supplied {
				raw[def.Name] = value
			}
		}
	}
	return raw, nil
}

func ask(ctx context.Context, d Driver, s *scheme.Scheme, def scheme.ParameterDef) (any, bool, error) {
	message := def.Name
	if def.Unit != "" {
		message = fmt.Sprintf("%s (%s)", def.Name, def.Unit)
	}
	fallback := effectiveDefault(s, def)

	switch def.Kind {
	case scheme.KindEnum:
		idx := 0
		if str, ok := fallback.(string); ok {
			for i, opt := range def.Options {
				if opt == str {
					idx = i
					break
				}
			}
		}
		choice, err := d.Select(ctx, SelectConfig{
			Message:      message,
			Options:      def.Options,
			DefaultIndex: idx,
			Help:         def.Description,
		})
		if err != nil {
			return nil, false, err
		}
		return def.Options[choice], true, nil

	case scheme.KindBoolean:
		b, _ := fallback.(bool)
		answer, err := d.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: b,
			Help:    def.Description,
		})
		if err != nil {
			return nil, false, err
		}
		return answer, true, nil

	default:
		answer, err := d.Input(ctx, InputConfig{
			Message: message,
			Default: defaultText(fallback),
			Help:    def.Description,
		})
		if err != nil {
			return nil, false, err
		}
		if answer == "" && fallback == nil {
			return nil, false, nil
		}
		return answer, true, nil
	}
}

// effectiveDefault mirrors the validator's default resolution: scheme-level
// defaults win over the definition's own default.
func effectiveDefault(s *scheme.Scheme, def scheme.ParameterDef) any {
	if v, ok := s.Defaults[def.Name]; ok {
		return v
	}
	return def.Default
}

func defaultText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
