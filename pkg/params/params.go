// Package params converts raw, loosely typed user input into a normalized,
// strongly typed parameter map consistent with a scheme's schema. Validation
// is total and collected: it never panics on malformed input and reports every
// violation, not just the first.
package params

import (
	"errors"
	"fmt"

	"github.com/ncforge/ncgen/pkg/scheme"
)

// Code is the machine-readable classification of a validation failure.
type Code string

const (
	CodeRequiredMissing Code = "required_missing"
	CodeBadType         Code = "bad_type"
	CodeOutOfRange      Code = "out_of_range"
	CodeNotInOptions    Code = "not_in_options"
)

// Error is a single field-level validation failure.
type Error struct {
	Field   string
	Code    Code
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("params: %s: %s (%s)", e.Field, e.Message, e.Code)
}

// Validate normalizes raw against the scheme's parameter schema. Missing keys
// are filled from parameter defaults, then from scheme-level defaults; a
// parameter with neither yields required_missing. Unknown keys in raw are
// ignored and never appear in the normalized output. Errors follow schema
// declaration order, so repeated calls with identical input yield identical
// results.
func Validate(s *scheme.Scheme, raw map[string]any) (map[string]any, []Error) {
	normalized := make(map[string]any, s.ParamCount())
	var errs []Error

	for _, group := range s.Groups {
		for _, def := range group.Params {
			value, supplied := raw[def.Name]
			if !supplied {
				value, supplied = s.Defaults[def.Name]
			}
			if !supplied && def.HasDefault() {
				value, supplied = def.Default, true
			}
			if !supplied {
				if def.Required {
					errs = append(errs, Error{
						Field:   def.Name,
						Code:    CodeRequiredMissing,
						Message: fmt.Sprintf("%s is required and has no default", def.Name),
					})
				}
				continue
			}

			coerced, err := def.Coerce(value)
			if err != nil {
				errs = append(errs, classify(def.Name, err))
				continue
			}
			if err := def.CheckRange(coerced); err != nil {
				errs = append(errs, classify(def.Name, err))
				continue
			}
			if err := def.CheckOptions(coerced); err != nil {
				errs = append(errs, classify(def.Name, err))
				continue
			}
			normalized[def.Name] = coerced
		}
	}
	return normalized, errs
}

func classify(field string, err error) Error {
	var (
		coerceErr  *scheme.CoerceError
		rangeErr   *scheme.RangeError
		optionsErr *scheme.OptionsError
	)
	switch {
	case errors.As(err, &rangeErr):
		return Error{Field: field, Code: CodeOutOfRange, Message: rangeErr.Error()}
	case errors.As(err, &optionsErr):
		return Error{Field: field, Code: CodeNotInOptions, Message: optionsErr.Error()}
	case errors.As(err, &coerceErr):
		return Error{Field: field, Code: CodeBadType, Message: coerceErr.Error()}
	default:
		return Error{Field: field, Code: CodeBadType, Message: err.Error()}
	}
}
