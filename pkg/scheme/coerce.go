package scheme

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceError reports that a raw value could not be converted to the kind a
// parameter definition requires.
type CoerceError struct {
	Param string
	Kind  ParamKind
	Value any
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("%s: value %v is not a valid %s", e.Param, e.Value, e.Kind)
}

// RangeError reports a coerced numeric value outside the declared bounds. The
// message always carries both the violated limit and the offending value.
type RangeError struct {
	Param string
	Value float64
	Limit float64
	Below bool
}

func (e *RangeError) Error() string {
	rel := "above maximum"
	if e.Below {
		rel = "below minimum"
	}
	return fmt.Sprintf("%s: value %s is %s %s",
		e.Param, formatNum(e.Value), rel, formatNum(e.Limit))
}

// OptionsError reports an enum value that matches none of the allowed options.
type OptionsError struct {
	Param   string
	Value   string
	Options []string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("%s: value %q is not one of [%s]",
		e.Param, e.Value, strings.Join(e.Options, ", "))
}

var booleanTokens = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true,
	"false": false, "no": false, "off": false, "0": false,
}

// Coerce converts a raw, loosely typed value into the canonical typed
// representation for the definition's kind: float64 for number, int for
// integer, string for string and enum, bool for boolean. Textual input for
// numeric and boolean kinds is parsed; failure yields a *CoerceError.
func (d ParameterDef) Coerce(raw any) (any, error) {
	switch d.Kind {
	case KindNumber:
		return d.coerceNumber(raw)
	case KindInteger:
		return d.coerceInteger(raw)
	case KindBoolean:
		return d.coerceBoolean(raw)
	case KindString, KindEnum:
		return d.coerceString(raw)
	default:
		return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
	}
}

// CheckRange enforces the inclusive min/max bounds, when declared, against a
// coerced numeric value. It is a no-op for non-numeric kinds.
func (d ParameterDef) CheckRange(v any) error {
	var num float64
	switch n := v.(type) {
	case float64:
		num = n
	case int:
		num = float64(n)
	case int64:
		num = float64(n)
	default:
		return nil
	}
	if d.Min != nil && num < *d.Min {
		return &RangeError{Param: d.Name, Value: num, Limit: *d.Min, Below: true}
	}
	if d.Max != nil && num > *d.Max {
		return &RangeError{Param: d.Name, Value: num, Limit: *d.Max}
	}
	return nil
}

// CheckOptions enforces exact membership in the enum option list. It is a
// no-op for non-enum kinds.
func (d ParameterDef) CheckOptions(v any) error {
	if d.Kind != KindEnum {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &CoerceError{Param: d.Name, Kind: d.Kind, Value: v}
	}
	for _, opt := range d.Options {
		if s == opt {
			return nil
		}
	}
	return &OptionsError{Param: d.Name, Value: s, Options: d.Options}
}

func (d ParameterDef) coerceNumber(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
		}
		return f, nil
	}
	return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
}

func (d ParameterDef) coerceInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
		}
		return int(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
		}
		return int(n), nil
	}
	return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
}

func (d ParameterDef) coerceBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, ok := booleanTokens[strings.ToLower(strings.TrimSpace(v))]
		if !ok {
			return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
		}
		return b, nil
	}
	return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
}

func (d ParameterDef) coerceString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return formatNum(v), nil
	}
	return nil, &CoerceError{Param: d.Name, Kind: d.Kind, Value: raw}
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
