package pongo

import (
	"strconv"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/ncforge/ncgen/pkg/render"
)

const (
	defaultDecimals = 3
	defaultPadWidth = 4
)

var registerOnce sync.Once

// registerFilters installs the NC formatting filters. pongo2 keeps a
// process-wide filter registry, so registration is guarded the same way the
// engine guards its built-ins.
func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("format_number") {
			_ = pongo2.RegisterFilter("format_number", filterFormatNumber)
		}
		if !pongo2.FilterExists("pad_zero") {
			_ = pongo2.RegisterFilter("pad_zero", filterPadZero)
		}
	})
}

// filterFormatNumber renders a numeric value with a fixed number of decimals,
// always using "." as the separator regardless of locale. format_number(0)
// of 1200 yields "1200".
func filterFormatNumber(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	decimals := defaultDecimals
	if param != nil && !param.IsNil() {
		if !param.IsInteger() {
			return nil, filterFailure("format_number", param.Interface(), "decimals must be an integer")
		}
		decimals = param.Integer()
	}
	if decimals < 0 {
		decimals = 0
	}

	var num float64
	switch {
	case in.IsInteger():
		num = float64(in.Integer())
	case in.IsFloat():
		num = in.Float()
	case in.IsString():
		parsed, err := strconv.ParseFloat(in.String(), 64)
		if err != nil {
			return nil, filterFailure("format_number", in.String(), "not a number")
		}
		num = parsed
	default:
		return nil, filterFailure("format_number", in.Interface(), "not a number")
	}

	return pongo2.AsValue(strconv.FormatFloat(num, 'f', decimals, 64)), nil
}

// filterPadZero zero-left-pads an integer to the requested width. A value
// needing more digits than the width is an error; truncation is never
// performed.
func filterPadZero(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	width := defaultPadWidth
	if param != nil && !param.IsNil() {
		if !param.IsInteger() {
			return nil, filterFailure("pad_zero", param.Interface(), "width must be an integer")
		}
		width = param.Integer()
	}
	if width < 1 {
		return nil, filterFailure("pad_zero", width, "width must be positive")
	}

	var v int
	switch {
	case in.IsInteger():
		v = in.Integer()
	case in.IsString():
		parsed, err := strconv.Atoi(in.String())
		if err != nil {
			return nil, filterFailure("pad_zero", in.String(), "not an integer")
		}
		v = parsed
	default:
		return nil, filterFailure("pad_zero", in.Interface(), "not an integer")
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.Itoa(v)
	if len(digits) > width {
		return nil, filterFailure("pad_zero", in.Interface(),
			"needs "+strconv.Itoa(len(digits))+" digits but width is "+strconv.Itoa(width))
	}
	for len(digits) < width {
		digits = "0" + digits
	}
	return pongo2.AsValue(sign + digits), nil
}

func filterFailure(filter string, value any, reason string) *pongo2.Error {
	return &pongo2.Error{
		Sender:    "filter:" + filter,
		OrigError: &render.FilterError{Filter: filter, Value: value, Reason: reason},
	}
}

// rangeValues is the range(...) global available to templates for bounded
// iteration: range(stop), range(start, stop), range(start, stop, step).
// The stop bound is exclusive, matching the original template corpus.
func rangeValues(args ...*pongo2.Value) *pongo2.Value {
	start, stop, step := 0, 0, 1
	switch len(args) {
	case 1:
		if !args[0].IsInteger() {
			return pongo2.AsValue([]int{})
		}
		stop = args[0].Integer()
	case 2:
		if !args[0].IsInteger() || !args[1].IsInteger() {
			return pongo2.AsValue([]int{})
		}
		start, stop = args[0].Integer(), args[1].Integer()
	case 3:
		if !args[0].IsInteger() || !args[1].IsInteger() || !args[2].IsInteger() {
			return pongo2.AsValue([]int{})
		}
		start, stop, step = args[0].Integer(), args[1].Integer(), args[2].Integer()
	default:
		return pongo2.AsValue([]int{})
	}
	if step == 0 {
		return pongo2.AsValue([]int{})
	}

	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return pongo2.AsValue(out)
}
