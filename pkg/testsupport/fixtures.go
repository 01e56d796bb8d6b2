// Package testsupport provides fixture schemes and template sources shared by
// the package test suites.
package testsupport

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/ncforge/ncgen/pkg/scheme"
)

// TurningSchemeYAML is a representative scheme definition: two parameter
// groups, an enum, scheme-level defaults, and a macro.
const TurningSchemeYAML = `name: 车削加工
description: 外圆车削程序生成
version: 1.0.0
templates:
  - name: 外圆车削
    file: turning.nc.j2
    description: 单刀外圆车削
    output_ext: nc
parameters:
  基础设置:
    feed_rate:
      type: number
      default: 1200
      min: 100
      max: 5000
      unit: mm/min
      description: 进给速度
    spindle_speed:
      type: integer
      default: 800
      min: 50
      max: 4000
      unit: rpm
    passes:
      type: integer
      default: 3
      min: 1
      max: 20
  刀具设置:
    tool_number:
      type: integer
      default: 1
      min: 1
      max: 99
    coolant:
      type: boolean
      default: true
    material:
      type: enum
      default: steel
      options: [steel, aluminum, brass]
defaults:
  feed_rate: 1200
macros:
  - name: safety_header
    content: "G21 G40 G49 G80 G90"
    description: 安全起始行
`

// TurningTemplate exercises substitution, both filters, a range loop, and the
// scheme macro.
const TurningTemplate = `%
O{{ tool_number | pad_zero(4) }}
{{ safety_header }}
S{{ spindle_speed }} M03
F{{ feed_rate | format_number(0) }}
{% for pass in range(1, passes + 1) %}
(PASS {{ pass }})
{% endfor %}
M30
%
`

// MustParseScheme parses TurningSchemeYAML, failing the test on error.
func MustParseScheme(t *testing.T) *scheme.Scheme {
	t.Helper()
	s, err := scheme.Parse([]byte(TurningSchemeYAML))
	if err != nil {
		t.Fatalf("parse fixture scheme: %v", err)
	}
	return s
}

// SchemeFS builds an in-memory scheme directory tree holding the turning
// fixture, for repository tests.
func SchemeFS() fstest.MapFS {
	return fstest.MapFS{
		"turning/scheme.yaml":   &fstest.MapFile{Data: []byte(TurningSchemeYAML)},
		"turning/turning.nc.j2": &fstest.MapFile{Data: []byte(TurningTemplate)},
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
