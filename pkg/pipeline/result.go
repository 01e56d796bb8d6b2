package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncforge/ncgen/pkg/params"
	"github.com/ncforge/ncgen/pkg/render"
)

// FailureKind is the terminal failure state of a render call.
type FailureKind string

const (
	SchemeNotFound   FailureKind = "scheme_not_found"
	TemplateNotFound FailureKind = "template_not_found"
	ValidationFailed FailureKind = "validation_failed"
	RenderingFailed  FailureKind = "rendering_failed"
)

// Failure is the structured diagnostic of a failed render. Validation is
// populated for ValidationFailed (every violation, never just the first);
// Render for RenderingFailed.
type Failure struct {
	Kind       FailureKind
	Scheme     string
	Template   string
	Detail     string
	Validation []params.Error
	Render     *render.Error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case SchemeNotFound:
		return fmt.Sprintf("pipeline: scheme %q not found", f.Scheme)
	case TemplateNotFound:
		return fmt.Sprintf("pipeline: template %q not found in scheme %q", f.Template, f.Scheme)
	case ValidationFailed:
		msgs := make([]string, 0, len(f.Validation))
		for _, e := range f.Validation {
			msgs = append(msgs, e.Message)
		}
		return fmt.Sprintf("pipeline: validation failed: %s", strings.Join(msgs, "; "))
	case RenderingFailed:
		if f.Render != nil {
			return fmt.Sprintf("pipeline: rendering failed: %v", f.Render)
		}
		return fmt.Sprintf("pipeline: rendering failed: %s", f.Detail)
	}
	return fmt.Sprintf("pipeline: %s", f.Kind)
}

func (f *Failure) Unwrap() error {
	if f.Render != nil {
		return f.Render
	}
	return nil
}

// Result is the outcome of one render call. Output is meaningful only when
// Err is nil; Duration is always set, for observability on both paths.
type Result struct {
	Output   string
	Duration time.Duration
	Err      *Failure
}

// Ok reports whether the render produced usable output.
func (r Result) Ok() bool {
	return r.Err == nil
}

func renderingFailed(req Request, rerr *render.Error) *Failure {
	return &Failure{
		Kind:     RenderingFailed,
		Scheme:   req.Scheme,
		Template: req.Template,
		Render:   rerr,
	}
}

// wrapRenderErr normalises any engine error into a *render.Error so the
// failure taxonomy stays closed.
func wrapRenderErr(err error) *render.Error {
	if rerr, ok := err.(*render.Error); ok {
		return rerr
	}
	return &render.Error{Kind: render.SyntaxError, Message: err.Error(), Err: err}
}
