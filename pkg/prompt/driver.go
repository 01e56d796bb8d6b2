// Package prompt collects parameter values interactively, driven by a
// scheme's parameter groups. The PromptDriver seam keeps the collection
// logic testable without a real terminal.
package prompt

import (
	"context"
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a free-text prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// Driver abstracts the terminal interaction so collection logic can be tested
// with a scripted implementation.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
}

// ErrInterrupted is returned when the user aborts a prompt session.
var ErrInterrupted = errors.New("prompt: interrupted")

// ErrNoTerminal is returned when prompting fails because no usable terminal
// is attached, as when stdin is a pipe or the process runs headless.
var ErrNoTerminal = errors.New("prompt: no terminal")

type surveyDriver struct{}

// NewSurveyDriver returns the production driver backed by survey.
func NewSurveyDriver() Driver {
	return &surveyDriver{}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	p := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(p, &out); err != nil {
		return "", mapSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	p := &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(p, &out); err != nil {
		return false, mapSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defaultOpt := ""
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		defaultOpt = cfg.Options[cfg.DefaultIndex]
	}
	var out survey.OptionAnswer
	p := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Default: defaultOpt,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(p, &out); err != nil {
		return 0, mapSurveyErr(err)
	}
	return out.Index, nil
}

func mapSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrInterrupted
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Join(ErrNoTerminal, err)
	}
	return err
}
