package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ncforge/ncgen"
	"github.com/ncforge/ncgen/pkg/prompt"
)

type paramFlags []string

func (p *paramFlags) String() string { return strings.Join(*p, ",") }

func (p *paramFlags) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	*p = append(*p, value)
	return nil
}

func main() {
	var paramPairs paramFlags
	dir := flag.String("dir", "schemes", "base directory holding scheme subdirectories")
	list := flag.Bool("list", false, "list available schemes and exit")
	describe := flag.String("describe", "", "print the parameter schema of a scheme and exit")
	schemeName := flag.String("scheme", "", "scheme to render")
	templateName := flag.String("template", "", "template to render")
	paramsFile := flag.String("params", "", "JSON file with parameter values")
	interactive := flag.Bool("interactive", false, "prompt for parameter values")
	output := flag.String("output", "", "output file (stdout if empty)")
	jsonOut := flag.Bool("json", false, "emit the render result as JSON")
	timeout := flag.Duration("timeout", 30*time.Second, "load and render timeout")
	flag.Var(&paramPairs, "p", "parameter as name=value (repeatable)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gen, report, err := ncgen.Open(ctx, *dir)
	if err != nil {
		log.Fatalf("open %s: %v", *dir, err)
	}
	for _, failure := range report.Failed {
		log.Printf("skipped scheme dir %s: %v", failure.Dir, failure.Err)
	}

	switch {
	case *list:
		listSchemes(gen)
		return
	case *describe != "":
		describeScheme(gen, *describe)
		return
	}

	if *schemeName == "" || *templateName == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := collectParams(ctx, gen, *schemeName, paramPairs, *paramsFile, *interactive)
	if err != nil {
		log.Fatalf("collect parameters: %v", err)
	}

	result := gen.Render(ctx, *schemeName, *templateName, raw)

	if *jsonOut {
		if err := writeJSON(os.Stdout, *schemeName, *templateName, result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		if !result.Ok() {
			os.Exit(1)
		}
		return
	}

	if !result.Ok() {
		reportFailure(result.Err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(result.Output)
		return
	}
	if err := os.WriteFile(*output, []byte(result.Output), 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %d bytes to %s in %s", len(result.Output), *output, result.Duration)
}

func listSchemes(gen *ncgen.Generator) {
	for _, info := range gen.List() {
		if info.Description != "" {
			fmt.Printf("%s\t%s\n", info.Name, info.Description)
			continue
		}
		fmt.Println(info.Name)
	}
}

func describeScheme(gen *ncgen.Generator, name string) {
	groups, err := gen.Groups(name)
	if err != nil {
		log.Fatalf("describe %s: %v", name, err)
	}
	s, _ := gen.Scheme(name)
	for _, group := range groups {
		fmt.Printf("[%s]\n", group.Name)
		for _, def := range group.Params {
			line := fmt.Sprintf("  %s (%s)", def.Name, def.Kind)
			if def.Unit != "" {
				line += " " + def.Unit
			}
			if def.HasDefault() {
				line += fmt.Sprintf(" default=%v", def.Default)
			}
			if def.Min != nil || def.Max != nil {
				line += fmt.Sprintf(" range=[%s, %s]", boundText(def.Min), boundText(def.Max))
			}
			if len(def.Options) > 0 {
				line += " options=" + strings.Join(def.Options, "|")
			}
			fmt.Println(line)
		}
	}
	for _, ref := range s.Templates {
		fmt.Printf("template: %s (%s)\n", ref.Name, ref.File)
	}
}

func boundText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func collectParams(ctx context.Context, gen *ncgen.Generator, schemeName string, pairs paramFlags, file string, interactive bool) (map[string]any, error) {
	raw := map[string]any{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	if interactive {
		s, ok := gen.Scheme(schemeName)
		if !ok {
			return nil, fmt.Errorf("scheme %q not found", schemeName)
		}
		answers, err := prompt.Collect(ctx, prompt.NewSurveyDriver(), s)
		if err != nil {
			if errors.Is(err, prompt.ErrNoTerminal) {
				return nil, fmt.Errorf("%w; run without -interactive and pass values with -p or -params", err)
			}
			return nil, err
		}
		for k, v := range answers {
			raw[k] = v
		}
	}

	// explicit -p flags win over file and prompt values
	for _, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		raw[name] = value
	}
	return raw, nil
}

func reportFailure(failure *ncgen.Failure) {
	log.Printf("render failed: %v", failure)
	for _, verr := range failure.Validation {
		fmt.Fprintf(os.Stderr, "  %s: %s [%s]\n", verr.Field, verr.Message, verr.Code)
	}
	if failure.Render != nil && failure.Render.Expression != "" {
		fmt.Fprintf(os.Stderr, "  offending expression: %s\n", failure.Render.Expression)
	}
}

type resultEnvelope struct {
	Scheme     string         `json:"scheme"`
	Template   string         `json:"template"`
	Output     string         `json:"output,omitempty"`
	DurationMS float64        `json:"duration_ms"`
	Error      *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	Validation map[string]string `json:"validation,omitempty"`
}

func writeJSON(w *os.File, schemeName, templateName string, result ncgen.Result) error {
	envelope := resultEnvelope{
		Scheme:     schemeName,
		Template:   templateName,
		Output:     result.Output,
		DurationMS: float64(result.Duration.Microseconds()) / 1000,
	}
	if failure := result.Err; failure != nil {
		envelope.Error = &errorEnvelope{
			Kind:    string(failure.Kind),
			Message: failure.Error(),
		}
		if len(failure.Validation) > 0 {
			envelope.Error.Validation = make(map[string]string, len(failure.Validation))
			for _, verr := range failure.Validation {
				envelope.Error.Validation[verr.Field] = verr.Message
			}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}
