package scheme

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type templateDoc struct {
	Name        string `yaml:"name"`
	File        string `yaml:"file"`
	Description string `yaml:"description"`
	OutputName  string `yaml:"output_name"`
	OutputExt   string `yaml:"output_ext"`
}

type paramDoc struct {
	Type        string   `yaml:"type"`
	Default     any      `yaml:"default"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	Unit        string   `yaml:"unit"`
	Description string   `yaml:"description"`
	Required    *bool    `yaml:"required"`
	Options     []string `yaml:"options"`
}

type macroDoc struct {
	Name        string `yaml:"name"`
	Content     string `yaml:"content"`
	Description string `yaml:"description"`
}

// Parse decodes a scheme definition document and checks its invariants.
// Group and parameter order follows the document; unknown top-level keys are
// ignored. Parse is pure: identical input always yields an identical Scheme.
func Parse(data []byte) (*Scheme, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("invalid YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, malformed("empty definition", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed("top-level document must be a mapping", nil)
	}

	s := &Scheme{Defaults: map[string]any{}}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]

		var err error
		switch key {
		case "name":
			err = val.Decode(&s.Name)
		case "description":
			err = val.Decode(&s.Description)
		case "version":
			err = val.Decode(&s.Version)
		case "templates":
			err = decodeTemplates(val, s)
		case "parameters":
			err = decodeGroups(val, s)
		case "defaults":
			err = val.Decode(&s.Defaults)
		case "macros":
			err = decodeMacros(val, s)
		}
		if err != nil {
			if _, ok := err.(*LoadError); ok {
				return nil, err
			}
			return nil, malformed(fmt.Sprintf("decode %q", key), err)
		}
	}

	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeTemplates(node *yaml.Node, s *Scheme) error {
	var docs []templateDoc
	if err := node.Decode(&docs); err != nil {
		return err
	}
	for _, d := range docs {
		s.Templates = append(s.Templates, TemplateRef{
			Name:        d.Name,
			File:        d.File,
			Description: d.Description,
			OutputName:  d.OutputName,
			OutputExt:   d.OutputExt,
		})
	}
	return nil
}

func decodeGroups(node *yaml.Node, s *Scheme) error {
	if node.Kind != yaml.MappingNode {
		return malformed("parameters must be a mapping of groups", nil)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		groupName := node.Content[i].Value
		groupNode := node.Content[i+1]
		if groupNode.Kind != yaml.MappingNode {
			return malformed(fmt.Sprintf("parameter group %q must be a mapping", groupName), nil)
		}

		group := ParameterGroup{Name: groupName}
		for j := 0; j+1 < len(groupNode.Content); j += 2 {
			paramName := groupNode.Content[j].Value
			var d paramDoc
			if err := groupNode.Content[j+1].Decode(&d); err != nil {
				return malformed(fmt.Sprintf("parameter %q", paramName), err)
			}
			def, err := buildDef(paramName, d)
			if err != nil {
				return err
			}
			group.Params = append(group.Params, def)
		}
		s.Groups = append(s.Groups, group)
	}
	return nil
}

func decodeMacros(node *yaml.Node, s *Scheme) error {
	var docs []macroDoc
	if err := node.Decode(&docs); err != nil {
		return err
	}
	for _, d := range docs {
		s.Macros = append(s.Macros, Macro{
			Name:        d.Name,
			Content:     d.Content,
			Description: d.Description,
		})
	}
	return nil
}

func buildDef(name string, d paramDoc) (ParameterDef, error) {
	kind, err := parseKind(name, d.Type)
	if err != nil {
		return ParameterDef{}, err
	}

	def := ParameterDef{
		Name:        name,
		Kind:        kind,
		Default:     d.Default,
		Unit:        d.Unit,
		Description: d.Description,
		Required:    d.Required == nil || *d.Required,
	}
	switch kind {
	case KindNumber, KindInteger:
		def.Min = d.Min
		def.Max = d.Max
	case KindEnum:
		def.Options = d.Options
	}
	return def, nil
}

func parseKind(name, raw string) (ParamKind, error) {
	switch raw {
	case "":
		return KindString, nil
	case "select":
		// legacy spelling for enum kept for older scheme files
		return KindEnum, nil
	}
	kind := ParamKind(raw)
	if !kind.Valid() {
		return "", violation("parameter %q: unknown type %q", name, raw)
	}
	return kind, nil
}

// check enforces the scheme invariants after a successful decode.
func (s *Scheme) check() error {
	if s.Name == "" {
		return violation("scheme name is required")
	}

	seen := map[string]string{}
	for _, g := range s.Groups {
		for _, d := range g.Params {
			if prev, dup := seen[d.Name]; dup {
				return violation("parameter %q declared in both group %q and group %q",
					d.Name, prev, g.Name)
			}
			seen[d.Name] = g.Name
			if err := checkDef(d); err != nil {
				return err
			}
		}
	}

	tseen := map[string]struct{}{}
	for _, t := range s.Templates {
		if t.Name == "" || t.File == "" {
			return violation("template references need both a name and a file")
		}
		if _, dup := tseen[t.Name]; dup {
			return violation("duplicate template name %q", t.Name)
		}
		tseen[t.Name] = struct{}{}
	}

	mseen := map[string]struct{}{}
	for _, m := range s.Macros {
		if m.Name == "" {
			return violation("macros need a name")
		}
		if _, dup := mseen[m.Name]; dup {
			return violation("duplicate macro name %q", m.Name)
		}
		if _, clash := seen[m.Name]; clash {
			return violation("macro %q collides with a parameter name", m.Name)
		}
		mseen[m.Name] = struct{}{}
	}

	for name, value := range s.Defaults {
		def, ok := s.Param(name)
		if !ok {
			return violation("defaults entry %q does not name a declared parameter", name)
		}
		if err := checkValue(def, value); err != nil {
			return violation("defaults entry %q: %v", name, err)
		}
	}
	return nil
}

func checkDef(d ParameterDef) error {
	switch d.Kind {
	case KindEnum:
		if len(d.Options) == 0 {
			return violation("enum parameter %q declares no options", d.Name)
		}
	case KindNumber, KindInteger:
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return violation("parameter %q: min %s exceeds max %s",
				d.Name, formatNum(*d.Min), formatNum(*d.Max))
		}
	}
	if d.HasDefault() {
		if err := checkValue(d, d.Default); err != nil {
			return violation("parameter %q: default %v", d.Name, err)
		}
	}
	return nil
}

func checkValue(d ParameterDef, value any) error {
	coerced, err := d.Coerce(value)
	if err != nil {
		return err
	}
	if err := d.CheckRange(coerced); err != nil {
		return err
	}
	return d.CheckOptions(coerced)
}
