package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alpkeskin/gotoon"
	"gopkg.in/yaml.v3"
)

// Format selects how a plan is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatToon Format = "toon"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatToon:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be: text, json, yaml, toon)", s)
}

// Encode writes the plan to w in the given format
func (p *Plan) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err

	case FormatYAML:
		ops := p.ops
		if ops == nil {
			ops = []Operation{}
		}
		out, err := yaml.Marshal(ops)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(out)
		return err

	case FormatToon:
		// gotoon walks plain values; go through JSON so payload tags apply.
		generic, err := toGeneric(p)
		if err != nil {
			return err
		}
		out, err := gotoon.Encode(map[string]any{"operations": generic})
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err

	case FormatText, "":
		return p.encodeText(w)
	}
	return fmt.Errorf("invalid format: %s", format)
}

func (p *Plan) encodeText(w io.Writer) error {
	if p.IsEmpty() {
		_, err := fmt.Fprintln(w, "Nothing to create: target is in sync")
		return err
	}
	if _, err := fmt.Fprintf(w, "Plan: %d operation(s)\n\n", p.Len()); err != nil {
		return err
	}
	for i, op := range p.ops {
		if _, err := fmt.Fprintf(w, "  %3d. %-26s %s\n", i+1, op.Name, Describe(op.Data)); err != nil {
			return err
		}
	}
	return nil
}

// Describe renders a short human description of a payload
func Describe(p Payload) string {
	switch in := p.(type) {
	case ModelInput:
		return in.APIID
	case ComponentInput:
		return in.APIID
	case EnumerationInput:
		return fmt.Sprintf("%s (%d values)", in.APIID, len(in.Values))
	case SimpleFieldInput:
		return fmt.Sprintf("%s.%s: %s", in.ParentAPIID, in.APIID, in.Type)
	case EnumerableFieldInput:
		return fmt.Sprintf("%s.%s -> enum %s", in.ParentAPIID, in.APIID, in.EnumerationAPIID)
	case ComponentFieldInput:
		return fmt.Sprintf("%s.%s -> component %s", in.ParentAPIID, in.APIID, in.ComponentAPIID)
	case ComponentUnionFieldInput:
		return fmt.Sprintf("%s.%s -> components %s", in.ParentAPIID, in.APIID, strings.Join(in.ComponentAPIIDs, "|"))
	case RelationalFieldInput:
		arrow := "<->"
		if in.ReverseField.IsUnidirectional {
			arrow = "->"
		}
		return fmt.Sprintf("%s.%s %s %s.%s", in.ParentAPIID, in.APIID, arrow, in.ReverseField.ModelAPIID, in.ReverseField.APIID)
	case UnionFieldInput:
		return fmt.Sprintf("%s.%s <-> %s.%s", in.ParentAPIID, in.APIID, strings.Join(in.ReverseField.ModelAPIIDs, "|"), in.ReverseField.APIID)
	}
	return fmt.Sprintf("%v", p)
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return generic, nil
}
