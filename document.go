package fsm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

// TypedValue carries a value together with its kind through documents,
// so that 1.0 stays a float after a JSON or YAML round trip.
type TypedValue struct {
	Type  string `json:"type"  yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// Document is the serialized form of a Definition.
type Document struct {
	Start       string          `json:"start"                 yaml:"start"`
	Params      []ParamDoc      `json:"params,omitempty"      yaml:"params,omitempty"`
	Triggers    []string        `json:"triggers,omitempty"    yaml:"triggers,omitempty"`
	States      []StateDoc      `json:"states"                yaml:"states"`
	Transitions []TransitionDoc `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

type ParamDoc struct {
	Name    string `json:"name"    yaml:"name"`
	Type    string `json:"type"    yaml:"type"`
	Default any    `json:"default" yaml:"default"`
}

type StateDoc struct {
	Name    string    `json:"name"              yaml:"name"`
	Marker  string    `json:"marker,omitempty"  yaml:"marker,omitempty"`
	Script  string    `json:"script,omitempty"  yaml:"script,omitempty"`
	Machine *Document `json:"machine,omitempty" yaml:"machine,omitempty"`
}

type TransitionDoc struct {
	From       string         `json:"from"                 yaml:"from"`
	To         string         `json:"to"                   yaml:"to"`
	Trigger    string         `json:"trigger,omitempty"    yaml:"trigger,omitempty"`
	Priority   int            `json:"priority,omitempty"   yaml:"priority,omitempty"`
	Stack      string         `json:"stack,omitempty"      yaml:"stack,omitempty"`
	Conditions []ConditionDoc `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

type ConditionDoc struct {
	Param string `json:"param" yaml:"param"`
	Op    string `json:"op"    yaml:"op"`
	Type  string `json:"type"  yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

func typedValue(v Value) TypedValue { return TypedValue{Type: v.kind.String(), Value: v.Any()} }

func (tv TypedValue) value() (Value, error) {
	k, err := ParseKind(tv.Type)
	if err != nil {
		return Value{}, err
	}

	return valueAs(k, tv.Value)
}

// Document returns the serializable form of d, nested machines included.
func (d *Definition) Document() *Document {
	doc := &Document{Start: string(d.start)}

	for _, p := range d.params {
		doc.Params = append(doc.Params, ParamDoc{
			Name:    p.Name.Std(),
			Type:    p.Default.kind.String(),
			Default: p.Default.Any(),
		})
	}

	for _, t := range d.triggers {
		doc.Triggers = append(doc.Triggers, string(t))
	}

	for _, s := range d.states {
		sd := StateDoc{Name: string(s.Name), Script: s.Script.Std()}
		if s.Marker != MarkerNone {
			sd.Marker = s.Marker.String()
		}

		if s.Machine != nil {
			sd.Machine = s.Machine.Document()
		}

		doc.States = append(doc.States, sd)
	}

	for _, t := range d.transitions {
		td := TransitionDoc{
			From:     string(t.From),
			To:       string(t.To),
			Trigger:  string(t.Trigger),
			Priority: t.Priority,
		}

		if t.Stack != StackNone {
			td.Stack = t.Stack.String()
		}

		for _, c := range t.Conditions {
			td.Conditions = append(td.Conditions, ConditionDoc{
				Param: c.Param.Std(),
				Op:    c.Op.String(),
				Type:  c.Value.kind.String(),
				Value: c.Value.Any(),
			})
		}

		doc.Transitions = append(doc.Transitions, td)
	}

	return doc
}

// Build decodes and validates the document into a Definition.
func (doc *Document) Build() (*Definition, error) {
	b := NewBuilder(State(doc.Start))

	for _, p := range doc.Params {
		v, err := TypedValue{Type: p.Type, Value: p.Default}.value()
		if err != nil {
			return nil, &ErrInvalidDefinition{Reason: fmt.Sprintf("parameter %q", p.Name), Err: err}
		}

		b.Param(g.String(p.Name), v)
	}

	for _, t := range doc.Triggers {
		b.Trigger(Trigger(t))
	}

	for _, s := range doc.States {
		marker, err := ParseMarker(s.Marker)
		if err != nil {
			return nil, &ErrInvalidDefinition{Reason: fmt.Sprintf("state %q", s.Name), Err: err}
		}

		sd := StateDef{Name: State(s.Name), Marker: marker, Script: g.String(s.Script)}

		if s.Machine != nil {
			if sd.Machine, err = s.Machine.Build(); err != nil {
				return nil, &ErrInvalidDefinition{Reason: fmt.Sprintf("machine of state %q", s.Name), Err: err}
			}
		}

		b.AddState(sd)
	}

	for i, t := range doc.Transitions {
		stack, err := ParseStackMode(t.Stack)
		if err != nil {
			return nil, &ErrInvalidDefinition{Reason: fmt.Sprintf("transition %d", i), Err: err}
		}

		tr := Transition{
			From:     State(t.From),
			To:       State(t.To),
			Trigger:  Trigger(t.Trigger),
			Priority: t.Priority,
			Stack:    stack,
		}

		for _, c := range t.Conditions {
			cond, err := c.condition()
			if err != nil {
				return nil, &ErrInvalidDefinition{Reason: fmt.Sprintf("transition %d", i), Err: err}
			}

			tr.Conditions = append(tr.Conditions, cond)
		}

		b.Add(tr)
	}

	return b.Build()
}

func (c ConditionDoc) condition() (Condition, error) {
	op, err := ParseOp(c.Op)
	if err != nil {
		return Condition{}, err
	}

	v, err := TypedValue{Type: c.Type, Value: c.Value}.value()
	if err != nil {
		return Condition{}, fmt.Errorf("condition on %q: %w", c.Param, err)
	}

	return When(g.String(c.Param), op, v), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (d *Definition) MarshalJSON() ([]byte, error) { return json.Marshal(d.Document()) }

// UnmarshalJSON implements the json.Unmarshaler interface. The decoded graph is
// fully validated; d is only replaced when it is valid.
func (d *Definition) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}

	*d = *parsed

	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (d *Definition) MarshalYAML() (any, error) { return d.Document(), nil }

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	var doc Document
	if err := node.Decode(&doc); err != nil {
		return err
	}

	parsed, err := doc.Build()
	if err != nil {
		return err
	}

	*d = *parsed

	return nil
}

// ParseJSON decodes and validates a JSON definition document.
func ParseJSON(data []byte) (*Definition, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fsm: unmarshal definition: %w", err)
	}

	return doc.Build()
}

// ParseYAML decodes and validates a YAML definition document.
func ParseYAML(data []byte) (*Definition, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fsm: unmarshal definition: %w", err)
	}

	return doc.Build()
}

// LoadDefinition reads a definition file, choosing the format by extension
// (.json, .yaml or .yml).
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fsm: load %s: %w", path, err)
	}

	var def *Definition

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		def, err = ParseJSON(data)
	case ".yaml", ".yml":
		def, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("fsm: load %s: unsupported definition format", path)
	}

	if err != nil {
		return nil, fmt.Errorf("fsm: load %s: %w", path, err)
	}

	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}

	return false
}
