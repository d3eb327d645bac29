package fsmdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.starlark.net/syntax"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/scenebridge/internal/core/native"
)

var ErrInvalidDefinition = errors.New("invalid fsm definition")

var validate = validator.New()

// LoadYAML decodes and resolves a definition.
func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode fsm yaml: %w", err)
	}
	if err := d.Resolve(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadJSON decodes and resolves a definition.
func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode fsm json: %w", err)
	}
	if err := d.Resolve(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile picks the decoder from the file extension.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	default:
		return LoadYAML(f)
	}
}

// Resolve validates the definition and assigns ids. It can be called again
// after edits and always yields the same ids for the same names.
func (d *Definition) Resolve() error {
	if err := d.Validate(); err != nil {
		return err
	}

	d.ID = native.TemplateID(stableID(d.Name))
	for i := range d.Nodes {
		d.Nodes[i].ID = native.NodeID(stableID(d.Name, "node", d.Nodes[i].Name))
	}
	for i := range d.Properties {
		d.Properties[i].ID = stableID(d.Name, "property", d.Properties[i].Name)
	}
	for i := range d.Transitions {
		t := &d.Transitions[i]
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("%s->%s#%d", t.From, t.To, i)
		}
		t.ID = stableID(d.Name, "transition", name)
		t.FromID = d.NodeByName(t.From).ID
		t.ToID = d.NodeByName(t.To).ID
	}
	return nil
}

// Validate checks field constraints and the graph: unique names, known
// endpoints, and that each op reads a property of the matching type.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	nodes := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := nodes[n.Name]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidDefinition, n.Name)
		}
		nodes[n.Name] = struct{}{}
	}
	if d.Start != "" {
		if _, ok := nodes[d.Start]; !ok {
			return fmt.Errorf("%w: unknown start node %q", ErrInvalidDefinition, d.Start)
		}
	}

	props := make(map[string]PropertyType, len(d.Properties))
	for _, p := range d.Properties {
		if _, dup := props[p.Name]; dup {
			return fmt.Errorf("%w: duplicate property %q", ErrInvalidDefinition, p.Name)
		}
		props[p.Name] = p.Type
	}

	transitions := make(map[string]struct{}, len(d.Transitions))
	for i, t := range d.Transitions {
		label := t.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		} else {
			if _, dup := transitions[t.Name]; dup {
				return fmt.Errorf("%w: duplicate transition %q", ErrInvalidDefinition, t.Name)
			}
			transitions[t.Name] = struct{}{}
		}
		if _, ok := nodes[t.From]; !ok {
			return fmt.Errorf("%w: transition %s: unknown node %q", ErrInvalidDefinition, label, t.From)
		}
		if _, ok := nodes[t.To]; !ok {
			return fmt.Errorf("%w: transition %s: unknown node %q", ErrInvalidDefinition, label, t.To)
		}
		if t.Op == OpCustom {
			if strings.TrimSpace(t.Condition) == "" {
				return fmt.Errorf("%w: transition %s: custom op needs a condition", ErrInvalidDefinition, label)
			}
			if _, err := syntax.ParseExpr(label, t.Condition, 0); err != nil {
				return fmt.Errorf("%w: transition %s: %v", ErrInvalidDefinition, label, err)
			}
			continue
		}

		typ, ok := props[t.Property]
		if !ok {
			return fmt.Errorf("%w: transition %s: unknown property %q", ErrInvalidDefinition, label, t.Property)
		}
		if want := opPropertyType(t.Op); typ != want {
			return fmt.Errorf("%w: transition %s: op %s needs a %s property, %q is %s",
				ErrInvalidDefinition, label, t.Op, want, t.Property, typ)
		}
	}
	return nil
}

func opPropertyType(op Op) PropertyType {
	switch op {
	case OpTrigger:
		return PropertyTrigger
	case OpOn, OpOff:
		return PropertyBool
	default:
		return PropertyNumber
	}
}
