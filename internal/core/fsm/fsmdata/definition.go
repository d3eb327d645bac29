// Package fsmdata holds the declarative form of state machine templates.
package fsmdata

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/scenebridge/internal/core/native"
)

type PropertyType string

const (
	PropertyTrigger PropertyType = "trigger"
	PropertyBool    PropertyType = "bool"
	PropertyNumber  PropertyType = "number"
)

type Op string

const (
	OpTrigger        Op = "trigger"
	OpOn             Op = "on"
	OpOff            Op = "off"
	OpEqual          Op = "equal"
	OpGreater        Op = "greater"
	OpGreaterOrEqual Op = "greater_or_equal"
	OpLess           Op = "less"
	OpLessOrEqual    Op = "less_or_equal"
	OpCustom         Op = "custom"
)

// Numeric reports whether the op compares a number property against Value.
func (o Op) Numeric() bool {
	switch o {
	case OpEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		return true
	default:
		return false
	}
}

// Definition describes one state machine template.
type Definition struct {
	ID          native.TemplateID `json:"-" yaml:"-"`
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Start       string            `json:"start,omitempty" yaml:"start,omitempty"`
	Nodes       []Node            `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Properties  []Property        `json:"properties,omitempty" yaml:"properties,omitempty" validate:"dive"`
	Transitions []Transition      `json:"transitions,omitempty" yaml:"transitions,omitempty" validate:"dive"`
}

type Node struct {
	ID   native.NodeID `json:"-" yaml:"-"`
	Name string        `json:"name" yaml:"name" validate:"required"`
}

type Property struct {
	ID   uint64       `json:"-" yaml:"-"`
	Name string       `json:"name" yaml:"name" validate:"required"`
	Type PropertyType `json:"type" yaml:"type" validate:"required,oneof=trigger bool number"`
}

// Transition fires from one node to another when its condition holds.
// Condition is a Starlark expression and is only read for OpCustom.
type Transition struct {
	ID        uint64  `json:"-" yaml:"-"`
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
	From      string  `json:"from" yaml:"from" validate:"required"`
	To        string  `json:"to" yaml:"to" validate:"required"`
	Property  string  `json:"property,omitempty" yaml:"property,omitempty"`
	Op        Op      `json:"op" yaml:"op" validate:"required,oneof=trigger on off equal greater greater_or_equal less less_or_equal custom"`
	Value     float32 `json:"value,omitempty" yaml:"value,omitempty"`
	Condition string  `json:"condition,omitempty" yaml:"condition,omitempty"`

	FromID native.NodeID `json:"-" yaml:"-"`
	ToID   native.NodeID `json:"-" yaml:"-"`
}

// StartNode returns the node an instance begins in: the named start node,
// or the first node when none is named.
func (d *Definition) StartNode() *Node {
	if d.Start != "" {
		return d.NodeByName(d.Start)
	}
	if len(d.Nodes) == 0 {
		return nil
	}
	return &d.Nodes[0]
}

func (d *Definition) NodeByName(name string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i]
		}
	}
	return nil
}

func (d *Definition) NodeByID(id native.NodeID) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

func (d *Definition) Property(name string) *Property {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return &d.Properties[i]
		}
	}
	return nil
}

// TransitionsFrom returns the transitions leaving node in declaration order.
func (d *Definition) TransitionsFrom(node native.NodeID) []*Transition {
	var out []*Transition
	for i := range d.Transitions {
		if d.Transitions[i].FromID == node {
			out = append(out, &d.Transitions[i])
		}
	}
	return out
}

// stableID hashes a path of names into a non-zero id, so a template loaded
// twice yields the same ids.
func stableID(parts ...string) uint64 {
	id := xxhash.Sum64String(strings.Join(parts, "/"))
	if id == 0 {
		return 1
	}
	return id
}
