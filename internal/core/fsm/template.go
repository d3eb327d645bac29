// Package fsm maps native state machine instances to scripting-side
// handlers. The engine evaluates transitions; this package only routes the
// resulting entry and exit notifications.
package fsm

import (
	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/native"
)

type Node struct {
	id   native.NodeID
	name string
}

func (n *Node) ID() native.NodeID { return n.id }
func (n *Node) Name() string      { return n.name }

// Template is the immutable node graph shared by every instance built from
// one definition.
type Template struct {
	id     native.TemplateID
	name   string
	nodes  []*Node
	byID   map[native.NodeID]*Node
	byName map[string]*Node
	start  *Node
	def    *fsmdata.Definition
}

func newTemplate(def *fsmdata.Definition) *Template {
	t := &Template{
		id:     def.ID,
		name:   def.Name,
		nodes:  make([]*Node, 0, len(def.Nodes)),
		byID:   make(map[native.NodeID]*Node, len(def.Nodes)),
		byName: make(map[string]*Node, len(def.Nodes)),
		def:    def,
	}
	for _, n := range def.Nodes {
		node := &Node{id: n.ID, name: n.Name}
		t.nodes = append(t.nodes, node)
		t.byID[node.id] = node
		t.byName[node.name] = node
	}
	if start := def.StartNode(); start != nil {
		t.start = t.byID[start.ID]
	}
	return t
}

func (t *Template) ID() native.TemplateID { return t.id }
func (t *Template) Name() string          { return t.name }
func (t *Template) Start() *Node          { return t.start }

// Nodes returns the nodes in declaration order.
func (t *Template) Nodes() []*Node {
	return append([]*Node(nil), t.nodes...)
}

// Node resolves a node id; 0 and foreign ids yield nil.
func (t *Template) Node(id native.NodeID) *Node {
	return t.byID[id]
}

func (t *Template) NodeByName(name string) *Node {
	return t.byName[name]
}

// Definition returns the data the template was built from.
func (t *Template) Definition() *fsmdata.Definition {
	return t.def
}
