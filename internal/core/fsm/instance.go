package fsm

import (
	"fmt"

	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

// Instance is the scripting-side handle of one native state machine.
type Instance struct {
	id        native.InstanceID
	template  *Template
	manager   *Manager
	handlers  map[native.NodeID]NodeHandler
	destroyed bool
}

func (i *Instance) ID() native.InstanceID { return i.id }
func (i *Instance) Template() *Template   { return i.template }
func (i *Instance) IsDestroyed() bool     { return i.destroyed }

// CurrentState resolves the engine's current node through the template.
func (i *Instance) CurrentState() *Node {
	if i.stale("CurrentState") {
		return nil
	}
	return i.template.Node(i.manager.backend.GetState(i.id))
}

// SetCurrentState forces a transition. The engine exits the current node now
// and enters node on its next update.
func (i *Instance) SetCurrentState(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidState)
	}
	if i.template.Node(node.id) != node {
		return fmt.Errorf("%w: node %q is not part of template %q", ErrInvalidState, node.name, i.template.name)
	}
	if i.stale("SetCurrentState") {
		return nil
	}
	i.manager.backend.SetState(i.id, node.id)
	return nil
}

// SetNodeHandler installs handler for node, replacing any previous one. A nil
// handler removes it.
func (i *Instance) SetNodeHandler(node *Node, handler NodeHandler) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidState)
	}
	if i.stale("SetNodeHandler") {
		return nil
	}
	if handler == nil {
		delete(i.handlers, node.id)
		return nil
	}
	i.handlers[node.id] = handler
	return nil
}

func (i *Instance) SetTrigger(name string) {
	if i.stale("SetTrigger") {
		return
	}
	i.manager.backend.SetTrigger(i.id, name)
}

func (i *Instance) SetBool(name string, value bool) {
	if i.stale("SetBool") {
		return
	}
	i.manager.backend.SetBool(i.id, name, value)
}

// SetNumber writes a number property. The engine stores numbers as float32.
func (i *Instance) SetNumber(name string, value float32) {
	if i.stale("SetNumber") {
		return
	}
	i.manager.backend.SetFloat(i.id, name, value)
}

// Destroy releases the native instance. Later calls are no-ops.
func (i *Instance) Destroy() {
	i.manager.DestroyInstance(i)
}

func (i *Instance) stale(op string) bool {
	if !i.destroyed {
		return false
	}
	i.manager.logger.Error("stale fsm instance",
		log.String("op", op),
		log.Uint64("instance", uint64(i.id)))
	i.manager.metrics.RecordStale(op)
	return true
}
