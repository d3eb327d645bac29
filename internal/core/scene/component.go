package scene

import (
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

// Component is a typed handle to an engine component. Implementations embed
// NativeComponent or Behaviour.
type Component interface {
	ComponentID() native.ComponentID
	Object() *SceneObject
	IsDestroyed() bool

	base() *componentBase
}

type componentBase struct {
	object    *SceneObject
	id        native.ComponentID
	entry     *TypeEntry
	destroyed bool
}

func (b *componentBase) ComponentID() native.ComponentID { return b.id }
func (b *componentBase) Object() *SceneObject            { return b.object }
func (b *componentBase) IsDestroyed() bool               { return b.destroyed }
func (b *componentBase) base() *componentBase            { return b }

func (b *componentBase) stale(op string) bool {
	if !b.destroyed {
		return false
	}
	if b.object != nil {
		b.object.scene.reportStale("component", op, b.object.id, b.id)
	}
	return true
}

// NativeComponent is the base of engine-owned component types. Its data
// lives in the engine and is reached through properties.
type NativeComponent struct {
	componentBase
}

// Property reads one engine-side property. A destroyed component reads
// nothing.
func (n *NativeComponent) Property(name string) (any, bool) {
	if n.stale("Property") || n.object == nil {
		return nil, false
	}
	o := n.object
	return o.scene.store.GetProperty(o.scene.id, o.id, n.id, name)
}

func (n *NativeComponent) SetProperty(name string, value any) {
	if n.stale("SetProperty") || n.object == nil {
		return
	}
	o := n.object
	o.scene.store.SetProperty(o.scene.id, o.id, n.id, name, value)
}

// Behaviour is the base of script component types.
type Behaviour struct {
	componentBase
}

// Logger returns the scene logger annotated with this component.
func (b *Behaviour) Logger() log.Log {
	if b.object == nil {
		return log.Nop()
	}
	return b.object.scene.logger.With(
		log.Uint64("object", uint64(b.object.id)),
		log.Uint64("component", uint64(b.id)))
}

// Lifecycle hooks a script component may implement.
type (
	Starter interface {
		Start()
	}
	Updater interface {
		Update(dt float64)
	}
	Stopper interface {
		Stop()
	}
	Validator interface {
		OnValidate()
	}
)
