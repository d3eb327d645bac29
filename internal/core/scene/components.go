package scene

import (
	"fmt"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/native"
)

// ComponentEvent is the payload of component.added and component.removed.
type ComponentEvent struct {
	Scene      native.SceneID     `json:"scene"`
	Object     native.ObjectID    `json:"object"`
	Component  native.ComponentID `json:"component"`
	Type       string             `json:"type"`
	Provenance string             `json:"provenance"`
}

// GetComponent returns the component of type T on o, or the zero T when the
// object has none. T may be a native type, a script type or a capability
// interface; script lookups return the first match in insertion order.
func GetComponent[T any](o *SceneObject) (T, error) {
	var zero T
	entry, err := Lookup[T](o.scene.registry)
	if err != nil {
		return zero, err
	}
	if o.stale("GetComponent") {
		return zero, nil
	}
	c, err := o.lookup(entry)
	if err != nil {
		return zero, err
	}
	return as[T](c), nil
}

// AddComponent creates a component of type T on o. When the engine already
// attached the script peer while creating it, that handle is returned.
func AddComponent[T any](o *SceneObject) (T, error) {
	var zero T
	entry, err := Lookup[T](o.scene.registry)
	if err != nil {
		return zero, err
	}
	if !entry.Instantiable() {
		return zero, fmt.Errorf("%w: %s", ErrNotInstantiable, entry.name)
	}
	if o.stale("AddComponent") {
		return zero, nil
	}
	c, err := o.add(entry)
	if err != nil {
		return zero, err
	}
	return as[T](c), nil
}

// RemoveComponent removes the component of type T from o. Removing an absent
// component is a no-op.
func RemoveComponent[T any](o *SceneObject) error {
	entry, err := Lookup[T](o.scene.registry)
	if err != nil {
		return err
	}
	if o.stale("RemoveComponent") {
		return nil
	}
	o.remove(entry)
	return nil
}

// HasComponent reports whether o has a component of type T without
// materializing a handle.
func HasComponent[T any](o *SceneObject) (bool, error) {
	entry, err := Lookup[T](o.scene.registry)
	if err != nil {
		return false, err
	}
	if o.stale("HasComponent") {
		return false, nil
	}
	return o.has(entry), nil
}

// GetComponentNamed is GetComponent keyed by registered name. It returns nil
// when the component is absent.
func (o *SceneObject) GetComponentNamed(name string) (Component, error) {
	entry, err := o.scene.registry.LookupName(name)
	if err != nil {
		return nil, err
	}
	if o.stale("GetComponent") {
		return nil, nil
	}
	return o.lookup(entry)
}

// AddComponentNamed is AddComponent keyed by registered name.
func (o *SceneObject) AddComponentNamed(name string) (Component, error) {
	entry, err := o.scene.registry.LookupName(name)
	if err != nil {
		return nil, err
	}
	if !entry.Instantiable() {
		return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, entry.name)
	}
	if o.stale("AddComponent") {
		return nil, nil
	}
	return o.add(entry)
}

// RemoveComponentHandle removes the given component. Handles that are nil,
// already destroyed or owned by another object are ignored.
func (o *SceneObject) RemoveComponentHandle(c Component) {
	if o.stale("RemoveComponentHandle") || c == nil {
		return
	}
	b := c.base()
	if b.destroyed || b.object != o {
		return
	}
	o.store().RemoveComponentByID(o.sceneID(), o.id, b.id)
	o.evict(b.id)
}

func as[T any](c Component) T {
	t, _ := c.(T)
	return t
}

func (o *SceneObject) lookup(entry *TypeEntry) (Component, error) {
	prov := entry.provenance.String()
	if entry.provenance == ProvenanceNative {
		id := o.store().GetComponentID(o.sceneID(), o.id, entry.nativeName)
		if id == 0 {
			return nil, nil
		}
		if e, ok := o.cache.get(id); ok {
			o.scene.metrics.RecordLookup(prov, true)
			return e.comp, nil
		}
		o.scene.metrics.RecordLookup(prov, false)
		return o.materialize(entry, id)
	}

	e, ok := o.cache.find(entry)
	o.scene.metrics.RecordLookup(prov, ok)
	if !ok {
		return nil, nil
	}
	return e.comp, nil
}

func (o *SceneObject) has(entry *TypeEntry) bool {
	if entry.provenance == ProvenanceNative {
		return o.store().GetComponentID(o.sceneID(), o.id, entry.nativeName) != 0
	}
	_, ok := o.cache.find(entry)
	return ok
}

func (o *SceneObject) add(entry *TypeEntry) (Component, error) {
	var id native.ComponentID
	switch entry.provenance {
	case ProvenanceNative:
		id = o.store().AddComponent(o.sceneID(), o.id, entry.nativeName)
	case ProvenanceScript:
		// may call back into Scene.OnScriptComponentCreated before returning
		id = o.store().AddScriptComponent(o.sceneID(), o.id, entry.index)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, entry.name)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: %s on object %d", ErrComponentCreationFailed, entry.name, o.id)
	}
	if o.destroyed {
		return nil, fmt.Errorf("%w: object %d destroyed during creation", ErrComponentCreationFailed, o.id)
	}
	if e, ok := o.cache.get(id); ok {
		return e.comp, nil
	}
	return o.attach(entry, id)
}

func (o *SceneObject) remove(entry *TypeEntry) {
	if entry.provenance == ProvenanceNative {
		id := o.store().RemoveComponent(o.sceneID(), o.id, entry.nativeName)
		if id == 0 {
			return
		}
		o.evict(id)
		return
	}

	e, ok := o.cache.find(entry)
	if !ok {
		return
	}
	o.store().RemoveComponentByID(o.sceneID(), o.id, e.id)
	o.evict(e.id)
}

// materialize builds and caches a handle for a component that already
// exists in the engine.
func (o *SceneObject) materialize(entry *TypeEntry, id native.ComponentID) (Component, error) {
	c := entry.ctor()
	if c == nil {
		return nil, fmt.Errorf("%w: constructor of %s returned nil", ErrComponentCreationFailed, entry.name)
	}
	b := c.base()
	b.object = o
	b.id = id
	b.entry = entry
	b.destroyed = false

	o.cache.put(id, c, entry)
	o.scene.metrics.RecordCreated(entry.provenance.String())
	return c, nil
}

// attach materializes a newly created component, announces it and starts
// script components when the scene is running.
func (o *SceneObject) attach(entry *TypeEntry, id native.ComponentID) (Component, error) {
	c, err := o.materialize(entry, id)
	if err != nil {
		return nil, err
	}
	o.scene.publish(bus.TypeComponentAdded, o.componentEvent(id, entry))
	if entry.provenance == ProvenanceScript && o.scene.running {
		if s, ok := c.(Starter); ok {
			s.Start()
		}
	}
	return c, nil
}

func (o *SceneObject) evict(id native.ComponentID) {
	e, ok := o.cache.evict(id)
	if !ok {
		return
	}
	e.comp.base().destroyed = true
	o.scene.metrics.RecordRemoved(e.entry.provenance.String())
	o.scene.publish(bus.TypeComponentRemoved, o.componentEvent(id, e.entry))
}

func (o *SceneObject) componentEvent(id native.ComponentID, entry *TypeEntry) ComponentEvent {
	return ComponentEvent{
		Scene:      o.scene.id,
		Object:     o.id,
		Component:  id,
		Type:       entry.name,
		Provenance: entry.provenance.String(),
	}
}
