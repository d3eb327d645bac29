package scene

import "github.com/zeusync/scenebridge/internal/core/native"

// SceneObject is the scripting-side handle of an engine object. Handles are
// created by Scene.Object and are unique per object id.
type SceneObject struct {
	id        native.ObjectID
	scene     *Scene
	destroyed bool
	cache     *componentCache
}

func newSceneObject(s *Scene, id native.ObjectID) *SceneObject {
	return &SceneObject{id: id, scene: s, cache: newComponentCache()}
}

func (o *SceneObject) ID() native.ObjectID { return o.id }

func (o *SceneObject) IsDestroyed() bool { return o.destroyed }

// Scene returns the owning scene, or nil once the object is destroyed.
func (o *SceneObject) Scene() *Scene {
	if o.stale("Scene") {
		return nil
	}
	return o.scene
}

// Components lists the cached handles in insertion order. Native components
// only appear once they have been looked up or added.
func (o *SceneObject) Components() []Component {
	if o.stale("Components") {
		return nil
	}
	entries := o.cache.snapshot()
	out := make([]Component, len(entries))
	for i, e := range entries {
		out[i] = e.comp
	}
	return out
}

func (o *SceneObject) stale(op string) bool {
	if !o.destroyed {
		return false
	}
	o.scene.reportStale("object", op, o.id, 0)
	return true
}

// markDestroyed flags the object and every cached component, then empties
// the cache.
func (o *SceneObject) markDestroyed() []*cacheEntry {
	o.destroyed = true
	entries := o.cache.clear()
	for _, e := range entries {
		e.comp.base().destroyed = true
	}
	return entries
}

func (o *SceneObject) sceneID() native.SceneID { return o.scene.id }

func (o *SceneObject) store() native.Store { return o.scene.store }
