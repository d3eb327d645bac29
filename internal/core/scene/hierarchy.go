package scene

import "github.com/zeusync/scenebridge/internal/core/native"

func (o *SceneObject) Active() bool {
	if o.stale("Active") {
		return false
	}
	return o.store().GetActive(o.sceneID(), o.id)
}

func (o *SceneObject) SetActive(active bool) {
	if o.stale("SetActive") {
		return
	}
	o.store().SetActive(o.sceneID(), o.id, active)
}

func (o *SceneObject) Name() string {
	if o.stale("Name") {
		return ""
	}
	return o.store().GetName(o.sceneID(), o.id)
}

func (o *SceneObject) SetName(name string) {
	if o.stale("SetName") {
		return
	}
	o.store().SetName(o.sceneID(), o.id, name)
}

// Parent returns nil for root objects.
func (o *SceneObject) Parent() *SceneObject {
	if o.stale("Parent") {
		return nil
	}
	return o.scene.Object(o.store().GetParent(o.sceneID(), o.id))
}

// SetParent moves o under parent. A nil parent moves it to the scene root.
func (o *SceneObject) SetParent(parent *SceneObject) {
	if o.stale("SetParent") {
		return
	}
	var id native.ObjectID
	if parent != nil {
		if parent.stale("SetParent") {
			return
		}
		id = parent.id
	}
	o.store().SetParent(o.sceneID(), o.id, id)
}

func (o *SceneObject) SiblingIndex() int {
	if o.stale("SiblingIndex") {
		return 0
	}
	return o.store().GetSiblingIndex(o.sceneID(), o.id)
}

func (o *SceneObject) SetSiblingIndex(index int) {
	if o.stale("SetSiblingIndex") {
		return
	}
	o.store().SetSiblingIndex(o.sceneID(), o.id, index)
}

func (o *SceneObject) ChildCount() int {
	if o.stale("ChildCount") {
		return 0
	}
	return o.store().GetChildCount(o.sceneID(), o.id)
}

// Child returns nil when index is out of range.
func (o *SceneObject) Child(index int) *SceneObject {
	if o.stale("Child") {
		return nil
	}
	return o.scene.Object(o.store().GetChild(o.sceneID(), o.id, index))
}

// Children resolves every child in sibling order.
func (o *SceneObject) Children() []*SceneObject {
	if o.stale("Children") {
		return nil
	}
	n := o.store().GetChildCount(o.sceneID(), o.id)
	out := make([]*SceneObject, 0, n)
	for i := 0; i < n; i++ {
		if c := o.scene.Object(o.store().GetChild(o.sceneID(), o.id, i)); c != nil {
			out = append(out, c)
		}
	}
	return out
}
