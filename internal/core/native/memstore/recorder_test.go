package memstore

import "github.com/zeusync/scenebridge/internal/core/native"

type fsmEvent struct {
	kind string
	inst native.InstanceID
	node native.NodeID
}

type recorder struct {
	created   []native.ComponentID
	destroyed []native.ObjectID
	fsm       []fsmEvent

	onEntry func(inst native.InstanceID, node native.NodeID)
}

func (r *recorder) OnScriptComponentCreated(_ native.SceneID, _ native.ObjectID, comp native.ComponentID, _ native.TypeIndex) {
	r.created = append(r.created, comp)
}

func (r *recorder) OnObjectDestroyed(_ native.SceneID, obj native.ObjectID) {
	r.destroyed = append(r.destroyed, obj)
}

func (r *recorder) OnEntry(inst native.InstanceID, node native.NodeID) {
	r.fsm = append(r.fsm, fsmEvent{"entry", inst, node})
	if r.onEntry != nil {
		r.onEntry(inst, node)
	}
}

func (r *recorder) OnExit(inst native.InstanceID, node native.NodeID) {
	r.fsm = append(r.fsm, fsmEvent{"exit", inst, node})
}
