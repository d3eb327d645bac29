package scene

import (
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/native/memstore"
)

// spyStore counts every native call before delegating to the in-memory
// engine. quiet suppresses the re-entrant script callback.
type spyStore struct {
	mem   *memstore.Store
	cb    native.Callbacks
	calls []string
	quiet bool
	// failAdds makes AddComponent and AddScriptComponent report failure
	failAdds bool
}

var _ native.Store = (*spyStore)(nil)

func (s *spyStore) record(op string) { s.calls = append(s.calls, op) }

func (s *spyStore) reset() { s.calls = nil }

func (s *spyStore) GetActive(sc native.SceneID, o native.ObjectID) bool {
	s.record("GetActive")
	return s.mem.GetActive(sc, o)
}

func (s *spyStore) SetActive(sc native.SceneID, o native.ObjectID, v bool) {
	s.record("SetActive")
	s.mem.SetActive(sc, o, v)
}

func (s *spyStore) GetName(sc native.SceneID, o native.ObjectID) string {
	s.record("GetName")
	return s.mem.GetName(sc, o)
}

func (s *spyStore) SetName(sc native.SceneID, o native.ObjectID, v string) {
	s.record("SetName")
	s.mem.SetName(sc, o, v)
}

func (s *spyStore) GetParent(sc native.SceneID, o native.ObjectID) native.ObjectID {
	s.record("GetParent")
	return s.mem.GetParent(sc, o)
}

func (s *spyStore) SetParent(sc native.SceneID, o, p native.ObjectID) {
	s.record("SetParent")
	s.mem.SetParent(sc, o, p)
}

func (s *spyStore) GetSiblingIndex(sc native.SceneID, o native.ObjectID) int {
	s.record("GetSiblingIndex")
	return s.mem.GetSiblingIndex(sc, o)
}

func (s *spyStore) SetSiblingIndex(sc native.SceneID, o native.ObjectID, i int) {
	s.record("SetSiblingIndex")
	s.mem.SetSiblingIndex(sc, o, i)
}

func (s *spyStore) GetChildCount(sc native.SceneID, o native.ObjectID) int {
	s.record("GetChildCount")
	return s.mem.GetChildCount(sc, o)
}

func (s *spyStore) GetChild(sc native.SceneID, o native.ObjectID, i int) native.ObjectID {
	s.record("GetChild")
	return s.mem.GetChild(sc, o, i)
}

func (s *spyStore) GetComponentID(sc native.SceneID, o native.ObjectID, t string) native.ComponentID {
	s.record("GetComponentID")
	return s.mem.GetComponentID(sc, o, t)
}

func (s *spyStore) AddComponent(sc native.SceneID, o native.ObjectID, t string) native.ComponentID {
	s.record("AddComponent")
	if s.failAdds {
		return 0
	}
	return s.mem.AddComponent(sc, o, t)
}

func (s *spyStore) AddScriptComponent(sc native.SceneID, o native.ObjectID, idx native.TypeIndex) native.ComponentID {
	s.record("AddScriptComponent")
	if s.failAdds {
		return 0
	}
	if s.quiet {
		s.mem.SetCallbacks(nil)
		defer s.mem.SetCallbacks(s.cb)
	}
	return s.mem.AddScriptComponent(sc, o, idx)
}

func (s *spyStore) RemoveComponent(sc native.SceneID, o native.ObjectID, t string) native.ComponentID {
	s.record("RemoveComponent")
	return s.mem.RemoveComponent(sc, o, t)
}

func (s *spyStore) RemoveComponentByID(sc native.SceneID, o native.ObjectID, c native.ComponentID) {
	s.record("RemoveComponentByID")
	s.mem.RemoveComponentByID(sc, o, c)
}

func (s *spyStore) GetProperty(sc native.SceneID, o native.ObjectID, c native.ComponentID, name string) (any, bool) {
	s.record("GetProperty")
	return s.mem.GetProperty(sc, o, c, name)
}

func (s *spyStore) SetProperty(sc native.SceneID, o native.ObjectID, c native.ComponentID, name string, v any) {
	s.record("SetProperty")
	s.mem.SetProperty(sc, o, c, name, v)
}

func (s *spyStore) SetState(i native.InstanceID, n native.NodeID) {
	s.record("SetState")
	s.mem.SetState(i, n)
}

func (s *spyStore) GetState(i native.InstanceID) native.NodeID {
	s.record("GetState")
	return s.mem.GetState(i)
}

func (s *spyStore) SetTrigger(i native.InstanceID, name string) {
	s.record("SetTrigger")
	s.mem.SetTrigger(i, name)
}

func (s *spyStore) SetBool(i native.InstanceID, name string, v bool) {
	s.record("SetBool")
	s.mem.SetBool(i, name, v)
}

func (s *spyStore) SetFloat(i native.InstanceID, name string, v float32) {
	s.record("SetFloat")
	s.mem.SetFloat(i, name, v)
}

// sceneCallbacks routes engine notifications for one scene.
type sceneCallbacks struct {
	native.NopCallbacks
	scene *Scene
}

func (c *sceneCallbacks) OnScriptComponentCreated(_ native.SceneID, obj native.ObjectID, comp native.ComponentID, idx native.TypeIndex) {
	c.scene.OnScriptComponentCreated(obj, comp, idx)
}

func (c *sceneCallbacks) OnObjectDestroyed(_ native.SceneID, obj native.ObjectID) {
	c.scene.OnObjectDestroyed(obj)
}
