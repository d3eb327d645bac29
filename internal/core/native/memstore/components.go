package memstore

import (
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

func (s *Store) GetComponentID(scene native.SceneID, obj native.ObjectID, typeName string) native.ComponentID {
	if o := s.object(scene, obj); o != nil {
		return o.natives[typeKey(typeName)]
	}
	return 0
}

// AddComponent creates a native component. An object holds at most one
// component per native type, so a second add of the same type fails.
func (s *Store) AddComponent(scene native.SceneID, obj native.ObjectID, typeName string) native.ComponentID {
	o := s.object(scene, obj)
	if o == nil || typeName == "" {
		return 0
	}
	key := typeKey(typeName)
	if _, exists := o.natives[key]; exists {
		s.logger.Debug("native component already present",
			log.Uint64("object", uint64(obj)),
			log.String("type", typeName))
		return 0
	}
	id := native.ComponentID(newID())
	o.natives[key] = id
	o.nativeTypes[id] = key
	return id
}

// AddScriptComponent allocates the script peer and reports it through
// OnScriptComponentCreated before returning.
func (s *Store) AddScriptComponent(scene native.SceneID, obj native.ObjectID, typeIndex native.TypeIndex) native.ComponentID {
	o := s.object(scene, obj)
	if o == nil || typeIndex < 0 {
		return 0
	}
	id := native.ComponentID(newID())
	o.scripts[id] = typeIndex
	s.callbacks.OnScriptComponentCreated(scene, obj, id, typeIndex)
	return id
}

// AttachScript creates a script component without a binding-layer request,
// the way a scene loader or editor would.
func (s *Store) AttachScript(scene native.SceneID, obj native.ObjectID, typeIndex native.TypeIndex) native.ComponentID {
	return s.AddScriptComponent(scene, obj, typeIndex)
}

func (s *Store) RemoveComponent(scene native.SceneID, obj native.ObjectID, typeName string) native.ComponentID {
	o := s.object(scene, obj)
	if o == nil {
		return 0
	}
	key := typeKey(typeName)
	id, ok := o.natives[key]
	if !ok {
		return 0
	}
	delete(o.natives, key)
	delete(o.nativeTypes, id)
	delete(o.props, id)
	return id
}

func (s *Store) RemoveComponentByID(scene native.SceneID, obj native.ObjectID, comp native.ComponentID) {
	o := s.object(scene, obj)
	if o == nil {
		return
	}
	if key, ok := o.nativeTypes[comp]; ok {
		delete(o.natives, key)
		delete(o.nativeTypes, comp)
	}
	delete(o.scripts, comp)
	delete(o.props, comp)
}

// ComponentCount reports native plus script components on obj.
func (s *Store) ComponentCount(scene native.SceneID, obj native.ObjectID) int {
	o := s.object(scene, obj)
	if o == nil {
		return 0
	}
	return len(o.natives) + len(o.scripts)
}

func (s *Store) GetProperty(scene native.SceneID, obj native.ObjectID, comp native.ComponentID, name string) (any, bool) {
	o := s.object(scene, obj)
	if o == nil || !o.owns(comp) {
		return nil, false
	}
	v, ok := o.props[comp][name]
	return v, ok
}

func (s *Store) SetProperty(scene native.SceneID, obj native.ObjectID, comp native.ComponentID, name string, value any) {
	o := s.object(scene, obj)
	if o == nil || !o.owns(comp) {
		return
	}
	props := o.props[comp]
	if props == nil {
		props = make(map[string]any)
		o.props[comp] = props
	}
	props[name] = value
}

func (o *object) owns(comp native.ComponentID) bool {
	if _, ok := o.nativeTypes[comp]; ok {
		return true
	}
	_, ok := o.scripts[comp]
	return ok
}
