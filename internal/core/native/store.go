package native

// ObjectStore exposes per-object hierarchy state.
type ObjectStore interface {
	GetActive(scene SceneID, obj ObjectID) bool
	SetActive(scene SceneID, obj ObjectID, active bool)
	GetName(scene SceneID, obj ObjectID) string
	SetName(scene SceneID, obj ObjectID, name string)
	// GetParent returns 0 for root objects.
	GetParent(scene SceneID, obj ObjectID) ObjectID
	// SetParent reparents obj. A zero parent moves it to the scene root.
	SetParent(scene SceneID, obj ObjectID, parent ObjectID)
	GetSiblingIndex(scene SceneID, obj ObjectID) int
	SetSiblingIndex(scene SceneID, obj ObjectID, index int)
	GetChildCount(scene SceneID, obj ObjectID) int
	// GetChild returns 0 when index is out of range.
	GetChild(scene SceneID, obj ObjectID, index int) ObjectID
}

// ComponentStore creates, finds and removes components. A zero id reports
// absence or failure.
type ComponentStore interface {
	GetComponentID(scene SceneID, obj ObjectID, typeName string) ComponentID
	AddComponent(scene SceneID, obj ObjectID, typeName string) ComponentID
	// AddScriptComponent may re-enter the binding layer through
	// Callbacks.OnScriptComponentCreated before it returns.
	AddScriptComponent(scene SceneID, obj ObjectID, typeIndex TypeIndex) ComponentID
	RemoveComponent(scene SceneID, obj ObjectID, typeName string) ComponentID
	RemoveComponentByID(scene SceneID, obj ObjectID, comp ComponentID)
}

// PropertyStore carries the data of native components.
type PropertyStore interface {
	GetProperty(scene SceneID, obj ObjectID, comp ComponentID, name string) (any, bool)
	SetProperty(scene SceneID, obj ObjectID, comp ComponentID, name string, value any)
}

// FSMStore drives native state machine instances. Property writes mark the
// instance dirty so the engine re-evaluates transitions on its next update.
type FSMStore interface {
	SetState(inst InstanceID, node NodeID)
	GetState(inst InstanceID) NodeID
	SetTrigger(inst InstanceID, name string)
	SetBool(inst InstanceID, name string, value bool)
	SetFloat(inst InstanceID, name string, value float32)
}

// Store is the full engine surface used by scenes.
type Store interface {
	ObjectStore
	ComponentStore
	PropertyStore
	FSMStore
}

// Callbacks is implemented by the binding layer and invoked by the engine.
type Callbacks interface {
	OnScriptComponentCreated(scene SceneID, obj ObjectID, comp ComponentID, typeIndex TypeIndex)
	OnObjectDestroyed(scene SceneID, obj ObjectID)
	OnEntry(inst InstanceID, node NodeID)
	OnExit(inst InstanceID, node NodeID)
}

// NopCallbacks ignores every notification.
type NopCallbacks struct{}

func (NopCallbacks) OnScriptComponentCreated(SceneID, ObjectID, ComponentID, TypeIndex) {}
func (NopCallbacks) OnObjectDestroyed(SceneID, ObjectID)                                 {}
func (NopCallbacks) OnEntry(InstanceID, NodeID)                                          {}
func (NopCallbacks) OnExit(InstanceID, NodeID)                                           {}
