// Package native describes the opaque engine the scripting layer binds to.
//
// Every engine-side entity is addressed by a numeric id. Zero is reserved
// and always means "absent" or "failed".
package native

type (
	SceneID     uint64
	ObjectID    uint64
	ComponentID uint64
	TemplateID  uint64
	InstanceID  uint64
	NodeID      uint64
)

// TypeIndex is the registry position of a script component type. The engine
// stores it opaquely and hands it back through Callbacks.
type TypeIndex int

// NoTypeIndex marks a type that has no script index.
const NoTypeIndex TypeIndex = -1
