package scene

import "errors"

// Component errors
var (
	ErrUnknownComponentType    = errors.New("unknown component type")
	ErrComponentCreationFailed = errors.New("failed to create component")
	ErrNotInstantiable         = errors.New("component type is not instantiable")
)

// Registry errors
var (
	ErrRegistrySealed       = errors.New("component registry is sealed")
	ErrAlreadyRegistered    = errors.New("component type already registered")
	ErrInvalidComponentType = errors.New("invalid component type")
)

// ErrStaleHandle is attached to stale-handle logs and events. Accessors on a
// destroyed handle never return it.
var ErrStaleHandle = errors.New("handle used after destruction")
