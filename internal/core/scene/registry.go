package scene

import (
	"fmt"
	"reflect"

	"github.com/zeusync/scenebridge/internal/core/native"
)

type Provenance uint8

const (
	ProvenanceNative Provenance = iota + 1
	ProvenanceScript
	ProvenanceCapability
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceNative:
		return "native"
	case ProvenanceScript:
		return "script"
	case ProvenanceCapability:
		return "capability"
	default:
		return "unknown"
	}
}

// TypeEntry is the registry record of one component type.
type TypeEntry struct {
	typ        reflect.Type
	name       string
	provenance Provenance
	nativeName string
	index      native.TypeIndex
	tag        int
	ctor       func() Component

	// script entries only: own tag plus every capability implemented
	tags tagSet
}

func (e *TypeEntry) Type() reflect.Type      { return e.typ }
func (e *TypeEntry) Name() string            { return e.name }
func (e *TypeEntry) Provenance() Provenance  { return e.provenance }
func (e *TypeEntry) NativeName() string      { return e.nativeName }
func (e *TypeEntry) Index() native.TypeIndex { return e.index }
func (e *TypeEntry) Instantiable() bool      { return e.ctor != nil }

// matches reports whether a cached component of type other satisfies a
// lookup keyed by e.
func (e *TypeEntry) matches(other *TypeEntry) bool {
	return other.tags.has(e.tag)
}

// Registry maps component types to their provenance and constructor.
// Registration happens at startup; Seal freezes it before scenes use it.
type Registry struct {
	byType  map[reflect.Type]*TypeEntry
	byName  map[string]*TypeEntry
	entries []*TypeEntry
	scripts []*TypeEntry
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*TypeEntry),
		byName: make(map[string]*TypeEntry),
	}
}

// RegisterNative registers T as an engine-owned component type addressed by
// nativeName.
func RegisterNative[T Component](r *Registry, nativeName string, ctor func() T) error {
	if nativeName == "" || ctor == nil {
		return fmt.Errorf("%w: native %s needs a name and constructor", ErrInvalidComponentType, reflect.TypeFor[T]())
	}
	_, err := r.add(&TypeEntry{
		typ:        reflect.TypeFor[T](),
		name:       nativeName,
		provenance: ProvenanceNative,
		nativeName: nativeName,
		index:      native.NoTypeIndex,
		ctor:       func() Component { return ctor() },
	})
	return err
}

// RegisterScript registers T as a script component type. Registration order
// assigns the TypeIndex handed to the engine.
func RegisterScript[T Component](r *Registry, ctor func() T) (native.TypeIndex, error) {
	if ctor == nil {
		return native.NoTypeIndex, fmt.Errorf("%w: script %s needs a constructor", ErrInvalidComponentType, reflect.TypeFor[T]())
	}
	typ := reflect.TypeFor[T]()
	e, err := r.add(&TypeEntry{
		typ:        typ,
		name:       typeName(typ),
		provenance: ProvenanceScript,
		index:      native.TypeIndex(len(r.scripts)),
		ctor:       func() Component { return ctor() },
	})
	if err != nil {
		return native.NoTypeIndex, err
	}
	r.scripts = append(r.scripts, e)
	return e.index, nil
}

// RegisterCapability registers the interface T as a lookup key matching every
// script component type that implements it.
func RegisterCapability[T any](r *Registry) error {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Interface {
		return fmt.Errorf("%w: capability %s is not an interface", ErrInvalidComponentType, typ)
	}
	_, err := r.add(&TypeEntry{
		typ:        typ,
		name:       typeName(typ),
		provenance: ProvenanceCapability,
		index:      native.NoTypeIndex,
	})
	return err
}

func (r *Registry) add(e *TypeEntry) (*TypeEntry, error) {
	if r.sealed {
		return nil, fmt.Errorf("%w: cannot register %s", ErrRegistrySealed, e.typ)
	}
	if _, dup := r.byType[e.typ]; dup {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, e.typ)
	}
	if _, dup := r.byName[e.name]; dup {
		return nil, fmt.Errorf("%w: name %q", ErrAlreadyRegistered, e.name)
	}
	e.tag = len(r.entries)
	r.entries = append(r.entries, e)
	r.byType[e.typ] = e
	r.byName[e.name] = e
	return e, nil
}

// Seal freezes the registry and computes the tag set of every script type.
// It is idempotent.
func (r *Registry) Seal() {
	if r.sealed {
		return
	}
	r.sealed = true
	for _, s := range r.scripts {
		s.tags.set(s.tag)
		for _, c := range r.entries {
			if c.provenance == ProvenanceCapability && s.typ.Implements(c.typ) {
				s.tags.set(c.tag)
			}
		}
	}
}

func (r *Registry) Sealed() bool {
	return r.sealed
}

// Lookup returns the entry of T.
func Lookup[T any](r *Registry) (*TypeEntry, error) {
	typ := reflect.TypeFor[T]()
	if e, ok := r.byType[typ]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownComponentType, typ)
}

// LookupName finds an entry by native type name or script type name.
func (r *Registry) LookupName(name string) (*TypeEntry, error) {
	if e, ok := r.byName[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, name)
}

// EntryByIndex resolves the script type the engine reports by index.
func (r *Registry) EntryByIndex(index native.TypeIndex) (*TypeEntry, bool) {
	if index < 0 || int(index) >= len(r.scripts) {
		return nil, false
	}
	return r.scripts[index], true
}

func (r *Registry) Entries() []*TypeEntry {
	return append([]*TypeEntry(nil), r.entries...)
}

func typeName(typ reflect.Type) string {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Name()
}

// tagSet is a bitset of registry tags.
type tagSet []uint64

func (s *tagSet) set(tag int) {
	for len(*s) <= tag/64 {
		*s = append(*s, 0)
	}
	(*s)[tag/64] |= 1 << (tag % 64)
}

func (s tagSet) has(tag int) bool {
	w := tag / 64
	return w < len(s) && s[w]&(1<<(tag%64)) != 0
}
