// Package memstore is an in-memory engine implementing the native store and
// state machine surface. It backs the CLI and the tests of the binding layer.
//
// The store is single-threaded: callers drive it from one goroutine, the same
// one that receives its callbacks.
package memstore

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

var _ native.Store = (*Store)(nil)

type Store struct {
	callbacks native.Callbacks
	logger    log.Log

	scenes map[native.SceneID]*sceneData

	templates map[native.TemplateID]*template
	instances map[native.InstanceID]*instance
	order     []native.InstanceID
}

type sceneData struct {
	id      native.SceneID
	name    string
	objects map[native.ObjectID]*object
	roots   []native.ObjectID
}

type object struct {
	id       native.ObjectID
	name     string
	active   bool
	parent   native.ObjectID
	children []native.ObjectID

	// native components keyed by hashed type name
	natives     map[uint64]native.ComponentID
	nativeTypes map[native.ComponentID]uint64
	scripts     map[native.ComponentID]native.TypeIndex
	props       map[native.ComponentID]map[string]any
}

type Option func(*Store)

func WithLogger(l log.Log) Option {
	return func(s *Store) { s.logger = l }
}

func WithCallbacks(cb native.Callbacks) Option {
	return func(s *Store) { s.SetCallbacks(cb) }
}

func New(opts ...Option) *Store {
	s := &Store{
		callbacks: native.NopCallbacks{},
		logger:    log.Nop(),
		scenes:    make(map[native.SceneID]*sceneData),
		templates: make(map[native.TemplateID]*template),
		instances: make(map[native.InstanceID]*instance),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCallbacks installs the receiver of engine notifications.
func (s *Store) SetCallbacks(cb native.Callbacks) {
	if cb == nil {
		cb = native.NopCallbacks{}
	}
	s.callbacks = cb
}

// CreateScene registers an empty scene.
func (s *Store) CreateScene(name string) native.SceneID {
	id := native.SceneID(newID())
	s.scenes[id] = &sceneData{id: id, name: name, objects: make(map[native.ObjectID]*object)}
	return id
}

func (s *Store) SceneName(scene native.SceneID) string {
	if sc := s.scenes[scene]; sc != nil {
		return sc.name
	}
	return ""
}

// CreateObject adds an active object under parent, or at the root when
// parent is 0. It returns 0 when the scene or parent is unknown.
func (s *Store) CreateObject(scene native.SceneID, name string, parent native.ObjectID) native.ObjectID {
	sc := s.scenes[scene]
	if sc == nil {
		return 0
	}
	var p *object
	if parent != 0 {
		if p = sc.objects[parent]; p == nil {
			return 0
		}
	}

	o := &object{
		id:          native.ObjectID(newID()),
		name:        name,
		active:      true,
		parent:      parent,
		natives:     make(map[uint64]native.ComponentID),
		nativeTypes: make(map[native.ComponentID]uint64),
		scripts:     make(map[native.ComponentID]native.TypeIndex),
		props:       make(map[native.ComponentID]map[string]any),
	}
	sc.objects[o.id] = o
	if p != nil {
		p.children = append(p.children, o.id)
	} else {
		sc.roots = append(sc.roots, o.id)
	}
	return o.id
}

// Objects lists the live objects of a scene depth first in sibling order.
func (s *Store) Objects(scene native.SceneID) []native.ObjectID {
	sc := s.scenes[scene]
	if sc == nil {
		return nil
	}
	var out []native.ObjectID
	var walk func(ids []native.ObjectID)
	walk = func(ids []native.ObjectID) {
		for _, id := range ids {
			out = append(out, id)
			walk(sc.objects[id].children)
		}
	}
	walk(sc.roots)
	return out
}

func (s *Store) Exists(scene native.SceneID, obj native.ObjectID) bool {
	return s.object(scene, obj) != nil
}

// DestroyObject removes obj and its subtree. Children are destroyed before
// their parent and each destruction is reported through the callbacks.
func (s *Store) DestroyObject(scene native.SceneID, obj native.ObjectID) {
	sc := s.scenes[scene]
	if sc == nil {
		return
	}
	o := sc.objects[obj]
	if o == nil {
		return
	}
	sc.detach(o)
	s.destroyTree(sc, o)
}

func (s *Store) destroyTree(sc *sceneData, o *object) {
	for _, child := range slices.Clone(o.children) {
		if c := sc.objects[child]; c != nil {
			s.destroyTree(sc, c)
		}
	}
	delete(sc.objects, o.id)
	s.logger.Debug("object destroyed",
		log.Uint64("scene", uint64(sc.id)),
		log.Uint64("object", uint64(o.id)),
		log.String("name", o.name))
	s.callbacks.OnObjectDestroyed(sc.id, o.id)
}

func (s *Store) object(scene native.SceneID, obj native.ObjectID) *object {
	sc := s.scenes[scene]
	if sc == nil {
		return nil
	}
	return sc.objects[obj]
}

// siblings returns the list holding o: its parent's children or the roots.
func (sc *sceneData) siblings(o *object) *[]native.ObjectID {
	if o.parent != 0 {
		if p := sc.objects[o.parent]; p != nil {
			return &p.children
		}
	}
	return &sc.roots
}

func (sc *sceneData) detach(o *object) {
	list := sc.siblings(o)
	*list = slices.DeleteFunc(*list, func(id native.ObjectID) bool { return id == o.id })
}

// newID draws a non-zero id from a random UUID.
func newID() uint64 {
	for {
		u := uuid.New()
		if id := binary.BigEndian.Uint64(u[:8]); id != 0 {
			return id
		}
	}
}

func typeKey(typeName string) uint64 {
	return xxhash.Sum64String(typeName)
}
