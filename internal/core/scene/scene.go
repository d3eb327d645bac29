package scene

import (
	"slices"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
)

// ObjectEvent is the payload of object.destroyed.
type ObjectEvent struct {
	Scene  native.SceneID  `json:"scene"`
	Object native.ObjectID `json:"object"`
}

// StaleEvent is the payload of handle.stale.
type StaleEvent struct {
	Scene     native.SceneID     `json:"scene"`
	Kind      string             `json:"kind"`
	Operation string             `json:"operation"`
	Object    native.ObjectID    `json:"object"`
	Component native.ComponentID `json:"component,omitempty"`
}

// Scene resolves object ids of one engine scene into unique handles and
// drives the lifecycle of their script components.
type Scene struct {
	id       native.SceneID
	store    native.Store
	registry *Registry

	logger  log.Log
	metrics *metrics.Metrics
	events  bus.EventBus

	objects map[native.ObjectID]*SceneObject
	order   []native.ObjectID
	running bool
}

type Option func(*Scene)

func WithLogger(l log.Log) Option {
	return func(s *Scene) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scene) { s.metrics = m }
}

func WithEventBus(b bus.EventBus) Option {
	return func(s *Scene) { s.events = b }
}

// New binds a scene. The registry is sealed on first use.
func New(id native.SceneID, store native.Store, registry *Registry, opts ...Option) *Scene {
	registry.Seal()
	s := &Scene{
		id:       id,
		store:    store,
		registry: registry,
		logger:   log.Nop(),
		objects:  make(map[native.ObjectID]*SceneObject),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.Uint64("scene", uint64(id)))
	return s
}

func (s *Scene) ID() native.SceneID  { return s.id }
func (s *Scene) Registry() *Registry { return s.registry }
func (s *Scene) Logger() log.Log     { return s.logger }
func (s *Scene) Running() bool       { return s.running }
func (s *Scene) Store() native.Store { return s.store }

// Object returns the handle for id, creating it on first use. Id 0 yields
// nil. The same id always yields the same handle until it is destroyed.
func (s *Scene) Object(id native.ObjectID) *SceneObject {
	if id == 0 {
		return nil
	}
	if o, ok := s.objects[id]; ok {
		return o
	}
	o := newSceneObject(s, id)
	s.objects[id] = o
	s.order = append(s.order, id)
	return o
}

// Objects lists live handles in creation order.
func (s *Scene) Objects() []*SceneObject {
	out := make([]*SceneObject, 0, len(s.order))
	for _, id := range s.order {
		if o := s.objects[id]; o != nil && !o.destroyed {
			out = append(out, o)
		}
	}
	return out
}

// OnScriptComponentCreated attaches the script peer of a component the
// engine just created. An existing handle with the same id is replaced.
func (s *Scene) OnScriptComponentCreated(obj native.ObjectID, comp native.ComponentID, index native.TypeIndex) {
	entry, ok := s.registry.EntryByIndex(index)
	if !ok {
		s.logger.Error("unknown script type index",
			log.Uint64("object", uint64(obj)),
			log.Uint64("component", uint64(comp)),
			log.Int("index", int(index)))
		return
	}
	o := s.Object(obj)
	if o == nil || o.destroyed {
		return
	}
	if _, exists := o.cache.get(comp); exists {
		o.evict(comp)
	}
	if _, err := o.attach(entry, comp); err != nil {
		s.logger.Error("attach script component", log.Error(err))
	}
}

// OnObjectDestroyed marks the object handle and all its cached components
// destroyed and forgets the handle.
func (s *Scene) OnObjectDestroyed(obj native.ObjectID) {
	if o, ok := s.objects[obj]; ok {
		entries := o.markDestroyed()
		delete(s.objects, obj)
		s.order = slices.DeleteFunc(s.order, func(id native.ObjectID) bool { return id == obj })
		for _, e := range entries {
			s.metrics.RecordRemoved(e.entry.provenance.String())
		}
	}
	s.publish(bus.TypeObjectDestroyed, ObjectEvent{Scene: s.id, Object: obj})
}

// Start runs Start on every script component and marks the scene running.
// Components attached afterwards are started as they attach.
func (s *Scene) Start() {
	if s.running {
		return
	}
	s.running = true
	s.eachScript(false, func(c Component) {
		if st, ok := c.(Starter); ok {
			st.Start()
		}
	})
}

// Update runs Update on the script components of active objects, in object
// order then component order.
func (s *Scene) Update(dt float64) {
	s.eachScript(true, func(c Component) {
		if u, ok := c.(Updater); ok {
			u.Update(dt)
		}
	})
}

func (s *Scene) Stop() {
	if !s.running {
		return
	}
	s.eachScript(false, func(c Component) {
		if st, ok := c.(Stopper); ok {
			st.Stop()
		}
	})
	s.running = false
}

// Validate runs OnValidate on every script component.
func (s *Scene) Validate() {
	s.eachScript(false, func(c Component) {
		if v, ok := c.(Validator); ok {
			v.OnValidate()
		}
	})
}

// eachScript visits a snapshot of script components. Handles destroyed by
// an earlier callback in the same pass are skipped.
func (s *Scene) eachScript(activeOnly bool, fn func(Component)) {
	for _, o := range s.Objects() {
		if o.destroyed {
			continue
		}
		if activeOnly && !s.store.GetActive(s.id, o.id) {
			continue
		}
		for _, e := range o.cache.snapshot() {
			if e.entry.provenance != ProvenanceScript || e.comp.IsDestroyed() || o.destroyed {
				continue
			}
			fn(e.comp)
		}
	}
}

func (s *Scene) reportStale(kind, op string, obj native.ObjectID, comp native.ComponentID) {
	fields := []log.Field{
		log.String("kind", kind),
		log.String("op", op),
		log.Uint64("object", uint64(obj)),
		log.Error(ErrStaleHandle),
	}
	if comp != 0 {
		fields = append(fields, log.Uint64("component", uint64(comp)))
	}
	s.logger.Error("stale handle", fields...)
	s.metrics.RecordStale(op)
	s.publish(bus.TypeHandleStale, StaleEvent{Scene: s.id, Kind: kind, Operation: op, Object: obj, Component: comp})
}

func (s *Scene) publish(typ string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(bus.NewEvent(typ, "scene", data, nil)); err != nil {
		s.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
