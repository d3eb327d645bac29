// Package runtime hosts scenes and state machines on top of one engine and
// drives them frame by frame.
package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/fsm"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
	"github.com/zeusync/scenebridge/internal/core/scene"
	"github.com/zeusync/scenebridge/internal/core/script/luascript"
)

// Engine is the native side a Host drives.
type Engine interface {
	native.Store
	fsm.Backend

	CreateScene(name string) native.SceneID
	CreateObject(scene native.SceneID, name string, parent native.ObjectID) native.ObjectID
	SetCallbacks(cb native.Callbacks)
	// Update evaluates state machine transitions.
	Update()
}

var _ native.Callbacks = (*Host)(nil)

// Host owns the scenes and the state machine manager of one engine and
// routes engine callbacks to them.
type Host struct {
	engine   Engine
	registry *scene.Registry
	logger   log.Log
	metrics  *metrics.Metrics
	events   bus.EventBus
	fsm      *fsm.Manager
	scenes   map[native.SceneID]*scene.Scene
	order    []native.SceneID
	tickRate int
	running  bool
}

type Option func(*Host)

func WithLogger(l log.Log) Option {
	return func(h *Host) { h.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

func WithEventBus(b bus.EventBus) Option {
	return func(h *Host) { h.events = b }
}

// MaxTickRate bounds the frame rate a host accepts.
const MaxTickRate = 1000

// WithTickRate sets the frames per second Run ticks at. Values outside
// 1..MaxTickRate are clamped.
func WithTickRate(rate int) Option {
	return func(h *Host) {
		h.tickRate = min(max(rate, 1), MaxTickRate)
	}
}

// NewHost builds a host and installs it as the engine's callback sink.
func NewHost(engine Engine, registry *scene.Registry, opts ...Option) *Host {
	h := &Host{
		engine:   engine,
		registry: registry,
		logger:   log.Nop(),
		events:   bus.New(),
		scenes:   make(map[native.SceneID]*scene.Scene),
		tickRate: 60,
	}
	for _, opt := range opts {
		opt(h)
	}
	registry.Seal()
	h.fsm = fsm.NewManager(engine,
		fsm.WithLogger(h.logger.With(log.String("component", "fsm"))),
		fsm.WithMetrics(h.metrics),
		fsm.WithEventBus(h.events))
	engine.SetCallbacks(h)
	return h
}

// NewRegistry returns a registry holding the built-in native components and
// Lua script components.
func NewRegistry() (*scene.Registry, error) {
	r := scene.NewRegistry()
	_, err := luascript.Register(r)
	if err = errors.Join(scene.RegisterBuiltins(r), err); err != nil {
		return nil, err
	}
	return r, nil
}

func (h *Host) Engine() Engine            { return h.engine }
func (h *Host) Registry() *scene.Registry { return h.registry }
func (h *Host) FSM() *fsm.Manager         { return h.fsm }
func (h *Host) Events() bus.EventBus      { return h.events }
func (h *Host) Metrics() *metrics.Metrics { return h.metrics }
func (h *Host) Logger() log.Log           { return h.logger }
func (h *Host) Running() bool             { return h.running }

func (h *Host) Scene(id native.SceneID) *scene.Scene {
	return h.scenes[id]
}

// CreateScene creates an engine scene and its scripting-side peer. A scene
// created while the host runs is started at once.
func (h *Host) CreateScene(name string) *scene.Scene {
	id := h.engine.CreateScene(name)
	s := scene.New(id, h.engine, h.registry,
		scene.WithLogger(h.logger.With(log.String("scene", name))),
		scene.WithMetrics(h.metrics),
		scene.WithEventBus(h.events))
	h.scenes[id] = s
	h.order = append(h.order, id)
	if h.running {
		s.Start()
	}
	return s
}

// Scenes returns the scenes in creation order.
func (h *Host) Scenes() []*scene.Scene {
	out := make([]*scene.Scene, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.scenes[id])
	}
	return out
}

func (h *Host) OnScriptComponentCreated(sc native.SceneID, obj native.ObjectID, comp native.ComponentID, index native.TypeIndex) {
	s, ok := h.scenes[sc]
	if !ok {
		h.logger.Warn("script component for unknown scene", log.Uint64("scene", uint64(sc)))
		return
	}
	s.OnScriptComponentCreated(obj, comp, index)
}

func (h *Host) OnObjectDestroyed(sc native.SceneID, obj native.ObjectID) {
	if s, ok := h.scenes[sc]; ok {
		s.OnObjectDestroyed(obj)
	}
}

func (h *Host) OnEntry(inst native.InstanceID, node native.NodeID) { h.fsm.OnEntry(inst, node) }
func (h *Host) OnExit(inst native.InstanceID, node native.NodeID)  { h.fsm.OnExit(inst, node) }

func (h *Host) Start() {
	if h.running {
		return
	}
	h.running = true
	for _, s := range h.Scenes() {
		s.Start()
	}
}

func (h *Host) Stop() {
	if !h.running {
		return
	}
	for _, s := range h.Scenes() {
		s.Stop()
	}
	h.running = false
}

// Tick advances one frame: the engine evaluates state machines, then every
// scene updates its scripts.
func (h *Host) Tick(dt float64) {
	started := time.Now()
	h.engine.Update()
	for _, s := range h.Scenes() {
		s.Update(dt)
	}
	h.metrics.RecordTick(time.Since(started))
}

// Run starts the host and ticks at the configured rate until ctx is done or
// frames ticks have run. frames <= 0 means no limit.
func (h *Host) Run(ctx context.Context, frames int) error {
	interval := time.Second / time.Duration(h.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Start()
	defer h.Stop()

	h.logger.Info("host running", log.Int("tick_rate", h.tickRate), log.Int("frames", frames))
	last := time.Now()
	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			h.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
	return nil
}
