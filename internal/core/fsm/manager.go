package fsm

import (
	"fmt"
	"slices"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
)

// Backend is the engine side of the state machine runtime.
type Backend interface {
	native.FSMStore
	RegisterTemplate(def *fsmdata.Definition) error
	CreateInstance(tpl native.TemplateID) (native.InstanceID, error)
	DestroyInstance(inst native.InstanceID)
}

// TransitionEvent is the payload of fsm.entry and fsm.exit.
type TransitionEvent struct {
	Instance native.InstanceID `json:"instance"`
	Template string            `json:"template"`
	Node     string            `json:"node"`
	Handled  bool              `json:"handled"`
}

// Manager owns templates and instances and routes engine notifications to
// node handlers.
type Manager struct {
	backend Backend
	logger  log.Log
	metrics *metrics.Metrics
	events  bus.EventBus

	templates map[native.TemplateID]*Template
	instances map[native.InstanceID]*Instance
}

type Option func(*Manager)

func WithLogger(l log.Log) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithEventBus(b bus.EventBus) Option {
	return func(m *Manager) { m.events = b }
}

func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:   backend,
		logger:    log.Nop(),
		templates: make(map[native.TemplateID]*Template),
		instances: make(map[native.InstanceID]*Instance),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadTemplate registers def with the engine and builds its template.
// Loading a definition with the same name again replaces the template.
func (m *Manager) LoadTemplate(def *fsmdata.Definition) (*Template, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrUnknownTemplate)
	}
	if err := def.Resolve(); err != nil {
		return nil, err
	}
	if err := m.backend.RegisterTemplate(def); err != nil {
		return nil, fmt.Errorf("register template %s: %w", def.Name, err)
	}
	t := newTemplate(def)
	m.templates[t.id] = t
	m.logger.Debug("fsm template loaded",
		log.String("template", t.name),
		log.Int("nodes", len(t.nodes)))
	return t, nil
}

func (m *Manager) Template(id native.TemplateID) *Template {
	return m.templates[id]
}

func (m *Manager) TemplateByName(name string) *Template {
	for _, t := range m.templates {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (m *Manager) CreateInstance(tpl *Template) (*Instance, error) {
	if tpl == nil || m.templates[tpl.id] != tpl {
		return nil, ErrUnknownTemplate
	}
	id, err := m.backend.CreateInstance(tpl.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstanceCreationFailed, err)
	}
	if id == 0 {
		return nil, ErrInstanceCreationFailed
	}
	inst := &Instance{
		id:       id,
		template: tpl,
		manager:  m,
		handlers: make(map[native.NodeID]NodeHandler),
	}
	m.instances[id] = inst
	return inst, nil
}

// Instance returns the live instance with id, or nil.
func (m *Manager) Instance(id native.InstanceID) *Instance {
	return m.instances[id]
}

// Instances lists live instances ordered by id.
func (m *Manager) Instances() []*Instance {
	out := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	slices.SortFunc(out, func(a, b *Instance) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		default:
			return 0
		}
	})
	return out
}

// DestroyInstance releases the native instance first, then forgets the
// handle. Destroying twice is a no-op.
func (m *Manager) DestroyInstance(inst *Instance) {
	if inst == nil || inst.destroyed {
		return
	}
	m.backend.DestroyInstance(inst.id)
	inst.destroyed = true
	delete(m.instances, inst.id)
}

// OnEntry routes an engine entry notification to the node's handler.
// Unknown instances and nodes without handlers are ignored.
func (m *Manager) OnEntry(inst native.InstanceID, node native.NodeID) {
	m.dispatch(bus.TypeFSMEntry, inst, node)
}

// OnExit routes an engine exit notification to the node's handler.
func (m *Manager) OnExit(inst native.InstanceID, node native.NodeID) {
	m.dispatch(bus.TypeFSMExit, inst, node)
}

func (m *Manager) dispatch(kind string, id native.InstanceID, node native.NodeID) {
	inst, ok := m.instances[id]
	if !ok {
		return
	}
	handler, handled := inst.handlers[node]

	label := "entry"
	if kind == bus.TypeFSMExit {
		label = "exit"
	}
	m.metrics.RecordDispatch(label, handled)

	if handled {
		if kind == bus.TypeFSMEntry {
			handler.OnStateEntry(inst)
		} else {
			handler.OnStateExit(inst)
		}
	}

	if m.events != nil {
		ev := TransitionEvent{Instance: id, Template: inst.template.name, Handled: handled}
		if n := inst.template.Node(node); n != nil {
			ev.Node = n.name
		}
		if err := m.events.Publish(bus.NewEvent(kind, "fsm", ev, nil)); err != nil {
			m.logger.Warn("event handler failed", log.String("event", kind), log.Error(err))
		}
	}
}
