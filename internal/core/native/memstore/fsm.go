package memstore

import (
	"errors"
	"fmt"

	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

var (
	ErrUnknownTemplate = errors.New("unknown fsm template")
	ErrNilDefinition   = errors.New("nil fsm definition")
)

type template struct {
	def         *fsmdata.Definition
	start       native.NodeID
	nodes       map[native.NodeID]*fsmdata.Node
	transitions map[native.NodeID][]*fsmdata.Transition
	slots       map[string]int
	kinds       []fsmdata.PropertyType
	conditions  map[*fsmdata.Transition]*condition
}

// instance state follows the engine's slot model: every property is a
// float, booleans and triggers are 0 or 1.
type instance struct {
	id          native.InstanceID
	tpl         *template
	current     native.NodeID
	values      []float32
	changed     bool
	firstUpdate bool
}

// RegisterTemplate compiles a resolved definition. Registering the same
// template id again replaces it for instances created afterwards.
func (s *Store) RegisterTemplate(def *fsmdata.Definition) error {
	if def == nil {
		return ErrNilDefinition
	}
	if def.ID == 0 {
		if err := def.Resolve(); err != nil {
			return err
		}
	}

	t := &template{
		def:         def,
		nodes:       make(map[native.NodeID]*fsmdata.Node, len(def.Nodes)),
		transitions: make(map[native.NodeID][]*fsmdata.Transition),
		slots:       make(map[string]int, len(def.Properties)),
		kinds:       make([]fsmdata.PropertyType, len(def.Properties)),
		conditions:  make(map[*fsmdata.Transition]*condition),
	}
	if start := def.StartNode(); start != nil {
		t.start = start.ID
	}
	for i := range def.Nodes {
		t.nodes[def.Nodes[i].ID] = &def.Nodes[i]
	}
	for i, p := range def.Properties {
		t.slots[p.Name] = i
		t.kinds[i] = p.Type
	}
	for i := range def.Transitions {
		tr := &def.Transitions[i]
		t.transitions[tr.FromID] = append(t.transitions[tr.FromID], tr)
		if tr.Op == fsmdata.OpCustom {
			cond, err := compileCondition(tr.Condition)
			if err != nil {
				return fmt.Errorf("template %s: transition %s: %w", def.Name, tr.Name, err)
			}
			t.conditions[tr] = cond
		}
	}

	s.templates[def.ID] = t
	return nil
}

// CreateInstance starts a new instance in the template's start node. The
// entry notification for the start node is delivered on the first Update.
func (s *Store) CreateInstance(tpl native.TemplateID) (native.InstanceID, error) {
	t := s.templates[tpl]
	if t == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnknownTemplate, tpl)
	}
	inst := &instance{
		id:          native.InstanceID(newID()),
		tpl:         t,
		current:     t.start,
		values:      make([]float32, len(t.kinds)),
		changed:     true,
		firstUpdate: true,
	}
	s.instances[inst.id] = inst
	s.order = append(s.order, inst.id)
	return inst.id, nil
}

func (s *Store) DestroyInstance(id native.InstanceID) {
	if _, ok := s.instances[id]; !ok {
		return
	}
	delete(s.instances, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) InstanceCount() int {
	return len(s.instances)
}

// SetState forces the current node. The old node is exited unless the
// instance has not run its first update yet, and the new node is entered on
// the next Update. Unknown nodes are ignored.
func (s *Store) SetState(id native.InstanceID, node native.NodeID) {
	inst := s.instances[id]
	if inst == nil {
		return
	}
	if _, ok := inst.tpl.nodes[node]; !ok {
		s.logger.Warn("fsm set state to unknown node",
			log.Uint64("instance", uint64(id)),
			log.Uint64("node", uint64(node)))
		return
	}
	if !inst.firstUpdate && inst.current != 0 {
		s.callbacks.OnExit(id, inst.current)
	}
	inst.current = node
	inst.firstUpdate = true
	inst.changed = true
}

func (s *Store) GetState(id native.InstanceID) native.NodeID {
	if inst := s.instances[id]; inst != nil {
		return inst.current
	}
	return 0
}

func (s *Store) SetTrigger(id native.InstanceID, name string) {
	s.setValue(id, name, fsmdata.PropertyTrigger, 1)
}

func (s *Store) SetBool(id native.InstanceID, name string, value bool) {
	var v float32
	if value {
		v = 1
	}
	s.setValue(id, name, fsmdata.PropertyBool, v)
}

func (s *Store) SetFloat(id native.InstanceID, name string, value float32) {
	s.setValue(id, name, fsmdata.PropertyNumber, value)
}

func (s *Store) setValue(id native.InstanceID, name string, kind fsmdata.PropertyType, v float32) {
	inst := s.instances[id]
	if inst == nil {
		return
	}
	slot, ok := inst.tpl.slots[name]
	if !ok || inst.tpl.kinds[slot] != kind {
		s.logger.Warn("fsm property type mismatch",
			log.Uint64("instance", uint64(id)),
			log.String("property", name),
			log.String("want", string(kind)))
		return
	}
	inst.values[slot] = v
	inst.changed = true
}

// Update evaluates every dirty instance once, in creation order.
func (s *Store) Update() {
	for _, id := range append([]native.InstanceID(nil), s.order...) {
		if inst := s.instances[id]; inst != nil {
			s.step(inst)
		}
	}
}

func (s *Store) step(inst *instance) {
	if !inst.changed || inst.current == 0 {
		return
	}
	node := inst.current

	if inst.firstUpdate {
		inst.firstUpdate = false
		s.callbacks.OnEntry(inst.id, node)
		// the entry handler may have destroyed or redirected the instance
		if s.instances[inst.id] != inst || inst.current != node || inst.firstUpdate {
			return
		}
	}

	var fired *fsmdata.Transition
	for _, tr := range inst.tpl.transitions[node] {
		if s.satisfied(inst, tr) {
			fired = tr
			break
		}
	}

	for i, kind := range inst.tpl.kinds {
		if kind == fsmdata.PropertyTrigger {
			inst.values[i] = 0
		}
	}
	inst.changed = false

	if fired == nil {
		return
	}
	inst.current = fired.ToID
	s.logger.Debug("fsm transition",
		log.Uint64("instance", uint64(inst.id)),
		log.String("transition", fired.Name),
		log.String("from", fired.From),
		log.String("to", fired.To))
	s.callbacks.OnExit(inst.id, node)
	if s.instances[inst.id] != inst || inst.current != fired.ToID {
		return
	}
	s.callbacks.OnEntry(inst.id, fired.ToID)
}

func (s *Store) satisfied(inst *instance, tr *fsmdata.Transition) bool {
	if tr.Op == fsmdata.OpCustom {
		cond := inst.tpl.conditions[tr]
		if cond == nil {
			return false
		}
		ok, err := cond.eval(inst)
		if err != nil {
			s.logger.Warn("fsm condition failed",
				log.Uint64("instance", uint64(inst.id)),
				log.String("transition", tr.Name),
				log.Error(err))
			return false
		}
		return ok
	}

	slot, ok := inst.tpl.slots[tr.Property]
	if !ok {
		return false
	}
	v := inst.values[slot]
	switch tr.Op {
	case fsmdata.OpTrigger:
		return v > 0
	case fsmdata.OpOn:
		return v != 0
	case fsmdata.OpOff:
		return v == 0
	case fsmdata.OpEqual:
		return v == tr.Value
	case fsmdata.OpGreater:
		return v > tr.Value
	case fsmdata.OpGreaterOrEqual:
		return v >= tr.Value
	case fsmdata.OpLess:
		return v < tr.Value
	case fsmdata.OpLessOrEqual:
		return v <= tr.Value
	default:
		return false
	}
}
