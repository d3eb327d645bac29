package fsm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/native/memstore"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
)

const doorYAML = `
name: Door
nodes:
  - name: Closed
  - name: Open
properties:
  - name: toggle
    type: trigger
  - name: speed
    type: number
transitions:
  - name: open
    from: Closed
    to: Open
    property: toggle
    op: trigger
  - name: close
    from: Open
    to: Closed
    property: toggle
    op: trigger
`

type routing struct {
	native.NopCallbacks
	m *Manager
}

func (r routing) OnEntry(inst native.InstanceID, node native.NodeID) { r.m.OnEntry(inst, node) }
func (r routing) OnExit(inst native.InstanceID, node native.NodeID)  { r.m.OnExit(inst, node) }

type counter struct {
	entries, exits int
}

func (c *counter) OnStateEntry(*Instance) { c.entries++ }
func (c *counter) OnStateExit(*Instance)  { c.exits++ }

type fixture struct {
	mem    *memstore.Store
	mgr    *Manager
	tpl    *Template
	logs   *observer.ObservedLogs
	events []bus.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mem: memstore.New()}
	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs

	events := bus.New()
	_, err := events.SubscribeAll(func(e bus.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	require.NoError(t, err)

	f.mgr = NewManager(f.mem, WithLogger(log.NewWithCore(core)), WithEventBus(events))
	f.mem.SetCallbacks(routing{m: f.mgr})

	def, err := fsmdata.LoadYAML(strings.NewReader(doorYAML))
	require.NoError(t, err)
	f.tpl, err = f.mgr.LoadTemplate(def)
	require.NoError(t, err)
	return f
}

func TestTemplateMirrorsDefinition(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Door", f.tpl.Name())
	assert.Equal(t, "Closed", f.tpl.Start().Name())
	require.Len(t, f.tpl.Nodes(), 2)
	assert.Same(t, f.tpl, f.mgr.Template(f.tpl.ID()))
	assert.Same(t, f.tpl, f.mgr.TemplateByName("Door"))
	assert.Nil(t, f.tpl.Node(0))
	assert.Same(t, f.tpl.NodeByName("Open"), f.tpl.Node(f.tpl.NodeByName("Open").ID()))
}

func TestHandlersFireOncePerEdge(t *testing.T) {
	f := newFixture(t)
	inst, err := f.mgr.CreateInstance(f.tpl)
	require.NoError(t, err)

	closed, open := &counter{}, &counter{}
	require.NoError(t, inst.SetNodeHandler(f.tpl.NodeByName("Closed"), closed))
	require.NoError(t, inst.SetNodeHandler(f.tpl.NodeByName("Open"), open))

	f.mem.Update()
	assert.Equal(t, &counter{entries: 1}, closed)

	inst.SetTrigger("toggle")
	f.mem.Update()
	assert.Equal(t, &counter{entries: 1, exits: 1}, closed)
	assert.Equal(t, &counter{entries: 1}, open)
	assert.Equal(t, "Open", inst.CurrentState().Name())

	f.mem.Update()
	assert.Equal(t, &counter{entries: 1}, open, "no dispatch without a change")
}

func TestForcedTransition(t *testing.T) {
	f := newFixture(t)
	inst, err := f.mgr.CreateInstance(f.tpl)
	require.NoError(t, err)
	f.mem.Update()

	closed, open := &counter{}, &counter{}
	_ = inst.SetNodeHandler(f.tpl.NodeByName("Closed"), closed)
	_ = inst.SetNodeHandler(f.tpl.NodeByName("Open"), open)

	require.NoError(t, inst.SetCurrentState(f.tpl.NodeByName("Open")))
	assert.Equal(t, 1, closed.exits)
	assert.Equal(t, "Open", inst.CurrentState().Name())

	f.mem.Update()
	assert.Equal(t, 1, open.entries)

	assert.ErrorIs(t, inst.SetCurrentState(nil), ErrInvalidState)
	assert.ErrorIs(t, inst.SetCurrentState(&Node{id: 7, name: "Elsewhere"}), ErrInvalidState)
}

func TestSetNodeHandlerReplaces(t *testing.T) {
	f := newFixture(t)
	inst, err := f.mgr.CreateInstance(f.tpl)
	require.NoError(t, err)

	node := f.tpl.NodeByName("Closed")
	old := &counter{}
	var entered []string
	_ = inst.SetNodeHandler(node, old)
	_ = inst.SetNodeHandler(node, HandlerFuncs{Entry: func(i *Instance) {
		entered = append(entered, i.CurrentState().Name())
	}})

	f.mem.Update()
	assert.Zero(t, old.entries)
	assert.Equal(t, []string{"Closed"}, entered)

	_ = inst.SetNodeHandler(node, nil)
	inst.SetTrigger("toggle")
	f.mem.Update()
	assert.Len(t, entered, 1)
	assert.ErrorIs(t, inst.SetNodeHandler(nil, old), ErrInvalidState)
}

func TestDispatchToUnknownInstanceIsSilent(t *testing.T) {
	f := newFixture(t)
	before := f.logs.Len()
	f.mgr.OnEntry(native.InstanceID(999), native.NodeID(1))
	f.mgr.OnExit(native.InstanceID(999), native.NodeID(1))
	assert.Empty(t, f.events)
	assert.Equal(t, before, f.logs.Len())
}

func TestDispatchPublishesEvents(t *testing.T) {
	f := newFixture(t)
	inst, err := f.mgr.CreateInstance(f.tpl)
	require.NoError(t, err)
	_ = inst.SetNodeHandler(f.tpl.NodeByName("Closed"), &counter{})

	f.mem.Update()
	require.Len(t, f.events, 1)
	assert.Equal(t, bus.TypeFSMEntry, f.events[0].Type())
	assert.Equal(t, TransitionEvent{Instance: inst.ID(), Template: "Door", Node: "Closed", Handled: true}, f.events[0].Data())
}

func TestDestroyReleasesNativeInstance(t *testing.T) {
	f := newFixture(t)
	inst, err := f.mgr.CreateInstance(f.tpl)
	require.NoError(t, err)
	assert.Equal(t, 1, f.mem.InstanceCount())
	assert.Same(t, inst, f.mgr.Instance(inst.ID()))
	assert.Equal(t, []*Instance{inst}, f.mgr.Instances())

	inst.Destroy()
	inst.Destroy()
	assert.True(t, inst.IsDestroyed())
	assert.Zero(t, f.mem.InstanceCount())
	assert.Nil(t, f.mgr.Instance(inst.ID()))

	inst.SetTrigger("toggle")
	inst.SetBool("toggle", true)
	inst.SetNumber("speed", 1)
	assert.Nil(t, inst.CurrentState())
	assert.Equal(t, 4, f.logs.FilterMessage("stale fsm instance").Len())
}

func TestCreateInstanceErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.CreateInstance(nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	other := newTemplate(f.tpl.Definition())
	_, err = f.mgr.CreateInstance(other)
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	_, err = f.mgr.LoadTemplate(&fsmdata.Definition{Name: "empty"})
	assert.ErrorIs(t, err, fsmdata.ErrInvalidDefinition)
}
