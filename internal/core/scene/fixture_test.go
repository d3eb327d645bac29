package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/native/memstore"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
)

type Damageable interface {
	TakeDamage(n int)
}

type Health struct {
	Behaviour
	HP      int
	journal *[]string
}

func (h *Health) TakeDamage(n int)  { h.HP -= n }
func (h *Health) Start()            { h.note("health.start") }
func (h *Health) Update(dt float64) { h.note("health.update") }
func (h *Health) Stop()             { h.note("health.stop") }

func (h *Health) note(s string) {
	if h.journal != nil {
		*h.journal = append(*h.journal, s)
	}
}

type Armor struct {
	Behaviour
	journal *[]string
}

func (a *Armor) TakeDamage(int) {}
func (a *Armor) Update(float64) {
	if a.journal != nil {
		*a.journal = append(*a.journal, "armor.update")
	}
}
func (a *Armor) OnValidate() {
	if a.journal != nil {
		*a.journal = append(*a.journal, "armor.validate")
	}
}

// Ghost is never registered.
type Ghost struct {
	Behaviour
}

type fixture struct {
	t       *testing.T
	mem     *memstore.Store
	spy     *spyStore
	scene   *Scene
	sceneID native.SceneID
	logs    *observer.ObservedLogs
	events  []bus.Event
	metrics *metrics.Metrics
	journal []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t}

	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	_, err := RegisterScript(reg, func() *Health { return &Health{HP: 10, journal: &f.journal} })
	require.NoError(t, err)
	_, err = RegisterScript(reg, func() *Armor { return &Armor{journal: &f.journal} })
	require.NoError(t, err)
	require.NoError(t, RegisterCapability[Damageable](reg))

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs

	events := bus.New()
	_, err = events.SubscribeAll(func(e bus.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	require.NoError(t, err)

	f.mem = memstore.New()
	f.sceneID = f.mem.CreateScene("test")
	f.spy = &spyStore{mem: f.mem}
	f.metrics = metrics.New(metrics.DefaultConfig())
	f.scene = New(f.sceneID, f.spy, reg,
		WithLogger(log.NewWithCore(core)),
		WithMetrics(f.metrics),
		WithEventBus(events))

	cb := &sceneCallbacks{scene: f.scene}
	f.spy.cb = cb
	f.mem.SetCallbacks(cb)
	return f
}

// object creates an engine object and returns its handle.
func (f *fixture) object(name string, parent *SceneObject) *SceneObject {
	var pid native.ObjectID
	if parent != nil {
		pid = parent.ID()
	}
	id := f.mem.CreateObject(f.sceneID, name, pid)
	require.NotZero(f.t, id)
	return f.scene.Object(id)
}

func (f *fixture) eventCount(typ string) int {
	n := 0
	for _, e := range f.events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

func (f *fixture) staleLogs() int {
	return f.logs.FilterMessage("stale handle").Len()
}
