package luascript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/native/memstore"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/scene"
)

type routing struct {
	native.NopCallbacks
	scene *scene.Scene
}

func (r routing) OnScriptComponentCreated(_ native.SceneID, obj native.ObjectID, comp native.ComponentID, idx native.TypeIndex) {
	r.scene.OnScriptComponentCreated(obj, comp, idx)
}

func (r routing) OnObjectDestroyed(_ native.SceneID, obj native.ObjectID) {
	r.scene.OnObjectDestroyed(obj)
}

type fixture struct {
	mem     *memstore.Store
	scene   *scene.Scene
	sceneID native.SceneID
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := scene.NewRegistry()
	_, err := Register(reg)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{mem: memstore.New(), logs: logs}
	f.sceneID = f.mem.CreateScene("lua")
	f.scene = scene.New(f.sceneID, f.mem, reg, scene.WithLogger(log.NewWithCore(core)))
	f.mem.SetCallbacks(routing{scene: f.scene})
	return f
}

func (f *fixture) script(t *testing.T, name, src string) (*scene.SceneObject, *Script) {
	t.Helper()
	obj := f.scene.Object(f.mem.CreateObject(f.sceneID, name, 0))
	s, err := scene.AddComponent[*Script](obj)
	require.NoError(t, err)
	require.NoError(t, s.Load(src))
	return obj, s
}

func TestHooksDriveTheObject(t *testing.T) {
	f := newFixture(t)
	obj, _ := f.script(t, "hero", `
elapsed = 0
function start(self)
  self:set_name("started")
end
function update(self, dt)
  elapsed = elapsed + dt
  if elapsed >= 2 then
    self:set_active(false)
  end
end
function stop(self)
  self:log("bye " .. self:name())
end
`)

	f.scene.Start()
	assert.Equal(t, "started", obj.Name())

	f.scene.Update(1)
	assert.True(t, obj.Active())
	f.scene.Update(1)
	assert.False(t, obj.Active())

	f.scene.Stop()
	assert.Equal(t, 1, f.logs.FilterMessage("bye started").Len())
}

func TestMissingHooksAreSkipped(t *testing.T) {
	f := newFixture(t)
	_, s := f.script(t, "quiet", `x = 1`)

	f.scene.Start()
	f.scene.Update(0.5)
	f.scene.Validate()
	f.scene.Stop()
	assert.Zero(t, f.logs.FilterMessage("lua hook failed").Len())
	assert.Equal(t, `x = 1`, s.Source())
}

func TestRuntimeErrorsAreLogged(t *testing.T) {
	f := newFixture(t)
	_, s := f.script(t, "broken", `
function update(self, dt)
  error("boom")
end
`)

	f.scene.Update(1)
	f.scene.Update(1)
	assert.Equal(t, 2, f.logs.FilterMessage("lua hook failed").Len())

	s.Update(1)
	assert.Equal(t, 3, f.logs.FilterMessage("lua hook failed").Len())
}

func TestLoadRejectsBadChunks(t *testing.T) {
	f := newFixture(t)
	obj := f.scene.Object(f.mem.CreateObject(f.sceneID, "bad", 0))
	s, err := scene.AddComponent[*Script](obj)
	require.NoError(t, err)

	assert.Error(t, s.Load(`function (`))
	assert.Empty(t, s.Source())
}

func TestLoadWhileRunningStarts(t *testing.T) {
	f := newFixture(t)
	f.scene.Start()

	root := f.scene.Object(f.mem.CreateObject(f.sceneID, "root", 0))
	f.mem.CreateObject(f.sceneID, "a", root.ID())
	f.mem.CreateObject(f.sceneID, "b", root.ID())

	s, err := scene.AddComponent[*Script](root)
	require.NoError(t, err)
	require.NoError(t, s.Load(`
function start(self)
  self:set_name("children:" .. self:child_count())
end
`))
	assert.Equal(t, "children:2", root.Name())
}

func TestDestroyedScriptDoesNothing(t *testing.T) {
	f := newFixture(t)
	obj, s := f.script(t, "gone", `
function update(self, dt)
  self:set_name("ran")
end
`)
	f.mem.DestroyObject(f.sceneID, obj.ID())

	assert.True(t, s.IsDestroyed())
	s.Update(1)
	require.NoError(t, s.Load(`x = 2`))
	assert.Equal(t, `
function update(self, dt)
  self:set_name("ran")
end
`, s.Source())
}
