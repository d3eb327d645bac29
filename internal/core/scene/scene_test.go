package scene

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleOrder(t *testing.T) {
	f := newFixture(t)
	first := f.object("first", nil)
	second := f.object("second", nil)

	_, err := AddComponent[*Armor](second)
	require.NoError(t, err)
	_, err = AddComponent[*Health](first)
	require.NoError(t, err)
	_, err = AddComponent[*Transform](first)
	require.NoError(t, err)

	f.scene.Start()
	f.scene.Start()
	f.scene.Update(0.016)
	f.scene.Validate()
	f.scene.Stop()
	f.scene.Stop()

	assert.Equal(t, []string{
		"health.start",
		"health.update",
		"armor.update",
		"armor.validate",
		"health.stop",
	}, f.journal)
	assert.False(t, f.scene.Running())
}

func TestUpdateSkipsInactiveObjects(t *testing.T) {
	f := newFixture(t)
	obj := f.object("obj", nil)
	_, err := AddComponent[*Health](obj)
	require.NoError(t, err)

	obj.SetActive(false)
	f.scene.Update(1)
	assert.Empty(t, f.journal)

	obj.SetActive(true)
	f.scene.Update(1)
	assert.Equal(t, []string{"health.update"}, f.journal)
}

func TestComponentsAttachedWhileRunningStart(t *testing.T) {
	f := newFixture(t)
	obj := f.object("obj", nil)

	f.scene.Start()
	_, err := AddComponent[*Health](obj)
	require.NoError(t, err)
	assert.Equal(t, []string{"health.start"}, f.journal)
}

func TestDestroyedObjectsLeaveTheUpdateLoop(t *testing.T) {
	f := newFixture(t)
	keep := f.object("keep", nil)
	drop := f.object("drop", nil)
	_, _ = AddComponent[*Health](keep)
	_, _ = AddComponent[*Health](drop)

	f.mem.DestroyObject(f.sceneID, drop.ID())
	f.scene.Update(1)

	assert.Equal(t, []string{"health.update"}, f.journal)
	assert.Equal(t, []*SceneObject{keep}, f.scene.Objects())
}

func TestMetricsTrackCacheAndStaleness(t *testing.T) {
	f := newFixture(t)
	obj := f.object("obj", nil)
	_, _ = AddComponent[*Transform](obj)
	_, _ = GetComponent[*Transform](obj)
	_, _ = GetComponent[*Transform](obj)
	f.mem.DestroyObject(f.sceneID, obj.ID())
	obj.Name()

	reg := f.metrics.Registry()
	require.NotNil(t, reg)
	assert.Equal(t, 2.0, counterValue(t, reg, "scenebridge_component_lookups_total", "result", "hit"))
	assert.Equal(t, 1.0, counterValue(t, reg, "scenebridge_component_handles_created_total", "provenance", "native"))
	assert.Equal(t, 1.0, counterValue(t, reg, "scenebridge_component_handles_removed_total", "provenance", "native"))
	assert.Equal(t, 1.0, counterValue(t, reg, "scenebridge_stale_handle_accesses_total", "operation", "Name"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
