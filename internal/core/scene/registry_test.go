package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenebridge/internal/core/native"
)

func TestScriptIndicesFollowRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	hi, err := RegisterScript(reg, func() *Health { return &Health{} })
	require.NoError(t, err)
	ai, err := RegisterScript(reg, func() *Armor { return &Armor{} })
	require.NoError(t, err)

	assert.Equal(t, native.TypeIndex(0), hi)
	assert.Equal(t, native.TypeIndex(1), ai)

	e, ok := reg.EntryByIndex(ai)
	require.True(t, ok)
	assert.Equal(t, "Armor", e.Name())
	assert.Equal(t, ProvenanceScript, e.Provenance())

	_, ok = reg.EntryByIndex(2)
	assert.False(t, ok)
	_, ok = reg.EntryByIndex(native.NoTypeIndex)
	assert.False(t, ok)

	tr, err := Lookup[*Transform](reg)
	require.NoError(t, err)
	assert.Equal(t, native.NoTypeIndex, tr.Index())
	assert.Equal(t, TransformType, tr.NativeName())
}

func TestRegistrationErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterNative(reg, "Transform", func() *Transform { return &Transform{} }))

	err := RegisterNative(reg, "Transform2", func() *Transform { return &Transform{} })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	err = RegisterNative(reg, "Transform", func() *AudioSource { return &AudioSource{} })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	err = RegisterNative[*TextComponent](reg, "", nil)
	assert.ErrorIs(t, err, ErrInvalidComponentType)

	err = RegisterCapability[*Health](reg)
	assert.ErrorIs(t, err, ErrInvalidComponentType)

	reg.Seal()
	_, err = RegisterScript(reg, func() *Health { return &Health{} })
	assert.ErrorIs(t, err, ErrRegistrySealed)
	assert.True(t, reg.Sealed())
}

func TestUnknownTypeLookup(t *testing.T) {
	reg := NewRegistry()
	_, err := Lookup[*Ghost](reg)
	assert.ErrorIs(t, err, ErrUnknownComponentType)
	_, err = reg.LookupName("Ghost")
	assert.ErrorIs(t, err, ErrUnknownComponentType)
}

func TestSealComputesCapabilityTags(t *testing.T) {
	reg := NewRegistry()
	_, _ = RegisterScript(reg, func() *Health { return &Health{} })
	require.NoError(t, RegisterCapability[Damageable](reg))
	_, _ = RegisterScript(reg, func() *Armor { return &Armor{} })
	reg.Seal()

	health, _ := Lookup[*Health](reg)
	armor, _ := Lookup[*Armor](reg)
	capability, _ := Lookup[Damageable](reg)

	assert.True(t, capability.matches(health))
	assert.True(t, capability.matches(armor))
	assert.True(t, health.matches(health))
	assert.False(t, health.matches(armor))
	assert.False(t, capability.Instantiable())
}

func TestTagSetGrows(t *testing.T) {
	var s tagSet
	s.set(3)
	s.set(130)
	assert.True(t, s.has(3))
	assert.True(t, s.has(130))
	assert.False(t, s.has(4))
	assert.False(t, s.has(1000))
}
