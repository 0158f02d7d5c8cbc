package points

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/gekko3d/pointsync/rt/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotOf(t *testing.T, p *core.Particle) int {
	t.Helper()
	idx, ok := p.BufferIdx()
	require.True(t, ok, "particle %s has no slot", p.ID)
	return idx
}

func requirePacked(t *testing.T, tbl *SlotTable) {
	t.Helper()
	require.LessOrEqual(t, tbl.Amount(), tbl.Capacity())
	for slot := 0; slot < tbl.AliveCount(); slot++ {
		owner := tbl.Owner(slot)
		require.NotNil(t, owner, "slot %d has no owner", slot)
		require.Equal(t, slot, slotOf(t, owner))
	}
}

func TestSlotTable_SwapScenario(t *testing.T) {
	tbl := NewSlotTable(4)
	a, b, c := core.NewParticle(), core.NewParticle(), core.NewParticle()

	for i, p := range []*core.Particle{a, b, c} {
		slot, allocated := tbl.Allocate(p)
		require.True(t, allocated)
		require.Equal(t, i, slot)
	}
	assert.Same(t, c, tbl.Last())

	moved, err := tbl.Release(b)
	require.NoError(t, err)
	assert.Same(t, c, moved)
	assert.Equal(t, 1, slotOf(t, c))
	assert.Equal(t, 2, tbl.AliveCount())
	assert.Equal(t, 1, tbl.DeadCount())

	moved, err = tbl.Release(a)
	require.NoError(t, err)
	assert.Same(t, c, moved)
	assert.Equal(t, 0, slotOf(t, c))
	assert.Equal(t, 1, tbl.AliveCount())

	moved, err = tbl.Release(c)
	require.NoError(t, err)
	assert.Nil(t, moved, "releasing the last live slot moves nothing")
	assert.Equal(t, 0, tbl.AliveCount())
	assert.Nil(t, tbl.Last())
}

func TestSlotTable_AllocateIsIdempotent(t *testing.T) {
	tbl := NewSlotTable(2)
	p := core.NewParticle()

	first, allocated := tbl.Allocate(p)
	require.True(t, allocated)
	second, allocated := tbl.Allocate(p)
	assert.False(t, allocated)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tbl.AliveCount())
}

func TestSlotTable_GrowthFromFour(t *testing.T) {
	pos := core.NewAttributeBuffer[float32](core.AttrPosition, 4, 3, core.UsageDynamicDraw)
	tbl := NewSlotTable(4, pos)

	ps := make([]*core.Particle, 5)
	for i := range ps {
		ps[i] = core.NewParticle()
		slot, _ := tbl.Allocate(ps[i])
		pos.SetXYZ(slot, float32(i), float32(i*10), float32(i*100))
	}

	assert.Equal(t, 6, tbl.Capacity())
	assert.Equal(t, 6, pos.Capacity())
	assert.Equal(t, 5, tbl.AliveCount())
	assert.Equal(t, 0, tbl.DeadCount())
	for i, p := range ps {
		assert.Equal(t, []float32{float32(i), float32(i * 10), float32(i * 100)}, pos.At(slotOf(t, p)))
	}
	requirePacked(t, tbl)
}

func TestSlotTable_GrowthFromEmpty(t *testing.T) {
	tbl := NewSlotTable(0)
	tbl.Allocate(core.NewParticle())

	// floor(0*1.5) cannot hold one more, so alive + 1*1.5
	assert.Equal(t, 1, tbl.Capacity())

	tbl.Allocate(core.NewParticle())
	assert.Equal(t, 2, tbl.Capacity())
	tbl.Allocate(core.NewParticle())
	assert.Equal(t, 3, tbl.Capacity())
}

func TestSlotTable_ReserveBatch(t *testing.T) {
	tbl := NewSlotTable(4)

	assert.True(t, tbl.Reserve(10))
	assert.GreaterOrEqual(t, tbl.Capacity(), 10)
	assert.Equal(t, 10, tbl.DeadCount())

	capacity := tbl.Capacity()
	for i := 0; i < 10; i++ {
		tbl.Allocate(core.NewParticle())
	}
	assert.Equal(t, capacity, tbl.Capacity(), "reserved slots are consumed without growth")
	assert.Equal(t, 0, tbl.DeadCount())

	// reserving past already reserved slots still covers the full demand
	tbl2 := NewSlotTable(10)
	tbl2.Reserve(10)
	tbl2.Reserve(24)
	assert.GreaterOrEqual(t, tbl2.Capacity(), 24)
	assert.Equal(t, 24, tbl2.DeadCount())
}

func TestSlotTable_ReleaseErrors(t *testing.T) {
	tbl := NewSlotTable(2)
	p := core.NewParticle()

	_, err := tbl.Release(p)
	var inv *core.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, core.ReleaseWhenEmpty, inv.Kind)
	assert.Equal(t, p.ID, inv.Particle)

	other := core.NewParticle()
	tbl.Allocate(other)
	tbl.Allocate(p)

	moved, err := tbl.Release(core.NewParticle())
	assert.NoError(t, err, "never created particles are ignored")
	assert.Nil(t, moved)
	assert.Equal(t, 2, tbl.AliveCount())

	_, err = tbl.Release(p)
	require.NoError(t, err)
	_, err = tbl.Release(p)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, core.DoubleRelease, inv.Kind)

	stranger := core.NewParticle()
	stranger.BindBufferIdx(0)
	_, err = tbl.Release(stranger)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, core.SlotOwnerMismatch, inv.Kind)

	stray := core.NewParticle()
	stray.BindBufferIdx(5)
	_, err = tbl.Release(stray)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, core.SlotOutOfRange, inv.Kind)
}

func TestSlotTable_RandomSequencesStayPacked(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tbl := NewSlotTable(3)
	live := make([]*core.Particle, 0, 256)

	for step := 0; step < 5000; step++ {
		if len(live) == 0 || rng.Intn(3) != 0 {
			p := core.NewParticle()
			tbl.Allocate(p)
			live = append(live, p)
		} else {
			i := rng.Intn(len(live))
			_, err := tbl.Release(live[i])
			require.NoError(t, err)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		if len(live) > 200 {
			for _, p := range live[:100] {
				_, err := tbl.Release(p)
				require.NoError(t, err)
			}
			live = append(live[:0], live[100:]...)
		}
		require.Equal(t, len(live), tbl.AliveCount())
	}

	requirePacked(t, tbl)
	seen := make(map[int]bool, len(live))
	for _, p := range live {
		slot := slotOf(t, p)
		require.Less(t, slot, tbl.AliveCount())
		require.False(t, seen[slot], "slot %d used twice", slot)
		seen[slot] = true
	}
}
