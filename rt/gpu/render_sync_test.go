package gpu

import (
	"errors"
	"testing"

	"github.com/gekko3d/pointsync/rt/core"
	"github.com/gekko3d/pointsync/rt/points"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	label    string
	size     uint64
	released bool
}

func (b *fakeBuffer) GetSize() uint64 { return b.size }
func (b *fakeBuffer) Release()        { b.released = true }

type bufferWrite struct {
	label  string
	offset uint64
	size   int
}

type fakeDevice struct {
	created  []*fakeBuffer
	writes   []bufferWrite
	writeErr error
}

func (d *fakeDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	b := &fakeBuffer{label: desc.Label, size: desc.Size}
	d.created = append(d.created, b)
	return b, nil
}

func (d *fakeDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, bufferWrite{label: buf.(*fakeBuffer).label, offset: offset, size: len(data)})
	return nil
}

func (d *fakeDevice) reset() { d.created, d.writes = nil, nil }

func TestBufferUploader_SyncGrowsAndClearsDirty(t *testing.T) {
	dev := &fakeDevice{}
	u := NewBufferUploader(dev, nil)
	a := points.NewBufferPointsAdapter(points.BufferOptions{MaxParticles: 2})
	require.NoError(t, a.OnParticleCreated(core.NewParticle()))

	require.NoError(t, u.Sync(a))
	require.Len(t, dev.created, 4)
	assert.Equal(t, uint64(2*12), u.Buffer("position").GetSize())
	assert.Equal(t, uint64(2*4), u.Buffer("aSpriteIdx").GetSize())
	for _, attr := range a.Attributes() {
		assert.False(t, attr.Dirty(), "%s still dirty after sync", attr.Label())
	}
	assert.Equal(t, 1, u.DrawCount())

	first := u.Buffer("position").(*fakeBuffer)
	dev.reset()
	require.NoError(t, a.OnParticleCreated(core.NewParticle()))
	require.NoError(t, a.OnParticleCreated(core.NewParticle()))
	require.Equal(t, 3, a.Capacity())

	require.NoError(t, u.Sync(a))
	assert.True(t, first.released, "outgrown buffers are released")
	assert.Len(t, dev.created, 4)
	assert.Equal(t, uint64(3*12), u.Buffer("position").GetSize())
	for _, w := range dev.writes {
		assert.Equal(t, uint64(0), w.offset, "recreated %s gets a full upload", w.label)
	}
	assert.Equal(t, 3, u.DrawCount())

	dev.reset()
	require.NoError(t, u.Sync(a))
	assert.Empty(t, dev.created)
	assert.Empty(t, dev.writes, "clean attributes are not uploaded")
}

func TestBufferUploader_SyncInterleavedDirtyRange(t *testing.T) {
	dev := &fakeDevice{}
	u := NewBufferUploader(dev, nil)
	a := points.NewOffsetPointsAdapter(points.OffsetOptions{MaxParticles: 8})

	p := core.NewParticle()
	p.Index = 2
	p.Position = mgl32.Vec3{1, 1, 1}
	require.NoError(t, a.OnParticleCreated(p))
	require.NoError(t, a.OnSystemUpdate())
	require.NoError(t, u.Sync(a))
	require.Len(t, dev.writes, 1)
	assert.Equal(t, bufferWrite{label: "points", offset: 0, size: 8 * points.PointStride * 4}, dev.writes[0])
	assert.Equal(t, 8, u.DrawCount())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, u.Bounds().Center)

	dev.reset()
	q := core.NewParticle()
	q.Index = 5
	require.NoError(t, a.OnParticleCreated(q))
	require.NoError(t, u.Sync(a))
	assert.Empty(t, dev.created)
	require.Len(t, dev.writes, 1)
	assert.Equal(t, bufferWrite{label: "points", offset: 5 * points.PointStride * 4, size: points.PointStride * 4}, dev.writes[0])
	assert.False(t, a.Buffer().Dirty())
}

func TestBufferUploader_WriteErrorKeepsDirty(t *testing.T) {
	dev := &fakeDevice{writeErr: errors.New("device lost")}
	u := NewBufferUploader(dev, nil)
	a := points.NewBufferPointsAdapter(points.BufferOptions{})
	require.NoError(t, a.OnParticleCreated(core.NewParticle()))

	err := u.Sync(a)
	require.Error(t, err)
	assert.ErrorIs(t, err, dev.writeErr)
	assert.True(t, a.Position().Dirty())
	assert.Equal(t, 0, u.DrawCount())

	u.Release()
	assert.Nil(t, u.Buffer("position"))
	assert.True(t, dev.created[0].released)
}
