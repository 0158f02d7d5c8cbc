package pointsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/pointsync/rt/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
buffer:
  maxParticles: 256
  drawRange: 0.5
offset:
  maxParticles: 64
log:
  debug: true
`))
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Buffer.MaxParticles)
	require.NotNil(t, cfg.Buffer.DrawRange)
	assert.Equal(t, float32(0.5), *cfg.Buffer.DrawRange)
	assert.Equal(t, 64, cfg.Offset.MaxParticles)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "pointsync", cfg.Log.Prefix, "unset fields keep defaults")
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative buffer": "buffer:\n  maxParticles: -1\n",
		"negative offset": "offset:\n  maxParticles: -5\n",
		"draw range":      "buffer:\n  drawRange: 1.5\n",
		"nan draw range":  "buffer:\n  drawRange: .nan\n",
		"bad yaml":        "buffer: [\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte("offset:\n  maxParticles: 16\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Offset.MaxParticles)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_BuildsAdapters(t *testing.T) {
	cfg, err := ParseConfig([]byte("buffer:\n  maxParticles: 4\n  drawRange: 0.5\noffset:\n  maxParticles: 16\n"))
	require.NoError(t, err)
	logger := core.NewNopLogger()

	buffer := cfg.NewBufferAdapter(logger)
	assert.Equal(t, 4, buffer.Capacity())
	for i := 0; i < 4; i++ {
		require.NoError(t, buffer.OnParticleCreated(core.NewParticle()))
	}
	assert.Equal(t, 2, buffer.VisibleCount())

	offset := cfg.NewOffsetAdapter(logger)
	assert.Equal(t, 16, offset.Capacity())

	defaults := DefaultConfig()
	assert.NoError(t, defaults.Validate())
	assert.Equal(t, 8, defaults.NewBufferAdapter(nil).Capacity())
	assert.Equal(t, 1024, defaults.NewOffsetAdapter(nil).Capacity())
	assert.NotNil(t, defaults.NewLogger())
}
