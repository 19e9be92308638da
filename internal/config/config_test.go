package config

import (
	"os"
	"path/filepath"
	"testing"

	"voxelworld/internal/chunk"
	"voxelworld/internal/meshing"
	"voxelworld/internal/terrain"
	"voxelworld/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.World.Count)
	assert.Equal(t, 20, cfg.World.TickRate)
	assert.Equal(t, "noise", cfg.Terrain.Generator)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, world.DefaultSettings().SpawningDistance, cfg.World.SpawningDistance)

	s := cfg.World.Settings()
	want := world.DefaultSettings()
	want.RandomSeed = 1
	assert.Equal(t, want, s)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxelworld.yaml")
	yaml := `
world:
  spawning_distance: 4
  spawn_strategy: close
  despawn_strategy: far_away
  regenerate_strategy: repopulate
  mesher: greedy
  lod: [2, 4]
terrain:
  generator: flat
  flat_height: 12
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// File values override defaults, the rest is kept.
	assert.Equal(t, 4, cfg.World.SpawningDistance)
	assert.Equal(t, 20, cfg.World.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)

	s := cfg.World.Settings()
	assert.Equal(t, world.Close, s.SpawnStrategy)
	assert.Equal(t, world.FarAway, s.DespawnStrategy)
	assert.Equal(t, chunk.Repopulate, s.RegenerateStrategy)
	assert.Equal(t, meshing.Greedy, s.Mesher)

	gen := cfg.Terrain.NewGenerator()
	require.IsType(t, &terrain.FlatGenerator{}, gen)
	assert.Equal(t, 12, gen.Column(0, 0).Height)

	def := cfg.Definition(0)
	assert.Equal(t, 4, def.Settings().SpawningDistance)
	assert.Equal(t, chunk.PaddedUniform(16), def.DataShape(1))
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world: [1, 2"), 0644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"spawn strategy", func(c *Config) { c.World.SpawnStrategy = "everywhere" }},
		{"despawn strategy", func(c *Config) { c.World.DespawnStrategy = "never" }},
		{"regenerate strategy", func(c *Config) { c.World.RegenerateStrategy = "fresh" }},
		{"mesher", func(c *Config) { c.World.Mesher = "marching" }},
		{"generator", func(c *Config) { c.Terrain.Generator = "islands" }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"metrics addr", func(c *Config) { c.Metrics.Enabled, c.Metrics.Addr = true, "" }},
		{"lod order", func(c *Config) { c.World.LOD = []int{4, 2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := Default()
	cfg.World.SpawningDistance = 500
	cfg.World.MinSpawningDistance = 900
	cfg.World.Count = 0
	cfg.World.TickRate = -5
	cfg.World.SpawningRays = -1
	cfg.Workers.QueueSize = 0
	require.NoError(t, cfg.Validate())

	assert.Equal(t, maxSpawningDistance, cfg.World.SpawningDistance)
	assert.Equal(t, maxSpawningDistance, cfg.World.MinSpawningDistance)
	assert.Equal(t, 1, cfg.World.Count)
	assert.Equal(t, 1, cfg.World.TickRate)
	assert.Zero(t, cfg.World.SpawningRays)
	assert.Equal(t, 1, cfg.Workers.QueueSize)

	cfg.World.SpawningDistance = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, minSpawningDistance, cfg.World.SpawningDistance)
	assert.Equal(t, minSpawningDistance, cfg.World.MinSpawningDistance)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxelworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  spawning_distance: 4\n  ticks: 10\n"), 0644))

	cfg, err := Load("voxelworld", []string{
		"-config", path,
		"-debug",
		"-spawn-distance", "6",
		"-workers", "3",
		"-metrics-addr", "127.0.0.1:9999",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.World.SpawningDistance)
	assert.Equal(t, 10, cfg.World.Ticks, "unset flags keep file values")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Workers.Count)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Addr)
}

func TestLoadBadFlag(t *testing.T) {
	_, err := Load("voxelworld", []string{"-nope"})
	assert.Error(t, err)
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := Default()
	cfg.World.SpawningDistance = 7
	cfg.Terrain.Generator = "flat"
	cfg.Camera.Start = [3]float32{1, 2, 3}
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefinitionSeedsPerWorld(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Seed = 10
	a := cfg.Definition(0).Generator().(*terrain.NoiseGenerator)
	b := cfg.Definition(2).Generator().(*terrain.NoiseGenerator)
	assert.Equal(t, int64(10), a.Params().Seed)
	assert.Equal(t, int64(12), b.Params().Seed)
	assert.Equal(t, int64(10), cfg.Terrain.Seed)
}
