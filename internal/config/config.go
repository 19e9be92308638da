// Package config handles loading and validating the simulation settings.
package config

import (
	"time"

	"voxelworld/internal/chunk"
	"voxelworld/internal/logger"
	"voxelworld/internal/meshing"
	"voxelworld/internal/terrain"
	"voxelworld/internal/world"
)

// Config holds all settings of a voxelworld process.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Workers WorkersConfig `yaml:"workers"`
	Terrain TerrainConfig `yaml:"terrain"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Overlay OverlayConfig `yaml:"overlay"`
}

// WorldConfig holds the scheduler settings shared by every world and the
// tick loop.
type WorldConfig struct {
	Count               int    `yaml:"count"`
	TickRate            int    `yaml:"tick_rate"` // ticks per second
	Ticks               int    `yaml:"ticks"`     // 0 runs until interrupted
	SpawningDistance    int    `yaml:"spawning_distance"`
	MinSpawningDistance int    `yaml:"min_spawning_distance"`
	SpawnStrategy       string `yaml:"spawn_strategy"`
	DespawnStrategy     string `yaml:"despawn_strategy"`
	MaxSpawnPerTick     int    `yaml:"max_spawn_per_tick"`
	SpawningRays        int    `yaml:"spawning_rays"`
	SpawningRayMargin   int    `yaml:"spawning_ray_margin"`
	RegenerateStrategy  string `yaml:"regenerate_strategy"`
	Mesher              string `yaml:"mesher"`
	Seed                uint64 `yaml:"seed"`
	// LOD lists the distances, in chunks, past which resolution halves.
	LOD []int `yaml:"lod,omitempty"`
	// Assets is a block model pack directory supplying material textures.
	Assets string `yaml:"assets,omitempty"`
}

// WorkersConfig sizes the shared task pool and mesh cache.
type WorkersConfig struct {
	Count         int `yaml:"count"` // 0 uses one worker per CPU
	QueueSize     int `yaml:"queue_size"`
	CacheCapacity int `yaml:"cache_capacity"`
}

// TerrainConfig selects and tunes the terrain generator.
type TerrainConfig struct {
	Generator     string  `yaml:"generator"` // "noise" or "flat"
	Seed          int64   `yaml:"seed"`
	FlatHeight    int     `yaml:"flat_height"`
	BaseHeight    int     `yaml:"base_height"`
	Amplitude     float64 `yaml:"amplitude"`
	Scale         float64 `yaml:"scale"`
	BiomeScale    float64 `yaml:"biome_scale"`
	Octaves       int     `yaml:"octaves"`
	SnowLine      int     `yaml:"snow_line"`
	Caves         bool    `yaml:"caves"`
	CaveThreshold float64 `yaml:"cave_threshold"`
}

// CameraConfig drives the simulated viewer of the headless loop.
type CameraConfig struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	FOV    float32    `yaml:"fov"`
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
	Start  [3]float32 `yaml:"start"`
	// Speed is in voxels per second along the look direction.
	Speed float32 `yaml:"speed"`
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
	// DigInterval clears the voxel under the crosshair this often. 0 disables.
	DigInterval time.Duration `yaml:"dig_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string            `yaml:"level"`
	Console bool              `yaml:"console"`
	File    logger.FileConfig `yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// OverlayConfig points at the modified-voxel snapshot.
type OverlayConfig struct {
	Path       string `yaml:"path"`
	SaveOnExit bool   `yaml:"save_on_exit"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	s := world.DefaultSettings()
	p := terrain.DefaultParams(1)
	return &Config{
		World: WorldConfig{
			Count:               1,
			TickRate:            20,
			SpawningDistance:    s.SpawningDistance,
			MinSpawningDistance: s.MinSpawningDistance,
			SpawnStrategy:       s.SpawnStrategy.String(),
			DespawnStrategy:     s.DespawnStrategy.String(),
			MaxSpawnPerTick:     s.MaxSpawnPerTick,
			SpawningRays:        s.SpawningRays,
			SpawningRayMargin:   s.SpawningRayMargin,
			RegenerateStrategy:  "reuse",
			Mesher:              s.Mesher.String(),
			Seed:                1,
		},
		Workers: WorkersConfig{
			QueueSize:     4096,
			CacheCapacity: 1024,
		},
		Terrain: TerrainConfig{
			Generator:     "noise",
			Seed:          p.Seed,
			FlatHeight:    8,
			BaseHeight:    p.BaseHeight,
			Amplitude:     p.Amplitude,
			Scale:         p.Scale,
			BiomeScale:    p.BiomeScale,
			Octaves:       p.Octaves,
			SnowLine:      p.SnowLine,
			Caves:         p.Caves,
			CaveThreshold: p.CaveThreshold,
		},
		Camera: CameraConfig{
			Width:  1280,
			Height: 720,
			FOV:    70,
			Near:   0.1,
			Far:    1000,
			Start:  [3]float32{0, 80, 0},
			Speed:  8,
			Pitch:  -20,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}

// Settings converts the world section into runtime settings. Call Validate
// first; unknown strategy names fall back to the defaults.
func (c WorldConfig) Settings() world.Settings {
	s := world.DefaultSettings()
	s.SpawningDistance = c.SpawningDistance
	s.MinSpawningDistance = c.MinSpawningDistance
	s.MaxSpawnPerTick = c.MaxSpawnPerTick
	s.SpawningRays = c.SpawningRays
	s.SpawningRayMargin = c.SpawningRayMargin
	s.RandomSeed = c.Seed
	if v, ok := parseSpawnStrategy(c.SpawnStrategy); ok {
		s.SpawnStrategy = v
	}
	if v, ok := parseDespawnStrategy(c.DespawnStrategy); ok {
		s.DespawnStrategy = v
	}
	if v, ok := parseRegenerateStrategy(c.RegenerateStrategy); ok {
		s.RegenerateStrategy = v
	}
	if v, ok := meshing.ParseAlgorithm(c.Mesher); ok {
		s.Mesher = v
	}
	return s.Normalize()
}

// Params converts the terrain section into generator parameters.
func (c TerrainConfig) Params() terrain.Params {
	return terrain.Params{
		Seed:          c.Seed,
		Scale:         c.Scale,
		BiomeScale:    c.BiomeScale,
		BaseHeight:    c.BaseHeight,
		Amplitude:     c.Amplitude,
		Octaves:       c.Octaves,
		SnowLine:      c.SnowLine,
		Caves:         c.Caves,
		CaveThreshold: c.CaveThreshold,
	}
}

// NewGenerator builds the configured terrain generator.
func (c TerrainConfig) NewGenerator() terrain.Generator {
	if c.Generator == "flat" {
		return terrain.NewFlatGenerator(c.FlatHeight)
	}
	return terrain.NewGenerator(c.Params())
}

// Definition builds a world definition from the terrain and world sections.
// Each world gets its own terrain seed offset by index.
func (c *Config) Definition(index int, opts ...terrain.Option) *terrain.Definition {
	tc := c.Terrain
	tc.Seed += int64(index)
	base := []terrain.Option{
		terrain.WithSettings(c.World.Settings()),
		terrain.WithLOD(c.World.LOD...),
	}
	return terrain.NewDefinition(tc.NewGenerator(), append(base, opts...)...)
}

func parseSpawnStrategy(s string) (world.SpawnStrategy, bool) {
	switch s {
	case world.CloseAndInView.String(), "":
		return world.CloseAndInView, true
	case world.Close.String():
		return world.Close, true
	}
	return world.CloseAndInView, false
}

func parseDespawnStrategy(s string) (world.DespawnStrategy, bool) {
	switch s {
	case world.FarAwayOrOutOfView.String(), "":
		return world.FarAwayOrOutOfView, true
	case world.FarAway.String():
		return world.FarAway, true
	}
	return world.FarAwayOrOutOfView, false
}

func parseRegenerateStrategy(s string) (chunk.RegenerateStrategy, bool) {
	switch s {
	case "reuse", "":
		return chunk.Reuse, true
	case "repopulate":
		return chunk.Repopulate, true
	}
	return chunk.Reuse, false
}
