package config

import (
	"errors"
	"fmt"
	"strings"

	"voxelworld/internal/meshing"
)

var ErrInvalid = errors.New("config: invalid")

const (
	minSpawningDistance = 1
	maxSpawningDistance = 64
)

// Validate rejects unknown names and clamps numeric settings into range.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field, value string) {
		errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalid, field, value))
	}

	w := &c.World
	if _, ok := parseSpawnStrategy(w.SpawnStrategy); !ok {
		invalid("world.spawn_strategy", w.SpawnStrategy)
	}
	if _, ok := parseDespawnStrategy(w.DespawnStrategy); !ok {
		invalid("world.despawn_strategy", w.DespawnStrategy)
	}
	if _, ok := parseRegenerateStrategy(w.RegenerateStrategy); !ok {
		invalid("world.regenerate_strategy", w.RegenerateStrategy)
	}
	if _, ok := meshing.ParseAlgorithm(w.Mesher); !ok {
		invalid("world.mesher", w.Mesher)
	}
	switch c.Terrain.Generator {
	case "noise", "flat":
	default:
		invalid("terrain.generator", c.Terrain.Generator)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		invalid("logging.level", c.Logging.Level)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		invalid("metrics.addr", "")
	}

	w.Count = max(w.Count, 1)
	w.TickRate = min(max(w.TickRate, 1), 1000)
	w.Ticks = max(w.Ticks, 0)
	w.SpawningDistance = min(max(w.SpawningDistance, minSpawningDistance), maxSpawningDistance)
	w.MinSpawningDistance = min(max(w.MinSpawningDistance, 0), w.SpawningDistance)
	w.MaxSpawnPerTick = max(w.MaxSpawnPerTick, 0)
	w.SpawningRays = max(w.SpawningRays, 0)
	w.SpawningRayMargin = max(w.SpawningRayMargin, 0)
	for i := 1; i < len(w.LOD); i++ {
		if w.LOD[i] < w.LOD[i-1] {
			invalid("world.lod", fmt.Sprint(w.LOD))
			break
		}
	}

	c.Workers.Count = max(c.Workers.Count, 0)
	c.Workers.QueueSize = max(c.Workers.QueueSize, 1)
	c.Workers.CacheCapacity = max(c.Workers.CacheCapacity, 0)

	c.Camera.Width = max(c.Camera.Width, 1)
	c.Camera.Height = max(c.Camera.Height, 1)

	return errors.Join(errs...)
}
