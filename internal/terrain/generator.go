package terrain

import (
	"math"

	"voxelworld/internal/registry"
	"voxelworld/internal/voxel"
)

// Column is the terrain at one world X,Z.
type Column struct {
	// Height is the Y of the topmost solid voxel.
	Height int
	Biome  *Biome
}

// Generator decides the terrain columns of a world.
type Generator interface {
	Column(x, z int) Column
}

// Carver removes voxels below the surface, for caves.
type Carver interface {
	Carved(x, y, z int) bool
}

const (
	fillerDepth  = 3
	bedrockLevel = 0
)

// Params tune the noise generator.
type Params struct {
	Seed       int64
	Scale      float64 // height noise frequency
	BiomeScale float64 // biome noise frequency
	BaseHeight int
	Amplitude  float64
	Octaves    int
	SnowLine   int
	Caves      bool
	// CaveThreshold is compared with raw 3D noise; higher means fewer caves.
	CaveThreshold float64
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:          seed,
		Scale:         1.0 / 64.0,
		BiomeScale:    1.0 / 400.0,
		BaseHeight:    32,
		Amplitude:     32,
		Octaves:       4,
		SnowLine:      72,
		Caves:         true,
		CaveThreshold: 0.3,
	}
}

// NoiseGenerator builds terrain from a Perlin height field modulated by
// biomes.
type NoiseGenerator struct {
	params Params
	height noise2D
	biome  noise2D
	cave   noise3D
}

// NewGenerator creates a noise generator. Zero fields of p fall back to
// DefaultParams.
func NewGenerator(p Params) *NoiseGenerator {
	d := DefaultParams(p.Seed)
	if p.Scale <= 0 {
		p.Scale = d.Scale
	}
	if p.BiomeScale <= 0 {
		p.BiomeScale = d.BiomeScale
	}
	if p.Amplitude <= 0 {
		p.Amplitude = d.Amplitude
	}
	if p.Octaves <= 0 {
		p.Octaves = d.Octaves
	}
	return &NoiseGenerator{
		params: p,
		height: newNoise2D(p.Seed, p.Octaves, p.Scale),
		biome:  newNoise2D(p.Seed+1013, 2, p.BiomeScale),
		cave:   newNoise3D(p.Seed+2027, 2, p.Scale*2),
	}
}

func (g *NoiseGenerator) Params() Params { return g.params }

// Column computes world surface height and biome at world X,Z.
func (g *NoiseGenerator) Column(x, z int) Column {
	b := g.biome.at(x, z)
	lo, hi := heightRange(b)
	n := g.height.at(x, z)
	h := float64(g.params.BaseHeight) + (lo+n*hi)*g.params.Amplitude
	return Column{
		Height: max(int(math.Floor(h)), bedrockLevel+1),
		Biome:  BiomeFor(b),
	}
}

// Carved reports whether a cave passes through x,y,z. Bedrock is never
// carved.
func (g *NoiseGenerator) Carved(x, y, z int) bool {
	if !g.params.Caves || y <= bedrockLevel {
		return false
	}
	return g.cave.at(x, y, z) > g.params.CaveThreshold
}

// SnowLine is the height from which surfaces are covered in snow.
func (g *NoiseGenerator) SnowLine() int { return g.params.SnowLine }

// FlatGenerator produces the same column everywhere.
type FlatGenerator struct {
	height int
	biome  *Biome
}

func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: max(height, bedrockLevel), biome: BiomePlains}
}

func (g *FlatGenerator) Column(int, int) Column {
	return Column{Height: g.height, Biome: g.biome}
}

// Voxel returns the terrain voxel at y in a column. Unset is never
// returned.
func Voxel(g Generator, col Column, x, y, z int) voxel.Voxel {
	switch {
	case y > col.Height:
		return voxel.Air
	case y <= bedrockLevel:
		return voxel.Solid(registry.Bedrock)
	}
	if c, ok := g.(Carver); ok && y < col.Height-fillerDepth && c.Carved(x, y, z) {
		return voxel.Air
	}
	switch {
	case y == col.Height:
		return voxel.Solid(surface(g, col, x, z))
	case y >= col.Height-fillerDepth:
		return voxel.Solid(col.Biome.Filler)
	}
	return voxel.Solid(registry.Stone)
}

func surface(g Generator, col Column, x, z int) voxel.Material {
	if s, ok := g.(interface{ SnowLine() int }); ok && s.SnowLine() > 0 && col.Height >= s.SnowLine() {
		return registry.Snow
	}
	if col.Biome == BiomeOcean {
		switch j := jitter(x, z, 0); {
		case j < 0.1:
			return registry.Gravel
		case j < 0.15:
			return registry.Clay
		}
	}
	return col.Biome.Top
}
