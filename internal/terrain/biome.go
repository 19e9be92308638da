package terrain

import (
	"voxelworld/internal/registry"
	"voxelworld/internal/voxel"
)

// Biome defines the properties of a terrain type.
type Biome struct {
	ID   int
	Name string
	// Anchor is where the biome is centred on the [0,1] biome noise axis.
	Anchor float64
	// MinHeight and MaxHeight scale the height noise, in multiples of the
	// generator amplitude.
	MinHeight float64
	MaxHeight float64
	Top       voxel.Material
	Filler    voxel.Material
}

var (
	BiomeOcean = &Biome{
		ID:        0,
		Name:      "Ocean",
		Anchor:    0.15,
		MinHeight: -0.8,
		MaxHeight: 0.3,
		Top:       registry.Sand,
		Filler:    registry.Sand,
	}
	BiomePlains = &Biome{
		ID:        1,
		Name:      "Plains",
		Anchor:    0.42,
		MinHeight: 0.05,
		MaxHeight: 0.2,
		Top:       registry.Grass,
		Filler:    registry.Dirt,
	}
	BiomeForest = &Biome{
		ID:        4,
		Name:      "Forest",
		Anchor:    0.55,
		MinHeight: 0.1,
		MaxHeight: 0.3,
		Top:       registry.Grass,
		Filler:    registry.Dirt,
	}
	BiomeHills = &Biome{
		ID:        3,
		Name:      "Extreme Hills",
		Anchor:    0.7,
		MinHeight: 0.3,
		MaxHeight: 0.9,
		Top:       registry.Grass,
		Filler:    registry.Dirt,
	}
	BiomeMountains = &Biome{
		ID:        5,
		Name:      "Mountains",
		Anchor:    0.9,
		MinHeight: 0.8,
		MaxHeight: 1.4,
		Top:       registry.Stone,
		Filler:    registry.Stone,
	}
)

// Biomes is ordered by Anchor.
var Biomes = []*Biome{BiomeOcean, BiomePlains, BiomeForest, BiomeHills, BiomeMountains}

// BiomeFor picks the biome whose range contains v. Ranges split halfway
// between neighbouring anchors.
func BiomeFor(v float64) *Biome {
	for i := 0; i < len(Biomes)-1; i++ {
		if v < (Biomes[i].Anchor+Biomes[i+1].Anchor)/2 {
			return Biomes[i]
		}
	}
	return Biomes[len(Biomes)-1]
}

// heightRange interpolates MinHeight and MaxHeight between the two anchors
// around v so biome borders do not turn into cliffs.
func heightRange(v float64) (lo, hi float64) {
	first, last := Biomes[0], Biomes[len(Biomes)-1]
	if v <= first.Anchor {
		return first.MinHeight, first.MaxHeight
	}
	if v >= last.Anchor {
		return last.MinHeight, last.MaxHeight
	}
	for i := 0; i < len(Biomes)-1; i++ {
		a, b := Biomes[i], Biomes[i+1]
		if v <= b.Anchor {
			t := (v - a.Anchor) / (b.Anchor - a.Anchor)
			return lerp(a.MinHeight, b.MinHeight, t), lerp(a.MaxHeight, b.MaxHeight, t)
		}
	}
	return last.MinHeight, last.MaxHeight
}
