package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// noise2D samples Perlin noise with several octaves mapped to [0,1].
// A *perlin.Perlin is read-only after construction, so one value is shared
// by every worker generating chunks.
type noise2D struct {
	p     *perlin.Perlin
	scale float64
}

func newNoise2D(seed int64, octaves int, scale float64) noise2D {
	// alpha smooths, beta is the frequency step between octaves.
	return noise2D{p: perlin.NewPerlin(2, 2, int32(max(octaves, 1)), seed), scale: scale}
}

func (n noise2D) at(x, z int) float64 {
	v := n.p.Noise2D(float64(x)*n.scale, float64(z)*n.scale)
	return clamp01((v + 1) / 2)
}

type noise3D struct {
	p      *perlin.Perlin
	scale  float64
	yScale float64
}

func newNoise3D(seed int64, octaves int, scale float64) noise3D {
	return noise3D{p: perlin.NewPerlin(2, 2, int32(max(octaves, 1)), seed), scale: scale, yScale: scale * 2}
}

func (n noise3D) at(x, y, z int) float64 {
	return n.p.Noise3D(float64(x)*n.scale, float64(y)*n.yScale, float64(z)*n.scale)
}

// hash2 is a SplitMix64 style integer hash, stable across runs for the same
// inputs.
func hash2(x, z int, seed int64) uint64 {
	v := uint64(int64(x)) + (uint64(int64(z)) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// jitter maps a column to [0,1] without any spatial coherence.
func jitter(x, z int, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
