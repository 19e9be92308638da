// Command heightmap renders the surface of the configured terrain to a PNG,
// shaded by height and tinted by surface material.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"voxelworld/internal/config"
	"voxelworld/internal/registry"
	"voxelworld/internal/terrain"
	"voxelworld/internal/voxel"

	"golang.org/x/image/draw"
)

type options struct {
	configPath string
	out        string
	centerX    int
	centerZ    int
	span       int // world columns per side
	size       int // output pixels per side
	seed       int64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.out, "out", "heightmap.png", "Output PNG")
	flag.IntVar(&opts.centerX, "x", 0, "Center X")
	flag.IntVar(&opts.centerZ, "z", 0, "Center Z")
	flag.IntVar(&opts.span, "span", 512, "World columns per side")
	flag.IntVar(&opts.size, "size", 1024, "Output size in pixels")
	flag.Int64Var(&opts.seed, "seed", 0, "Override the terrain seed")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "heightmap:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return err
		}
	}
	if opts.seed != 0 {
		cfg.Terrain.Seed = opts.seed
	}

	gen := cfg.Terrain.NewGenerator()
	src := render(gen, opts.centerX-opts.span/2, opts.centerZ-opts.span/2, opts.span)
	dst := image.NewRGBA(image.Rect(0, 0, opts.size, opts.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// render draws one pixel per column of the span x span square at (x0, z0).
func render(gen terrain.Generator, x0, z0, span int) *image.RGBA {
	span = max(span, 1)
	img := image.NewRGBA(image.Rect(0, 0, span, span))
	lo, hi := heightRange(gen, x0, z0, span)
	for dz := range span {
		for dx := range span {
			x, z := x0+dx, z0+dz
			col := gen.Column(x, z)
			top := terrain.Voxel(gen, col, x, col.Height, z)
			shade := 0.4 + 0.6*float64(col.Height-lo)/float64(max(hi-lo, 1))
			img.SetRGBA(dx, dz, tint(top, shade))
		}
	}
	return img
}

func heightRange(gen terrain.Generator, x0, z0, span int) (lo, hi int) {
	lo, hi = gen.Column(x0, z0).Height, gen.Column(x0, z0).Height
	step := max(span/64, 1)
	for dz := 0; dz < span; dz += step {
		for dx := 0; dx < span; dx += step {
			h := gen.Column(x0+dx, z0+dz).Height
			lo, hi = min(lo, h), max(hi, h)
		}
	}
	return lo, hi
}

var palette = map[voxel.Material]color.RGBA{
	registry.Stone:   {128, 128, 128, 255},
	registry.Dirt:    {134, 96, 67, 255},
	registry.Grass:   {95, 159, 53, 255},
	registry.Sand:    {219, 207, 163, 255},
	registry.Gravel:  {136, 126, 126, 255},
	registry.Snow:    {240, 251, 251, 255},
	registry.Bedrock: {40, 40, 40, 255},
	registry.Clay:    {160, 166, 179, 255},
}

func tint(v voxel.Voxel, shade float64) color.RGBA {
	m, ok := v.Material()
	if !ok {
		return color.RGBA{0, 0, 0, 255}
	}
	c, ok := palette[m]
	if !ok {
		c = color.RGBA{255, 0, 255, 255}
	}
	shade = min(max(shade, 0), 1)
	return color.RGBA{
		R: uint8(float64(c.R) * shade),
		G: uint8(float64(c.G) * shade),
		B: uint8(float64(c.B) * shade),
		A: 255,
	}
}
