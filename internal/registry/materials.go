package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"voxelworld/internal/meshing"
	"voxelworld/internal/voxel"
)

// Materials of the default registry.
const (
	Stone voxel.Material = iota + 1
	Dirt
	Grass
	Sand
	Gravel
	Snow
	Bedrock
	Clay
)

var ErrDuplicate = errors.New("registry: duplicate material")

// MaterialDefinition defines the textures and tint of a material.
type MaterialDefinition struct {
	ID          voxel.Material
	Name        string
	TextureTop  string
	TextureSide string
	TextureBot  string
	TintColor   uint32
}

// Registry maps material indices to array-texture layers.
type Registry struct {
	mu           sync.RWMutex
	materials    map[voxel.Material]*MaterialDefinition
	names        map[string]voxel.Material
	textureNames []string
	textureMap   map[string]int
}

func New() *Registry {
	r := &Registry{
		materials:  make(map[voxel.Material]*MaterialDefinition),
		names:      make(map[string]voxel.Material),
		textureMap: make(map[string]int),
	}
	// Layer 0 is the fallback texture.
	r.registerTexture("missing.png")
	return r
}

// Register adds def. Empty top or bottom textures fall back to the side
// texture, an empty side texture to "<name>.png".
func (r *Registry) Register(def MaterialDefinition) error {
	if def.TextureSide == "" {
		def.TextureSide = def.Name + ".png"
	}
	if def.TextureTop == "" {
		def.TextureTop = def.TextureSide
	}
	if def.TextureBot == "" {
		def.TextureBot = def.TextureSide
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[def.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicate, def.ID)
	}
	if _, ok := r.names[def.Name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicate, def.Name)
	}
	r.materials[def.ID] = &def
	r.names[def.Name] = def.ID
	r.registerTexture(def.TextureTop)
	r.registerTexture(def.TextureSide)
	r.registerTexture(def.TextureBot)
	return nil
}

func (r *Registry) registerTexture(name string) {
	if _, exists := r.textureMap[name]; !exists {
		r.textureMap[name] = len(r.textureNames)
		r.textureNames = append(r.textureNames, name)
	}
}

func (r *Registry) Lookup(id voxel.Material) (MaterialDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.materials[id]
	if !ok {
		return MaterialDefinition{}, false
	}
	return *def, true
}

// IDs lists registered materials in ascending order.
func (r *Registry) IDs() []voxel.Material {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]voxel.Material, 0, len(r.materials))
	for id := range r.materials {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) ByName(name string) (voxel.Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.names[name]
	return id, ok
}

// Textures lists texture file names in layer order.
func (r *Registry) Textures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.textureNames...)
}

// TextureLayer returns the texture layer for a material face. Unknown
// materials map to layer 0.
func (r *Registry) TextureLayer(id voxel.Material, face voxel.Face) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.materials[id]
	if !ok {
		return 0
	}

	var texName string
	switch face {
	case voxel.FaceTop:
		texName = def.TextureTop
	case voxel.FaceBottom:
		texName = def.TextureBot
	default:
		texName = def.TextureSide
	}
	return r.textureMap[texName]
}

// Mapper returns a texture mapper yielding [top, side, bottom] layers.
func (r *Registry) Mapper() meshing.TextureMapper {
	return func(m voxel.Material) [3]uint32 {
		return [3]uint32{
			uint32(r.TextureLayer(m, voxel.FaceTop)),
			uint32(r.TextureLayer(m, voxel.FaceLeft)),
			uint32(r.TextureLayer(m, voxel.FaceBottom)),
		}
	}
}

// Default returns a registry holding the terrain materials.
func Default() *Registry {
	r := New()
	for _, def := range []MaterialDefinition{
		{ID: Stone, Name: "stone"},
		{ID: Dirt, Name: "dirt"},
		{
			ID:          Grass,
			Name:        "grass",
			TextureTop:  "grass_top.png",
			TextureSide: "grass_side.png",
			TextureBot:  "dirt.png",
			TintColor:   0x7DFF5C,
		},
		{ID: Sand, Name: "sand"},
		{ID: Gravel, Name: "gravel"},
		{
			ID:          Snow,
			Name:        "snow",
			TextureTop:  "snow.png",
			TextureSide: "grass_side_snowed.png",
			TextureBot:  "dirt.png",
		},
		{ID: Bedrock, Name: "bedrock"},
		{ID: Clay, Name: "clay"},
	} {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}
