package registry

import (
	"errors"
	"fmt"
	"io/fs"

	"voxelworld/internal/voxel"
	"voxelworld/pkg/blockmodel"
)

// RegisterBlock registers a material whose textures come from a block model
// of the asset pack.
func (r *Registry) RegisterBlock(l *blockmodel.Loader, id voxel.Material, block string, tint uint32) error {
	m, err := l.LoadBlock(block)
	if err != nil {
		return fmt.Errorf("registry: load block %s: %w", block, err)
	}
	top, side, bottom, ok := m.FaceTextures()
	if !ok {
		return fmt.Errorf("registry: block %s has unresolved textures", block)
	}
	return r.Register(MaterialDefinition{
		ID:          id,
		Name:        block,
		TextureTop:  blockmodel.TextureFile(top),
		TextureSide: blockmodel.TextureFile(side),
		TextureBot:  blockmodel.TextureFile(bottom),
		TintColor:   tint,
	})
}

// FromAssets builds a registry for the default materials with textures taken
// from the block models in fsys. Materials without a model keep the default
// textures.
func FromAssets(fsys fs.FS) (*Registry, error) {
	defaults := Default()
	l := blockmodel.NewLoader(fsys)
	r := New()
	for _, id := range defaults.IDs() {
		def, _ := defaults.Lookup(id)
		err := r.RegisterBlock(l, id, def.Name, def.TintColor)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
