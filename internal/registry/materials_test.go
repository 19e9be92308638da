package registry

import (
	"testing"

	"voxelworld/internal/voxel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryFaces(t *testing.T) {
	r := Default()

	top := r.TextureLayer(Grass, voxel.FaceTop)
	side := r.TextureLayer(Grass, voxel.FaceRight)
	bot := r.TextureLayer(Grass, voxel.FaceBottom)
	assert.NotEqual(t, top, side)
	assert.Equal(t, r.TextureLayer(Dirt, voxel.FaceTop), bot, "grass bottom shares the dirt texture")

	stone := r.TextureLayer(Stone, voxel.FaceTop)
	assert.Equal(t, stone, r.TextureLayer(Stone, voxel.FaceBack))
	assert.Equal(t, 0, r.TextureLayer(200, voxel.FaceTop), "unknown material uses the fallback layer")
}

func TestMapperOrder(t *testing.T) {
	r := Default()
	got := r.Mapper()(Grass)
	assert.Equal(t, [3]uint32{
		uint32(r.TextureLayer(Grass, voxel.FaceTop)),
		uint32(r.TextureLayer(Grass, voxel.FaceForward)),
		uint32(r.TextureLayer(Grass, voxel.FaceBottom)),
	}, got)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MaterialDefinition{ID: 1, Name: "a"}))
	assert.ErrorIs(t, r.Register(MaterialDefinition{ID: 1, Name: "b"}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(MaterialDefinition{ID: 2, Name: "a"}), ErrDuplicate)

	id, ok := r.ByName("a")
	require.True(t, ok)
	assert.Equal(t, voxel.Material(1), id)
}

func TestTexturesAreDeduplicated(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MaterialDefinition{ID: 1, Name: "a", TextureSide: "shared.png"}))
	require.NoError(t, r.Register(MaterialDefinition{ID: 2, Name: "b", TextureSide: "shared.png"}))
	assert.Equal(t, []string{"missing.png", "shared.png"}, r.Textures())

	def, ok := r.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "shared.png", def.TextureTop)
}

func TestIDsSorted(t *testing.T) {
	ids := Default().IDs()
	require.Len(t, ids, 8)
	assert.Equal(t, Stone, ids[0])
	assert.Equal(t, Clay, ids[len(ids)-1])
}
