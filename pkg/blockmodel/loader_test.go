package blockmodel

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"models/block/cube.json": file(`{
			"elements": [{"from": [0,0,0], "to": [16,16,16], "faces": {
				"up":    {"texture": "#up"},
				"down":  {"texture": "#down"},
				"north": {"texture": "#north", "tintindex": 0}
			}}]
		}`),
		"models/block/cube_all.json": file(`{
			"parent": "block/cube",
			"textures": {"up": "#all", "down": "#all", "north": "#all"}
		}`),
		"models/block/cube_column.json": file(`{
			"parent": "minecraft:block/cube",
			"textures": {"up": "#end", "down": "#end", "north": "#side"}
		}`),
		"models/block/stone.json": file(`{
			"parent": "block/cube_all",
			"textures": {"all": "minecraft:block/stone"}
		}`),
		"models/block/dirt.json": file(`{
			"parent": "block/cube_all",
			"textures": {"all": "block/dirt"}
		}`),
		"models/block/log.json": file(`{
			"parent": "block/cube_column",
			"textures": {"end": "block/log_top", "side": "block/log"}
		}`),
		"models/block/flat.json": file(`{
			"textures": {"top": "block/grass_top", "side": "block/grass_side", "bottom": "block/dirt"}
		}`),
		"models/block/loop_a.json": file(`{"parent": "block/loop_b"}`),
		"models/block/loop_b.json": file(`{"parent": "block/loop_a"}`),
		"blockstates/grass.json": file(`{"variants": {"snowy=false": {"model": "block/flat"}, "snowy=true": [{"model": "block/stone"}]}}`),
		"blockstates/log.json": file(`{"variants": {"": [{"model": "minecraft:block/log"}]}}`),
	}
}

func TestLoadChildModel(t *testing.T) {
	l := NewLoader(testAssets())
	m, err := l.LoadModel("block/stone")
	require.NoError(t, err)

	require.Len(t, m.Elements, 1, "elements come from the grandparent")
	assert.Equal(t, "minecraft:block/stone", m.Elements[0].Faces["up"].Texture)
	assert.True(t, m.Elements[0].Faces["north"].Tinted())
	assert.False(t, m.Elements[0].Faces["up"].Tinted())
}

func TestSiblingsDoNotShareResolvedTextures(t *testing.T) {
	l := NewLoader(testAssets())
	stone, err := l.LoadModel("stone")
	require.NoError(t, err)
	dirt, err := l.LoadModel("dirt")
	require.NoError(t, err)

	assert.Equal(t, "minecraft:block/stone", stone.Elements[0].Faces["up"].Texture)
	assert.Equal(t, "block/dirt", dirt.Elements[0].Faces["up"].Texture)

	parent, err := l.LoadModel("cube_all")
	require.NoError(t, err)
	assert.Equal(t, "#all", parent.Elements[0].Faces["up"].Texture)
}

func TestModelsAreCached(t *testing.T) {
	l := NewLoader(testAssets())
	a, err := l.LoadModel("stone")
	require.NoError(t, err)
	b, err := l.LoadModel("minecraft:block/stone")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestParentCycle(t *testing.T) {
	l := NewLoader(testAssets())
	_, err := l.LoadModel("loop_a")
	assert.ErrorIs(t, err, ErrParentCycle)
}

func TestMissingModel(t *testing.T) {
	l := NewLoader(testAssets())
	_, err := l.LoadModel("nope")
	assert.Error(t, err)
}

func TestFaceTextures(t *testing.T) {
	l := NewLoader(testAssets())
	tests := []struct {
		model             string
		top, side, bottom string
	}{
		{"stone", "minecraft:block/stone", "minecraft:block/stone", "minecraft:block/stone"},
		{"log", "block/log_top", "block/log", "block/log_top"},
		{"flat", "block/grass_top", "block/grass_side", "block/dirt"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			m, err := l.LoadModel(tt.model)
			require.NoError(t, err)
			top, side, bottom, ok := m.FaceTextures()
			require.True(t, ok)
			assert.Equal(t, tt.top, top)
			assert.Equal(t, tt.side, side)
			assert.Equal(t, tt.bottom, bottom)
		})
	}

	unresolved, err := l.LoadModel("cube_all")
	require.NoError(t, err)
	_, _, _, ok := unresolved.FaceTextures()
	assert.False(t, ok)
}

func TestLoadBlock(t *testing.T) {
	l := NewLoader(testAssets())

	grass, err := l.LoadBlock("grass")
	require.NoError(t, err)
	_, side, _, _ := grass.FaceTextures()
	assert.Equal(t, "block/grass_side", side, "snowy=false sorts first")

	log, err := l.LoadBlock("minecraft:log")
	require.NoError(t, err)
	top, _, _, _ := log.FaceTextures()
	assert.Equal(t, "block/log_top", top)

	dirt, err := l.LoadBlock("dirt")
	require.NoError(t, err, "falls back to the model without a blockstate")
	_, side, _, _ = dirt.FaceTextures()
	assert.Equal(t, "block/dirt", side)
}

func TestTextureFile(t *testing.T) {
	assert.Equal(t, "stone.png", TextureFile("minecraft:block/stone"))
	assert.Equal(t, "log_top.png", TextureFile("block/log_top"))
	assert.Equal(t, "dirt.png", TextureFile("dirt"))
}
