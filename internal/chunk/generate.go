package chunk

import (
	"voxelworld/internal/entity"
	"voxelworld/internal/voxel"
)

// LookupFunc resolves the voxel at a world position. previous carries the
// value the last generation stored there when hasPrevious is set. It is
// called from worker goroutines and must be safe for that.
type LookupFunc func(pos voxel.Pos, previous voxel.Voxel, hasPrevious bool) voxel.Voxel

// RegenerateStrategy controls how existing chunk data feeds a regeneration.
type RegenerateStrategy uint8

const (
	// Reuse keeps previously generated voxels and never shrinks the data shape.
	Reuse RegenerateStrategy = iota
	// Repopulate consults the lookup function for every cell.
	Repopulate
)

func (s RegenerateStrategy) String() string {
	if s == Repopulate {
		return "Repopulate"
	}
	return "Reuse"
}

// OverlayReader copies explicit voxel overrides inside an inclusive box.
type OverlayReader interface {
	Region(min, max voxel.Pos) map[voxel.Pos]voxel.Voxel
}

// Task generates the data of one chunk off the main goroutine.
type Task struct {
	Position voxel.Pos
	Data     Data
	Overlay  OverlayReader
}

// NewTask prepares the generation of the chunk at pos for entity id.
func NewTask(id entity.ID, pos voxel.Pos, lod uint8, dataShape, meshShape Shape, overlay OverlayReader) *Task {
	d := NewData()
	d.position = pos
	d.entity = id
	d.lod = lod
	d.dataShape = dataShape
	d.meshShape = meshShape
	return &Task{Position: pos, Data: d, Overlay: overlay}
}

// Generate fills t.Data. Overrides from the overlay win, then (with Reuse)
// any non-Unset voxel of previous, then lookup.
func (t *Task) Generate(lookup LookupFunc, previous *Data, strategy RegenerateStrategy) {
	reuse := strategy == Reuse && previous != nil
	shape := t.Data.dataShape
	if reuse && previous.hasGenerated && shape.Fits(previous.dataShape) {
		shape = previous.dataShape
	}
	t.Data.dataShape = shape
	t.Data.hasGenerated = true

	origin := t.Position.Scale(voxel.ChunkSize)
	var overrides map[voxel.Pos]voxel.Voxel
	if t.Overlay != nil {
		overrides = t.Overlay.Region(
			origin.Sub(voxel.P(voxel.ChunkSize, voxel.ChunkSize, voxel.ChunkSize)),
			origin.Add(voxel.P(2*voxel.ChunkSize, 2*voxel.ChunkSize, 2*voxel.ChunkSize)),
		)
	}

	scale := VoxelScale(shape)
	total := shape.Size()
	voxels := make([]voxel.Voxel, total)
	materials := make(map[voxel.Material]struct{}, 4)
	filled := 0

	for i := range total {
		cx, cy, cz := shape.Delinearize(i)
		pos := voxel.Pos{
			X: int(float32(cx-1)*scale.X()) + origin.X,
			Y: int(float32(cy-1)*scale.Y()) + origin.Y,
			Z: int(float32(cz-1)*scale.Z()) + origin.Z,
		}

		if v, ok := overrides[pos]; ok {
			voxels[i] = v
			if m, solid := v.Material(); solid {
				filled++
				materials[m] = struct{}{}
			}
			continue
		}

		var prev voxel.Voxel
		hasPrev := false
		if previous != nil {
			prev, hasPrev = previous.VoxelAtWorld(pos)
		}
		v := prev
		if !reuse || !hasPrev || prev.IsUnset() {
			v = lookup(pos, prev, hasPrev)
		}
		voxels[i] = v
		if m, solid := v.Material(); solid {
			filled++
			materials[m] = struct{}{}
		}
	}

	t.Data.isEmpty = filled == 0
	t.Data.isFull = filled == total
	switch {
	case t.Data.isFull && len(materials) == 1:
		t.Data.fill = FillUniform
		t.Data.uniform = voxels[0]
		t.Data.voxels = nil
	case filled > 0:
		t.Data.fill = FillMixed
		t.Data.voxels = voxels
	default:
		t.Data.fill = FillEmpty
		t.Data.voxels = nil
	}
	t.Data.hash = contentHash(t.Data.dataShape, t.Data.meshShape, t.Data.voxels)
}
