package meshing

import (
	"math"

	"voxelworld/internal/chunk"
	"voxelworld/internal/voxel"
)

// Resample maps a padded array from dataShape onto meshShape by nearest
// neighbour. The padding layers always map onto the source padding.
func Resample(voxels []voxel.Voxel, dataShape, meshShape chunk.Shape) []voxel.Voxel {
	if dataShape == meshShape {
		return voxels
	}
	mx := axisMap(dataShape.X, meshShape.X)
	my := axisMap(dataShape.Y, meshShape.Y)
	mz := axisMap(dataShape.Z, meshShape.Z)

	out := make([]voxel.Voxel, meshShape.Size())
	for z := range meshShape.Z {
		for y := range meshShape.Y {
			for x := range meshShape.X {
				out[meshShape.Linearize(x, y, z)] = voxels[dataShape.Linearize(mx[x], my[y], mz[z])]
			}
		}
	}
	return out
}

// axisMap returns, for every mesh index on one axis, the data index it
// samples.
func axisMap(dataDim, meshDim int) []int {
	m := make([]int, meshDim)
	dataInner, meshInner := dataDim-2, meshDim-2
	for i := range m {
		switch {
		case i == 0:
			m[i] = 0
		case i == meshDim-1:
			m[i] = dataDim - 1
		case meshInner <= 1:
			m[i] = 1
		default:
			f := float64((i-1)*(dataInner-1)) / float64(meshInner-1)
			m[i] = min(max(1+int(math.Floor(f+0.5)), 1), dataDim-2)
		}
	}
	return m
}
