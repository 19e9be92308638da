package chunk

import (
	"encoding/binary"

	"voxelworld/internal/voxel"

	"github.com/cespare/xxhash/v2"
)

func contentHash(dataShape, meshShape Shape, voxels []voxel.Voxel) uint64 {
	if voxels == nil {
		return 0
	}
	buf := make([]byte, 0, 24+2*len(voxels))
	for _, v := range [...]int{dataShape.X, dataShape.Y, dataShape.Z, meshShape.X, meshShape.Y, meshShape.Z} {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	for _, v := range voxels {
		m, _ := v.Material()
		buf = append(buf, byte(v.Kind()), byte(m))
	}
	return xxhash.Sum64(buf)
}
