package voxel

import "fmt"

// Material indexes a voxel's material. The texture mapper turns it into
// array-texture slots.
type Material uint8

// Kind is the tag of a Voxel.
type Kind uint8

const (
	// KindUnset marks a voxel that was never generated.
	KindUnset Kind = iota
	// KindAir is a generated, empty voxel.
	KindAir
	// KindSolid is a generated, opaque voxel carrying a material.
	KindSolid
)

// Voxel is the atomic unit of the grid. The zero value is Unset.
type Voxel struct {
	kind     Kind
	material Material
}

var (
	Unset = Voxel{kind: KindUnset}
	Air   = Voxel{kind: KindAir}
)

// Solid returns an opaque voxel of material m.
func Solid(m Material) Voxel {
	return Voxel{kind: KindSolid, material: m}
}

func (v Voxel) Kind() Kind { return v.kind }

func (v Voxel) IsUnset() bool { return v.kind == KindUnset }

func (v Voxel) IsAir() bool { return v.kind == KindAir }

func (v Voxel) IsSolid() bool { return v.kind == KindSolid }

// IsOpaque reports whether the voxel hides faces of its neighbours.
// Unset and Air both count as empty.
func (v Voxel) IsOpaque() bool { return v.kind == KindSolid }

// Material returns the material index; ok is false unless the voxel is solid.
func (v Voxel) Material() (Material, bool) {
	if v.kind != KindSolid {
		return 0, false
	}
	return v.material, true
}

func (v Voxel) String() string {
	switch v.kind {
	case KindAir:
		return "Air"
	case KindSolid:
		return fmt.Sprintf("Solid(%d)", v.material)
	default:
		return "Unset"
	}
}
