package meshing

// aoValue grades one vertex from the two edge neighbours and the diagonal
// neighbour in front of the face. 0 is fully occluded, 3 is open.
func aoValue(side1, corner, side2 bool) int {
	switch {
	case side1 && side2:
		return 0
	case (side1 && corner) || (corner && side2):
		return 1
	case !side1 && !corner && !side2:
		return 3
	default:
		return 2
	}
}

// faceAO samples the eight voxels around p in the layer in front of face f
// and returns the occlusion of the corners (u-,v-), (u+,v-), (u+,v+), (u-,v+).
func (g grid) faceAO(p [3]int, f face) [4]int {
	layer := p
	layer[f.axis] += f.sign

	at := func(du, dv int) bool {
		q := layer
		q[f.u] += du
		q[f.v] += dv
		return g.opaque(q)
	}
	corner := func(su, sv int) int {
		return aoValue(at(su, 0), at(su, sv), at(0, sv))
	}
	return [4]int{corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)}
}
