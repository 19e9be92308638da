// Package overlay keeps explicitly written voxels. Generation and live queries
// consult it before anything else, and entries outlive chunk despawns.
package overlay

import (
	"sync"

	"voxelworld/internal/voxel"
)

// Overlay is a concurrent sparse map from world position to voxel.
type Overlay struct {
	mu     sync.RWMutex
	voxels map[voxel.Pos]voxel.Voxel
}

func New() *Overlay {
	return &Overlay{voxels: make(map[voxel.Pos]voxel.Voxel)}
}

func (o *Overlay) Get(p voxel.Pos) (voxel.Voxel, bool) {
	o.mu.RLock()
	v, ok := o.voxels[p]
	o.mu.RUnlock()
	return v, ok
}

func (o *Overlay) Set(p voxel.Pos, v voxel.Voxel) {
	o.mu.Lock()
	o.voxels[p] = v
	o.mu.Unlock()
}

// Write is one buffered voxel assignment.
type Write struct {
	Pos   voxel.Pos
	Voxel voxel.Voxel
}

// SetMany applies writes in order under a single lock.
func (o *Overlay) SetMany(writes []Write) {
	if len(writes) == 0 {
		return
	}
	o.mu.Lock()
	for _, w := range writes {
		o.voxels[w.Pos] = w.Voxel
	}
	o.mu.Unlock()
}

func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.voxels)
}

// Snapshot copies every entry.
func (o *Overlay) Snapshot() map[voxel.Pos]voxel.Voxel {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[voxel.Pos]voxel.Voxel, len(o.voxels))
	for p, v := range o.voxels {
		out[p] = v
	}
	return out
}

// Region copies the entries inside the inclusive box [min, max]. The result
// is nil when nothing matches.
func (o *Overlay) Region(min, max voxel.Pos) map[voxel.Pos]voxel.Voxel {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out map[voxel.Pos]voxel.Voxel
	for p, v := range o.voxels {
		if p.X < min.X || p.Y < min.Y || p.Z < min.Z || p.X > max.X || p.Y > max.Y || p.Z > max.Z {
			continue
		}
		if out == nil {
			out = make(map[voxel.Pos]voxel.Voxel)
		}
		out[p] = v
	}
	return out
}
