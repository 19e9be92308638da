package overlay

import (
	"cmp"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"voxelworld/internal/voxel"

	"github.com/klauspost/compress/zstd"
)

// ErrBadSnapshot is returned when a snapshot stream cannot be decoded.
var ErrBadSnapshot = errors.New("overlay: bad snapshot")

const snapshotVersion = 1

type snapshot struct {
	Version int
	Entries []snapshotEntry
}

type snapshotEntry struct {
	X, Y, Z  int
	Kind     uint8
	Material uint8
}

// Save writes every entry, sorted by position, as a zstd-compressed gob
// stream.
func (o *Overlay) Save(w io.Writer) error {
	entries := o.entries()

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("overlay: create encoder: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(snapshot{Version: snapshotVersion, Entries: entries}); err != nil {
		zw.Close()
		return fmt.Errorf("overlay: encode: %w", err)
	}
	return zw.Close()
}

// Load merges a stream written by Save into the overlay. Loaded entries
// replace existing ones at the same position.
func (o *Overlay) Load(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, snap.Version)
	}

	writes := make([]Write, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		v, err := decodeVoxel(e.Kind, e.Material)
		if err != nil {
			return err
		}
		writes = append(writes, Write{Pos: voxel.P(e.X, e.Y, e.Z), Voxel: v})
	}
	o.SetMany(writes)
	return nil
}

// SaveFile writes the snapshot to path through a temporary file.
func (o *Overlay) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("overlay: create dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("overlay: create %s: %w", tmp, err)
	}
	if err := o.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("overlay: close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// LoadFile merges the snapshot at path. A missing file is not an error.
func (o *Overlay) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("overlay: open %s: %w", path, err)
	}
	defer f.Close()
	return o.Load(f)
}

func (o *Overlay) entries() []snapshotEntry {
	o.mu.RLock()
	entries := make([]snapshotEntry, 0, len(o.voxels))
	for p, v := range o.voxels {
		m, _ := v.Material()
		entries = append(entries, snapshotEntry{X: p.X, Y: p.Y, Z: p.Z, Kind: uint8(v.Kind()), Material: uint8(m)})
	}
	o.mu.RUnlock()

	slices.SortFunc(entries, func(a, b snapshotEntry) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return entries
}

func decodeVoxel(kind, material uint8) (voxel.Voxel, error) {
	switch voxel.Kind(kind) {
	case voxel.KindUnset:
		return voxel.Unset, nil
	case voxel.KindAir:
		return voxel.Air, nil
	case voxel.KindSolid:
		return voxel.Solid(voxel.Material(material)), nil
	}
	return voxel.Unset, fmt.Errorf("%w: unknown voxel kind %d", ErrBadSnapshot, kind)
}
