package blockmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

var ErrParentCycle = errors.New("blockmodel: parent chain too deep")

const maxParentDepth = 16

// Loader reads models from an asset tree laid out as models/<name>.json and
// blockstates/<name>.json. Loaded models are cached; Loader is safe for
// concurrent use.
type Loader struct {
	fsys fs.FS

	mu       sync.Mutex
	merged   map[string]*Model
	resolved map[string]*Model
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:     fsys,
		merged:   make(map[string]*Model),
		resolved: make(map[string]*Model),
	}
}

// LoadModel loads a model and merges its parent chain. Element face
// textures come back resolved. The returned model must not be modified.
func (l *Loader) LoadModel(name string) (*Model, error) {
	name = normalizeName(name)
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.resolved[name]; ok {
		return m, nil
	}
	raw, err := l.loadMerged(name, 0)
	if err != nil {
		return nil, err
	}
	m := *raw
	m.Elements = cloneElements(raw.Elements)
	for i := range m.Elements {
		for side, face := range m.Elements[i].Faces {
			face.Texture = m.ResolveTexture(face.Texture)
			m.Elements[i].Faces[side] = face
		}
	}
	l.resolved[name] = &m
	return &m, nil
}

// loadMerged returns the model with its parent chain merged in and texture
// variables left unresolved, so children can still override them.
func (l *Loader) loadMerged(name string, depth int) (*Model, error) {
	if depth > maxParentDepth {
		return nil, fmt.Errorf("%w: %s", ErrParentCycle, name)
	}
	if m, ok := l.merged[name]; ok {
		return m, nil
	}

	var m Model
	if err := l.readJSON(path.Join("models", name+".json"), &m); err != nil {
		return nil, err
	}
	if m.Textures == nil {
		m.Textures = make(map[string]string)
	}

	if m.Parent != "" && !strings.HasPrefix(m.Parent, "builtin/") {
		parent, err := l.loadMerged(normalizeName(m.Parent), depth+1)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", name, err)
		}
		if m.AmbientOcclusion == nil {
			m.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(m.Elements) == 0 {
			m.Elements = parent.Elements
		}
		for key, val := range parent.Textures {
			if _, ok := m.Textures[key]; !ok {
				m.Textures[key] = val
			}
		}
	}
	l.merged[name] = &m
	return &m, nil
}

// LoadBlockState reads blockstates/<name>.json.
func (l *Loader) LoadBlockState(name string) (*BlockState, error) {
	var s BlockState
	if err := l.readJSON(path.Join("blockstates", trimNamespace(name)+".json"), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadBlock loads the default model of a block, through its blockstate when
// one exists and from models/block/<name>.json otherwise.
func (l *Loader) LoadBlock(name string) (*Model, error) {
	s, err := l.LoadBlockState(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return l.LoadModel(name)
	case err != nil:
		return nil, err
	}
	model, ok := s.DefaultModel()
	if !ok {
		return nil, fmt.Errorf("blockmodel: blockstate %s has no variants", name)
	}
	return l.LoadModel(model)
}

func (l *Loader) readJSON(name string, v any) error {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return fmt.Errorf("blockmodel: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("blockmodel: decode %s: %w", name, err)
	}
	return nil
}

// ResolveTexture follows "#variable" references through m.Textures.
func (m *Model) ResolveTexture(texture string) string {
	for i := 0; i < 10 && strings.HasPrefix(texture, "#"); i++ {
		resolved, ok := m.Textures[strings.TrimPrefix(texture, "#")]
		if !ok {
			break
		}
		texture = resolved
	}
	return texture
}

// FaceTextures picks the texture names for the top, sides and bottom of a
// full block. Element faces win over the conventional texture variables.
func (m *Model) FaceTextures() (top, side, bottom string, ok bool) {
	if len(m.Elements) > 0 {
		faces := m.Elements[0].Faces
		top, side, bottom = faces["up"].Texture, faces["north"].Texture, faces["down"].Texture
	}
	for _, key := range []string{"side", "all", "texture"} {
		if side != "" {
			break
		}
		side = m.ResolveTexture(m.Textures[key])
	}
	for _, key := range []string{"top", "end", "all"} {
		if top != "" {
			break
		}
		top = m.ResolveTexture(m.Textures[key])
	}
	for _, key := range []string{"bottom", "end", "all"} {
		if bottom != "" {
			break
		}
		bottom = m.ResolveTexture(m.Textures[key])
	}
	side = firstNonEmpty(side, top, bottom)
	top = firstNonEmpty(top, side)
	bottom = firstNonEmpty(bottom, side)
	if strings.HasPrefix(side, "#") || strings.HasPrefix(top, "#") || strings.HasPrefix(bottom, "#") {
		return "", "", "", false
	}
	return top, side, bottom, side != ""
}

// TextureFile maps a texture reference like "minecraft:block/stone" to the
// file name "stone.png".
func TextureFile(texture string) string {
	return path.Base(trimNamespace(texture)) + ".png"
}

func normalizeName(name string) string {
	name = trimNamespace(name)
	if !strings.Contains(name, "/") {
		name = "block/" + name
	}
	return name
}

func trimNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneElements(in []Element) []Element {
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Faces = make(map[string]Face, len(e.Faces))
		for k, f := range e.Faces {
			out[i].Faces[k] = f
		}
	}
	return out
}
