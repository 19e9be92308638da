// Package blockmodel reads block model and blockstate JSON files and resolves
// the textures each face of a block uses.
package blockmodel

import "encoding/json"

// Model is a block model file. Only the parts that select textures are
// decoded.
type Model struct {
	Parent           string            `json:"parent"`
	AmbientOcclusion *bool             `json:"ambientocclusion"`
	Textures         map[string]string `json:"textures"`
	Elements         []Element         `json:"elements"`
}

type Element struct {
	From  [3]float32      `json:"from"`
	To    [3]float32      `json:"to"`
	Faces map[string]Face `json:"faces"`
}

type Face struct {
	Texture   string `json:"texture"`
	CullFace  string `json:"cullface"`
	TintIndex *int   `json:"tintindex"`
}

// Tinted reports whether the face takes the material tint color.
func (f Face) Tinted() bool { return f.TintIndex != nil }

// BlockState maps variants of a block to their models.
type BlockState struct {
	Variants map[string]Variants `json:"variants"`
}

// Variants holds either a single variant object or an array of them.
type Variants []Variant

func (v *Variants) UnmarshalJSON(data []byte) error {
	var list []Variant
	if err := json.Unmarshal(data, &list); err == nil {
		*v = list
		return nil
	}
	var single Variant
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*v = Variants{single}
	return nil
}

type Variant struct {
	Model string `json:"model"`
}

// DefaultModel is the model of the "" variant, or of the alphabetically
// first variant when the block has no default.
func (s *BlockState) DefaultModel() (string, bool) {
	if v, ok := s.Variants[""]; ok && len(v) > 0 {
		return v[0].Model, true
	}
	best := ""
	found := false
	for key, v := range s.Variants {
		if len(v) == 0 {
			continue
		}
		if !found || key < best {
			best, found = key, true
		}
	}
	if !found {
		return "", false
	}
	return s.Variants[best][0].Model, true
}
