// Package scene holds an importer-neutral copy of a parsed 3D scene.
//
// Importers fill these structures with plain Go values. Nothing in here
// points back into decoder-owned memory, so a Scene stays valid after the
// source document has been released.
package scene

import (
	"path/filepath"
	"strings"
)

// TextureType identifies a material texture slot.
type TextureType int

const (
	TextureBaseColor         TextureType = iota // Albedo / diffuse map
	TextureMetallicRoughness                    // Packed metallic (B) + roughness (G) map
	TextureNormals                              // Tangent-space normal map
	TextureAmbientOcclusion                     // Occlusion map
)

// String returns a human-readable texture slot name.
func (t TextureType) String() string {
	switch t {
	case TextureBaseColor:
		return "BaseColor"
	case TextureMetallicRoughness:
		return "MetallicRoughness"
	case TextureNormals:
		return "Normals"
	case TextureAmbientOcclusion:
		return "AmbientOcclusion"
	default:
		return "Unknown"
	}
}

// Material holds the queried properties of a source material.
// A nil pointer or a missing map entry means the property is absent.
type Material struct {
	Name      string
	BaseColor *[3]float32
	Metallic  *float32
	Roughness *float32
	Textures  map[TextureType]string // Texture references (file path or embedded "*N")
}

// Texture returns the texture reference bound to slot t.
func (m *Material) Texture(t TextureType) (string, bool) {
	if m == nil || m.Textures == nil {
		return "", false
	}
	ref, ok := m.Textures[t]
	if !ok || ref == "" {
		return "", false
	}
	return ref, true
}

// BaseColorFactor returns the constant base color, if set.
func (m *Material) BaseColorFactor() ([3]float32, bool) {
	if m == nil || m.BaseColor == nil {
		return [3]float32{}, false
	}
	return *m.BaseColor, true
}

// MetallicFactor returns the constant metallic factor, if set.
func (m *Material) MetallicFactor() (float32, bool) {
	if m == nil || m.Metallic == nil {
		return 0, false
	}
	return *m.Metallic, true
}

// RoughnessFactor returns the constant roughness factor, if set.
func (m *Material) RoughnessFactor() (float32, bool) {
	if m == nil || m.Roughness == nil {
		return 0, false
	}
	return *m.Roughness, true
}

// SetTexture binds a texture reference to slot t.
func (m *Material) SetTexture(t TextureType, ref string) {
	if m.Textures == nil {
		m.Textures = make(map[TextureType]string)
	}
	m.Textures[t] = ref
}

// Mesh is a single-material polygon mesh.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32 // Per-vertex normals, same length as Positions
	TexCoords [][2]float32 // First UV set; nil when the mesh has none
	Faces     [][]uint32   // Vertex indices per face
	Material  int          // Index into Scene.Materials, -1 for none
}

// Node is an element of the scene hierarchy.
type Node struct {
	Name     string
	Meshes   []int // Indices into Scene.Meshes
	Children []*Node
}

// EmbeddedTexture is an image stored inside the scene file itself.
type EmbeddedTexture struct {
	Name     string
	MimeType string
	Data     []byte
}

// Ext returns the file extension matching the texture's MIME type.
func (t *EmbeddedTexture) Ext() string {
	switch t.MimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	if ext := filepath.Ext(t.Name); ext != "" {
		return strings.ToLower(ext)
	}
	return ".bin"
}

// Scene is a fully imported scene graph.
type Scene struct {
	Path      string // Source scene file
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material
	Embedded  map[string]*EmbeddedTexture // Keyed by reference ("*0", "*1", ...)
}

// Dir returns the directory containing the scene file.
// External texture references resolve relative to it.
func (s *Scene) Dir() string {
	return filepath.Dir(s.Path)
}

// Stem returns the scene file name without directory and extension.
func (s *Scene) Stem() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MaterialOf returns the material bound to mesh m, or nil.
func (s *Scene) MaterialOf(m *Mesh) *Material {
	if m.Material < 0 || m.Material >= len(s.Materials) {
		return nil
	}
	return s.Materials[m.Material]
}

// EmbeddedTexture returns the embedded image behind reference ref.
func (s *Scene) EmbeddedTexture(ref string) (*EmbeddedTexture, bool) {
	if s == nil || s.Embedded == nil {
		return nil, false
	}
	t, ok := s.Embedded[ref]
	return t, ok
}

// IsEmbeddedRef reports whether ref names an embedded texture.
func IsEmbeddedRef(ref string) bool {
	return strings.HasPrefix(ref, "*")
}
