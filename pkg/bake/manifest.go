package bake

import (
	"encoding/json"
	"io"
)

// Manifest describes how to slice the blob and which texture files belong
// to which mesh. It is only meaningful next to the blob written in the
// same run.
type Manifest struct {
	MeshCount      int              `json:"meshCount"`
	MeshAttributes []MeshAttributes `json:"meshAttributes"`
}

// MeshAttributes is the manifest entry of one mesh. Offsets are byte
// positions into the blob.
type MeshAttributes struct {
	VertexCount              int    `json:"vertexCount"`
	VertexOffset             int64  `json:"vertexOffset"`
	IndexCount               int    `json:"indexCount"`
	IndexOffset              int64  `json:"indexOffset"`
	BaseColorTexture         string `json:"baseColorTexture"`
	MetallicRoughnessTexture string `json:"metallicRoughnessTexture"`
	NormalTexture            string `json:"normalTexture"`
	AOTexture                string `json:"aoTexture"`
}

// Texture returns the texture file name recorded for channel c.
func (a *MeshAttributes) Texture(c Channel) string {
	switch c {
	case BaseColor:
		return a.BaseColorTexture
	case MetallicRoughness:
		return a.MetallicRoughnessTexture
	case Normal:
		return a.NormalTexture
	default:
		return a.AOTexture
	}
}

func (a *MeshAttributes) setTexture(c Channel, name string) {
	switch c {
	case BaseColor:
		a.BaseColorTexture = name
	case MetallicRoughness:
		a.MetallicRoughnessTexture = name
	case Normal:
		a.NormalTexture = name
	default:
		a.AOTexture = name
	}
}

// VertexBytes returns the size of the mesh's vertex buffer in the blob.
func (a *MeshAttributes) VertexBytes() int64 {
	return int64(a.VertexCount) * VertexStride
}

// IndexBytes returns the size of the mesh's index buffer in the blob.
func (a *MeshAttributes) IndexBytes() int64 {
	return int64(a.IndexCount) * IndexSize
}

// Encode writes the manifest as indented JSON.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// DecodeManifest reads a manifest written by Encode.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if m.MeshAttributes == nil {
		m.MeshAttributes = []MeshAttributes{}
	}
	return &m, nil
}
