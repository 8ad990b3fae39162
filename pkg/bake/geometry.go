package bake

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

// Blob layout sizes.
const (
	FloatsPerVertex = 8
	VertexStride    = FloatsPerVertex * 4 // bytes
	IndexSize       = 4                   // bytes
)

// Vertex is the fixed-stride interleaved vertex written to the blob.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh is a baked mesh: geometry plus the four resolved channels.
// Indices reference this mesh's own vertex list only.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Channels Channels
}

// Extract flattens a source mesh into a vertex list (one entry per source
// vertex) and an index list (face order). Faces are expected to be
// triangulated already; no welding or winding correction is applied.
func Extract(m *scene.Mesh) ([]Vertex, []uint32) {
	vertices := make([]Vertex, len(m.Positions))
	for i, p := range m.Positions {
		v := Vertex{Position: p}
		if i < len(m.Normals) {
			v.Normal = m.Normals[i]
		}
		if i < len(m.TexCoords) {
			v.TexCoord = m.TexCoords[i]
		}
		vertices[i] = v
	}

	count := 0
	for _, f := range m.Faces {
		count += len(f)
	}
	indices := make([]uint32, 0, count)
	for _, f := range m.Faces {
		indices = append(indices, f...)
	}

	return vertices, indices
}

// AppendVertices appends the little-endian encoding of vs to buf.
func AppendVertices(buf []byte, vs []Vertex) []byte {
	var tmp [VertexStride]byte
	for _, v := range vs {
		floats := [FloatsPerVertex]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		}
		for i, f := range floats {
			binary.LittleEndian.PutUint32(tmp[i*4:], math.Float32bits(f))
		}
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// AppendIndices appends the little-endian encoding of idx to buf.
func AppendIndices(buf []byte, idx []uint32) []byte {
	for _, i := range idx {
		buf = binary.LittleEndian.AppendUint32(buf, i)
	}
	return buf
}

// DecodeVertices parses a packed vertex buffer. len(data) must be a
// multiple of VertexStride.
func DecodeVertices(data []byte) []Vertex {
	vs := make([]Vertex, len(data)/VertexStride)
	for i := range vs {
		var f [FloatsPerVertex]float32
		for j := range f {
			f[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*VertexStride+j*4:]))
		}
		vs[i] = Vertex{
			Position: [3]float32{f[0], f[1], f[2]},
			Normal:   [3]float32{f[3], f[4], f[5]},
			TexCoord: [2]float32{f[6], f[7]},
		}
	}
	return vs
}

// DecodeIndices parses a packed index buffer.
func DecodeIndices(data []byte) []uint32 {
	idx := make([]uint32, len(data)/IndexSize)
	for i := range idx {
		idx[i] = binary.LittleEndian.Uint32(data[i*IndexSize:])
	}
	return idx
}
