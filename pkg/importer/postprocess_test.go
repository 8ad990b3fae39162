package importer

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

func TestTriangulate(t *testing.T) {
	m := &scene.Mesh{Faces: [][]uint32{
		{0, 1, 2, 3, 4},
		{0, 1},
		{1, 2, 3},
	}}
	if dropped := triangulate(m); dropped != 1 {
		t.Errorf("expected 1 dropped face, got %d", dropped)
	}
	want := [][]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {1, 2, 3}}
	if len(m.Faces) != len(want) {
		t.Fatalf("got %v, want %v", m.Faces, want)
	}
	for i := range want {
		for j := range want[i] {
			if m.Faces[i][j] != want[i][j] {
				t.Errorf("face %d: got %v, want %v", i, m.Faces[i], want[i])
				break
			}
		}
	}
}

func TestGenerateNormals_AreaWeighted(t *testing.T) {
	// A large face in XY and a small one in XZ share vertex 0.
	m := &scene.Mesh{
		Positions: [][3]float32{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {0, 0, -1}},
		Faces:     [][]uint32{{0, 1, 2}, {0, 3, 1}},
	}
	generateNormals(m)

	n := m.Normals[0]
	if n[2] <= n[1] {
		t.Errorf("larger face must dominate the shared normal: %v", n)
	}
	length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
	if math.Abs(length-1) > 1e-5 {
		t.Errorf("normal not unit length: %v", n)
	}
	if m.Normals[2] != [3]float32{0, 0, 1} {
		t.Errorf("vertex on one face only: %v", m.Normals[2])
	}
}

func TestPostProcess(t *testing.T) {
	s := &scene.Scene{Meshes: []*scene.Mesh{{
		Name:      "bad uvs",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		TexCoords: [][2]float32{{0, 0}},
		Faces:     [][]uint32{{0, 1, 2}},
	}}}
	if err := postProcess(s, DefaultFlags, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if s.Meshes[0].TexCoords != nil {
		t.Error("mismatched uvs must be dropped")
	}
	if len(s.Meshes[0].Normals) != 3 {
		t.Error("normals not generated")
	}

	s.Meshes[0].Faces = [][]uint32{{0, 1, 7}}
	if err := postProcess(s, DefaultFlags, zap.NewNop()); err == nil {
		t.Error("expected error for out of range index")
	}
}
