package bundle

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/bakemodel/pkg/bake"
	"github.com/Faultbox/bakemodel/pkg/importer"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

const quadOBJ = `o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
o tri
v 5 5 5
v 6 5 5
v 5 6 5
f 5 6 7
`

// bakeOBJ imports an OBJ fixture, bakes it and returns the bundle dir.
func bakeOBJ(t *testing.T, obj string) (string, *scene.Scene) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "model.obj")
	if err := os.WriteFile(src, []byte(obj), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := importer.ReadFile(src, importer.Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	res, err := bake.Bake(s, bake.Options{OutputRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("bake: %v", err)
	}
	return res.Dir, s
}

func TestRoundTrip(t *testing.T) {
	dir, s := bakeOBJ(t, quadOBJ)

	b, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	if b.Stem != "model" || b.MeshCount() != 2 {
		t.Fatalf("stem %q, %d meshes", b.Stem, b.MeshCount())
	}
	if err := b.Verify(); err != nil {
		t.Errorf("verify: %v", err)
	}

	for i, m := range s.Meshes {
		want, wantIdx := bake.Extract(m)
		got, err := b.Vertices(i)
		if err != nil {
			t.Fatalf("mesh %d vertices: %v", i, err)
		}
		if len(got) != len(want) {
			t.Fatalf("mesh %d: %d vertices, want %d", i, len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("mesh %d vertex %d: got %v, want %v", i, j, got[j], want[j])
			}
		}

		idx, err := b.Indices(i)
		if err != nil {
			t.Fatalf("mesh %d indices: %v", i, err)
		}
		if len(idx) != len(wantIdx) {
			t.Fatalf("mesh %d: %d indices, want %d", i, len(idx), len(wantIdx))
		}
		for j := range wantIdx {
			if idx[j] != wantIdx[j] {
				t.Errorf("mesh %d index %d: got %d, want %d", i, j, idx[j], wantIdx[j])
			}
		}
	}

	// The quad carries uvs, the triangle falls back to (0,0).
	tri, _ := b.Vertices(1)
	for _, v := range tri {
		if v.TexCoord != [2]float32{0, 0} {
			t.Errorf("triangle uv %v", v.TexCoord)
		}
	}
}

func TestOpen_ManifestPath(t *testing.T) {
	dir, _ := bakeOBJ(t, quadOBJ)
	b, err := Open(filepath.Join(dir, "model.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if b.Dir != dir {
		t.Errorf("dir %s, want %s", b.Dir, dir)
	}
}

func TestOpen_NoManifest(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, ErrNoManifest) {
		t.Errorf("expected ErrNoManifest, got %v", err)
	}
}

// rewriteManifest edits the manifest of the bundle in dir.
func rewriteManifest(t *testing.T, dir string, edit func(m *bake.Manifest)) {
	t.Helper()
	path := filepath.Join(dir, "model.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m bake.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	edit(&m)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := m.Encode(f); err != nil {
		t.Fatal(err)
	}
}

func TestVerify_Detects(t *testing.T) {
	tests := []struct {
		name string
		edit func(dir string, m *bake.Manifest)
		want error
	}{
		{"gap between meshes", func(_ string, m *bake.Manifest) {
			m.MeshAttributes[1].VertexOffset += 4
			m.MeshAttributes[1].IndexOffset += 4
		}, ErrOffsetMismatch},
		{"index overflow", func(_ string, m *bake.Manifest) {
			m.MeshAttributes[1].VertexCount = 1
			m.MeshAttributes[1].IndexOffset = m.MeshAttributes[1].VertexOffset + 32
		}, ErrIndexRange},
		{"missing texture", func(dir string, m *bake.Manifest) {
			os.Remove(filepath.Join(dir, m.MeshAttributes[0].AOTexture))
		}, ErrMissingTexture},
		{"truncated blob", func(dir string, m *bake.Manifest) {
			os.Truncate(filepath.Join(dir, "model.bin"), 10)
		}, ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, _ := bakeOBJ(t, quadOBJ)
			rewriteManifest(t, dir, func(m *bake.Manifest) { tt.edit(dir, m) })

			b, err := Open(dir)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer b.Close()
			if err := b.Verify(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMeshRange(t *testing.T) {
	dir, _ := bakeOBJ(t, quadOBJ)
	b, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if _, err := b.Vertices(5); !errors.Is(err, ErrMeshRange) {
		t.Errorf("expected ErrMeshRange, got %v", err)
	}
}
