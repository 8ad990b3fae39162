// Package bundle reads baked asset bundles: the manifest, the packed
// vertex/index blob and the texture files next to them.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/bakemodel/pkg/bake"
)

var (
	ErrNoManifest     = errors.New("no manifest found")
	ErrManyManifests  = errors.New("more than one manifest found")
	ErrMeshRange      = errors.New("mesh index out of range")
	ErrOffsetMismatch = errors.New("buffer offset breaks packing")
	ErrOutOfBounds    = errors.New("buffer exceeds blob")
	ErrIndexRange     = errors.New("index references missing vertex")
	ErrMissingTexture = errors.New("texture file missing")
)

// Bundle is an opened bake output.
type Bundle struct {
	Dir      string
	Stem     string
	Manifest *bake.Manifest

	blob *os.File
	size int64
}

// Open opens the bundle in dir. dir may also name the manifest file
// itself; otherwise it must contain exactly one manifest.
func Open(dir string) (*Bundle, error) {
	stem := ""
	if strings.EqualFold(filepath.Ext(dir), ".json") {
		stem = strings.TrimSuffix(filepath.Base(dir), filepath.Ext(dir))
		dir = filepath.Dir(dir)
	} else {
		var err error
		if stem, err = findStem(dir); err != nil {
			return nil, err
		}
	}
	return OpenStem(dir, stem)
}

// OpenStem opens <dir>/<stem>.json and <dir>/<stem>.bin.
func OpenStem(dir, stem string) (*Bundle, error) {
	mf, err := os.Open(filepath.Join(dir, stem+".json"))
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer mf.Close()

	manifest, err := bake.DecodeManifest(mf)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	blob, err := os.Open(filepath.Join(dir, stem+".bin"))
	if err != nil {
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	fi, err := blob.Stat()
	if err != nil {
		blob.Close()
		return nil, fmt.Errorf("reading blob: %w", err)
	}

	return &Bundle{
		Dir:      dir,
		Stem:     stem,
		Manifest: manifest,
		blob:     blob,
		size:     fi.Size(),
	}, nil
}

func findStem(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	var stems []string
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), ".json")
		if _, err := os.Stat(filepath.Join(dir, stem+".bin")); err == nil {
			stems = append(stems, stem)
		}
	}
	switch len(stems) {
	case 0:
		return "", fmt.Errorf("%s: %w", dir, ErrNoManifest)
	case 1:
		return stems[0], nil
	default:
		return "", fmt.Errorf("%s: %w: %s", dir, ErrManyManifests, strings.Join(stems, ", "))
	}
}

// Close closes the blob.
func (b *Bundle) Close() error {
	if b.blob != nil {
		return b.blob.Close()
	}
	return nil
}

// MeshCount returns the number of meshes in the manifest.
func (b *Bundle) MeshCount() int {
	return len(b.Manifest.MeshAttributes)
}

// BlobSize returns the blob length in bytes.
func (b *Bundle) BlobSize() int64 {
	return b.size
}

// Mesh returns the manifest entry of mesh i.
func (b *Bundle) Mesh(i int) (*bake.MeshAttributes, error) {
	if i < 0 || i >= b.MeshCount() {
		return nil, fmt.Errorf("mesh %d of %d: %w", i, b.MeshCount(), ErrMeshRange)
	}
	return &b.Manifest.MeshAttributes[i], nil
}

func (b *Bundle) readRange(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > b.size {
		return nil, fmt.Errorf("bytes [%d, %d) of %d: %w", off, off+n, b.size, ErrOutOfBounds)
	}
	data := make([]byte, n)
	if _, err := b.blob.ReadAt(data, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// VertexBytes returns the raw vertex buffer of mesh i.
func (b *Bundle) VertexBytes(i int) ([]byte, error) {
	a, err := b.Mesh(i)
	if err != nil {
		return nil, err
	}
	return b.readRange(a.VertexOffset, a.VertexBytes())
}

// IndexBytes returns the raw index buffer of mesh i.
func (b *Bundle) IndexBytes(i int) ([]byte, error) {
	a, err := b.Mesh(i)
	if err != nil {
		return nil, err
	}
	return b.readRange(a.IndexOffset, a.IndexBytes())
}

// Vertices decodes the vertex buffer of mesh i.
func (b *Bundle) Vertices(i int) ([]bake.Vertex, error) {
	data, err := b.VertexBytes(i)
	if err != nil {
		return nil, err
	}
	return bake.DecodeVertices(data), nil
}

// Indices decodes the index buffer of mesh i.
func (b *Bundle) Indices(i int) ([]uint32, error) {
	data, err := b.IndexBytes(i)
	if err != nil {
		return nil, err
	}
	return bake.DecodeIndices(data), nil
}

// TexturePath returns the path of the channel c texture of mesh i.
func (b *Bundle) TexturePath(i int, c bake.Channel) (string, error) {
	a, err := b.Mesh(i)
	if err != nil {
		return "", err
	}
	return filepath.Join(b.Dir, a.Texture(c)), nil
}
