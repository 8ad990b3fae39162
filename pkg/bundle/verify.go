package bundle

import (
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/Faultbox/bakemodel/pkg/bake"
)

// Verify checks the bundle against the packing rules: buffers are laid out
// back to back from offset zero in manifest order, the blob ends exactly
// where the last buffer does, every index names a vertex of its own mesh
// and every texture file exists. All problems found are returned together.
func (b *Bundle) Verify() error {
	var errs error
	if b.Manifest.MeshCount != b.MeshCount() {
		errs = multierr.Append(errs, fmt.Errorf("meshCount %d but %d entries: %w",
			b.Manifest.MeshCount, b.MeshCount(), ErrOffsetMismatch))
	}

	var offset int64
	for i := range b.Manifest.MeshAttributes {
		a := &b.Manifest.MeshAttributes[i]
		if a.VertexOffset != offset {
			errs = multierr.Append(errs, fmt.Errorf("mesh %d: vertexOffset %d, expected %d: %w",
				i, a.VertexOffset, offset, ErrOffsetMismatch))
		}
		offset = a.VertexOffset + a.VertexBytes()
		if a.IndexOffset != offset {
			errs = multierr.Append(errs, fmt.Errorf("mesh %d: indexOffset %d, expected %d: %w",
				i, a.IndexOffset, offset, ErrOffsetMismatch))
		}
		offset = a.IndexOffset + a.IndexBytes()

		if err := b.verifyIndices(i, a); err != nil {
			errs = multierr.Append(errs, err)
		}
		for c := bake.Channel(0); c < bake.ChannelCount; c++ {
			errs = multierr.Append(errs, b.verifyTexture(i, c))
		}
	}

	if offset != b.size {
		errs = multierr.Append(errs, fmt.Errorf("blob is %d bytes, buffers end at %d: %w",
			b.size, offset, ErrOutOfBounds))
	}
	return errs
}

func (b *Bundle) verifyIndices(i int, a *bake.MeshAttributes) error {
	indices, err := b.Indices(i)
	if err != nil {
		return fmt.Errorf("mesh %d: %w", i, err)
	}
	if _, err := b.VertexBytes(i); err != nil {
		return fmt.Errorf("mesh %d: %w", i, err)
	}
	for j, idx := range indices {
		if int64(idx) >= int64(a.VertexCount) {
			return fmt.Errorf("mesh %d: index %d is %d, only %d vertices: %w",
				i, j, idx, a.VertexCount, ErrIndexRange)
		}
	}
	return nil
}

func (b *Bundle) verifyTexture(i int, c bake.Channel) error {
	a := &b.Manifest.MeshAttributes[i]
	name := a.Texture(c)
	if name == "" {
		return fmt.Errorf("mesh %d: no %s texture: %w", i, c.Name(), ErrMissingTexture)
	}
	path, _ := b.TexturePath(i, c)
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return fmt.Errorf("mesh %d: %s texture %s: %w", i, c.Name(), name, ErrMissingTexture)
	}
	return nil
}
