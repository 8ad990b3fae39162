package bake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/imageenc"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

// PlaceholderName returns the generated texture name for mesh i, channel c.
func PlaceholderName(i int, c Channel, ext string) string {
	return fmt.Sprintf("Mesh%d%s%s", i, c.Name(), ext)
}

// emitTexture makes the texture for one channel available in the output
// directory and returns the file name recorded in the manifest.
func (w *Writer) emitTexture(st *stage, mesh int, c Channel, tc TextureChannel) (string, error) {
	factor, isFactor := tc.Factor()
	if ref, ok := tc.File(); ok {
		name, err := w.externalTexture(st, mesh, c, ref)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, ErrMissingTexture) || w.opts.StrictTextures {
			return "", err
		}
		w.log.Warn("texture not found, using placeholder",
			zap.Int("mesh", mesh),
			zap.String("channel", c.Name()),
			zap.String("ref", ref),
			zap.Error(err))
		factor, isFactor = DefaultFactor(c), true
	}
	if !isFactor {
		return "", &Error{Kind: ErrUnresolvedChannel, Op: fmt.Sprintf("emit mesh %d %s", mesh, c.Name())}
	}
	return w.placeholder(st, mesh, c, factor)
}

// placeholder synthesizes and stages a flat-color image for factor.
func (w *Writer) placeholder(st *stage, mesh int, c Channel, factor Factor) (string, error) {
	origin := "placeholder:" + PlaceholderName(mesh, c, "")
	name := w.claim(st, PlaceholderName(mesh, c, w.opts.Encoder.Ext()), origin)
	pix := Synthesize(c, factor, w.opts.PlaceholderSize)
	err := st.writeFile(name, origin, func(f *os.File) error {
		return w.opts.Encoder.Encode(f, pix.Data, pix.Width, pix.Height, pix.Channels)
	})
	if err != nil {
		return "", err
	}
	w.log.Debug("synthesized placeholder",
		zap.String("file", name),
		zap.Stringer("factor", factor))
	return name, nil
}

func (w *Writer) externalTexture(st *stage, mesh int, c Channel, ref string) (string, error) {
	if scene.IsEmbeddedRef(ref) {
		return w.embeddedTexture(st, mesh, c, ref)
	}
	return w.copyTexture(st, ref)
}

// embeddedTexture writes an image stored inside the scene file.
func (w *Writer) embeddedTexture(st *stage, mesh int, c Channel, ref string) (string, error) {
	tex, ok := w.opts.Scene.EmbeddedTexture(ref)
	if !ok {
		return "", &Error{Kind: ErrMissingTexture, Op: "resolve embedded texture", Path: ref}
	}
	origin := fmt.Sprintf("embedded:%s:%d:%s", ref, mesh, c.Name())
	name := w.claim(st, PlaceholderName(mesh, c, tex.Ext()), origin)
	err := st.writeFile(name, origin, func(f *os.File) error {
		_, err := f.Write(tex.Data)
		return err
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// copyTexture copies an external texture into the output directory. The
// copy is skipped when a file with the same base name already exists there
// or was already staged by this run.
func (w *Writer) copyTexture(st *stage, ref string) (string, error) {
	src := w.sourcePath(ref)
	name, done := st.claim(filepath.Base(src), src)
	if done {
		return name, nil
	}
	if name != filepath.Base(src) {
		w.log.Warn("texture name already taken, renaming copy",
			zap.String("file", src), zap.String("name", name))
	}
	dst := filepath.Join(w.opts.OutputDir, name)
	if _, err := os.Stat(dst); err == nil {
		w.log.Debug("texture already present, skipping copy", zap.String("file", name))
		st.reserve(name, src)
		return name, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", &Error{Kind: ErrMissingTexture, Op: "open texture", Path: src, Err: err}
	}
	defer in.Close()
	if fi, err := in.Stat(); err != nil || fi.IsDir() {
		return "", &Error{Kind: ErrMissingTexture, Op: "open texture", Path: src, Err: err}
	}

	if info, err := imageenc.Probe(src); err != nil {
		w.log.Warn("texture is not a readable image, copying anyway",
			zap.String("file", src), zap.Error(err))
	} else {
		w.log.Debug("copying texture", zap.String("file", src), zap.Stringer("image", info))
	}

	err = st.writeFile(name, src, func(f *os.File) error {
		_, err := io.Copy(f, in)
		return err
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// claim picks the output name for generated content, warning when the
// preferred one is already taken by another texture.
func (w *Writer) claim(st *stage, name, origin string) string {
	claimed, _ := st.claim(name, origin)
	if claimed != name {
		w.log.Warn("texture name already taken, renaming",
			zap.String("name", name), zap.String("renamed", claimed))
	}
	return claimed
}

// sourcePath resolves a texture reference against the scene directory.
// Windows-style separators are accepted.
func (w *Writer) sourcePath(ref string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, "\\", "/"))
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(w.opts.SourceDir, ref)
}
