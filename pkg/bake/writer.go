package bake

import (
	"bufio"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/imageenc"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

// WriterOptions configures a bundle Writer.
type WriterOptions struct {
	OutputDir       string // Bundle directory, created if missing
	Stem            string // Base name of the blob and manifest files
	SourceDir       string // External texture references resolve against this
	Scene           *scene.Scene
	Encoder         imageenc.Encoder // Placeholder encoder, PNG if nil
	PlaceholderSize int              // Edge length, PlaceholderSize if <= 0
	StrictTextures  bool             // Fail instead of falling back on missing textures
	Logger          *zap.Logger
}

// Writer streams baked meshes into the blob, emits their textures and
// writes the manifest. Every output is staged and published only when the
// whole bundle has been written.
type Writer struct {
	opts WriterOptions
	log  *zap.Logger
}

// NewWriter validates opts and returns a Writer.
func NewWriter(opts WriterOptions) (*Writer, error) {
	if opts.OutputDir == "" {
		return nil, ArgumentError("output directory is required")
	}
	if opts.Stem == "" {
		return nil, ArgumentError("bundle stem is required")
	}
	if opts.Encoder == nil {
		opts.Encoder = imageenc.PNG{}
	}
	if opts.PlaceholderSize <= 0 {
		opts.PlaceholderSize = PlaceholderSize
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{opts: opts, log: log}, nil
}

// BlobName returns the blob file name.
func (w *Writer) BlobName() string { return w.opts.Stem + ".bin" }

// ManifestName returns the manifest file name.
func (w *Writer) ManifestName() string { return w.opts.Stem + ".json" }

// Write packs meshes in order and returns the manifest it published.
// Offsets are cumulative byte positions with no padding: each mesh's index
// buffer follows its vertex buffer, and the next mesh follows its indices.
func (w *Writer) Write(meshes []Mesh) (manifest *Manifest, err error) {
	dir := w.opts.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, ioError("create output directory", dir, err)
	}

	st := newStage(dir)
	defer func() {
		if err == nil {
			return
		}
		if rbErr := st.rollback(); rbErr != nil {
			w.log.Warn("failed to remove staged files", zap.Error(rbErr))
		}
	}()

	blobFile, err := st.createLast(w.BlobName())
	if err != nil {
		return nil, err
	}
	blobPath := filepath.Join(dir, w.BlobName())
	manifest, offset, err := w.pack(st, bufio.NewWriter(blobFile), blobPath, meshes)
	if err != nil {
		blobFile.Close()
		return nil, err
	}
	if err := blobFile.Close(); err != nil {
		return nil, ioError("close blob", blobPath, err)
	}

	manifestFile, err := st.createLast(w.ManifestName())
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(dir, w.ManifestName())
	if err := manifest.Encode(manifestFile); err != nil {
		manifestFile.Close()
		return nil, ioError("write manifest", manifestPath, err)
	}
	if err := manifestFile.Close(); err != nil {
		return nil, ioError("close manifest", manifestPath, err)
	}

	if err := st.commit(); err != nil {
		return nil, err
	}

	w.log.Info("bundle written",
		zap.String("dir", dir),
		zap.Int("meshes", manifest.MeshCount),
		zap.Int64("blobBytes", offset))
	return manifest, nil
}

// pack streams the buffers of meshes into bw, emits their textures and
// returns the manifest entries with the total blob length.
func (w *Writer) pack(st *stage, bw *bufio.Writer, blobPath string, meshes []Mesh) (*Manifest, int64, error) {
	manifest := &Manifest{
		MeshCount:      len(meshes),
		MeshAttributes: make([]MeshAttributes, 0, len(meshes)),
	}

	var offset int64
	var scratch []byte
	for i := range meshes {
		m := &meshes[i]
		for c := Channel(0); c < ChannelCount; c++ {
			if !m.Channels[c].Resolved() {
				return nil, 0, &Error{Kind: ErrUnresolvedChannel, Op: "write mesh " + m.Name + " " + c.Name()}
			}
		}

		attrs := MeshAttributes{
			VertexCount:  len(m.Vertices),
			VertexOffset: offset,
		}
		scratch = AppendVertices(scratch[:0], m.Vertices)
		if _, err := bw.Write(scratch); err != nil {
			return nil, 0, ioError("write vertices", blobPath, err)
		}
		offset += attrs.VertexBytes()

		attrs.IndexCount = len(m.Indices)
		attrs.IndexOffset = offset
		scratch = AppendIndices(scratch[:0], m.Indices)
		if _, err := bw.Write(scratch); err != nil {
			return nil, 0, ioError("write indices", blobPath, err)
		}
		offset += attrs.IndexBytes()

		for c := Channel(0); c < ChannelCount; c++ {
			name, err := w.emitTexture(st, i, c, m.Channels[c])
			if err != nil {
				return nil, 0, err
			}
			attrs.setTexture(c, name)
		}

		w.log.Debug("packed mesh",
			zap.Int("index", i),
			zap.String("name", m.Name),
			zap.Int("vertices", attrs.VertexCount),
			zap.Int("indices", attrs.IndexCount),
			zap.Int64("vertexOffset", attrs.VertexOffset),
			zap.Int64("indexOffset", attrs.IndexOffset))

		manifest.MeshAttributes = append(manifest.MeshAttributes, attrs)
	}

	if err := bw.Flush(); err != nil {
		return nil, 0, ioError("write blob", blobPath, err)
	}
	return manifest, offset, nil
}
