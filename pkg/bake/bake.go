package bake

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/imageenc"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

// Options configures a complete bake.
type Options struct {
	OutputRoot        string // Parent of the bundle directory; "." if empty
	PlaceholderSize   int
	PlaceholderFormat string // "png" or "webp"
	StrictTextures    bool
	Logger            *zap.Logger
}

// Result describes a published bundle.
type Result struct {
	Dir      string
	Blob     string
	Manifest string
	Bundle   *Manifest
}

// Bake walks s and writes its bundle to <OutputRoot>/<stem>/.
func Bake(s *scene.Scene, opts Options) (*Result, error) {
	if s == nil {
		return nil, ArgumentError("no scene to bake")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	enc, err := imageenc.ForFormat(opts.PlaceholderFormat)
	if err != nil {
		return nil, ArgumentError(err.Error())
	}
	root := opts.OutputRoot
	if root == "" {
		root = "."
	}

	stem := s.Stem()
	dir := filepath.Join(root, stem)

	meshes := Walk(s, log)
	log.Info("scene traversed",
		zap.String("scene", s.Path),
		zap.Int("meshes", len(meshes)))

	w, err := NewWriter(WriterOptions{
		OutputDir:       dir,
		Stem:            stem,
		SourceDir:       s.Dir(),
		Scene:           s,
		Encoder:         enc,
		PlaceholderSize: opts.PlaceholderSize,
		StrictTextures:  opts.StrictTextures,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}

	manifest, err := w.Write(meshes)
	if err != nil {
		return nil, err
	}

	return &Result{
		Dir:      dir,
		Blob:     filepath.Join(dir, w.BlobName()),
		Manifest: filepath.Join(dir, w.ManifestName()),
		Bundle:   manifest,
	}, nil
}
