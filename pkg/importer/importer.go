// Package importer loads scene files into the plain scene graph the baker
// consumes. glTF 2.0 (.gltf, .glb), Wavefront OBJ (.obj with .mtl
// material libraries) and RSM 1.x models (.rsm) are supported.
//
// Everything is copied out of the decoders: the returned scene holds no
// references into parser-owned buffers.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

// Flags select post-processing steps applied after loading.
type Flags uint32

const (
	// Triangulate splits polygons into triangles and drops faces with
	// fewer than three vertices.
	Triangulate Flags = 1 << iota
	// GenNormals computes smooth normals for meshes that have none.
	GenNormals
)

// DefaultFlags is what the baker always requests.
const DefaultFlags = Triangulate | GenNormals

// ErrUnsupportedFormat is returned for file extensions with no importer.
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// Options configures ReadFile.
type Options struct {
	Flags        Flags  // DefaultFlags if zero
	TextEncoding string // Encoding of OBJ/MTL text and RSM names; UTF-8 (EUC-KR for RSM) if empty
	Logger       *zap.Logger
}

// Extensions lists the supported scene file extensions.
func Extensions() []string {
	return []string{".gltf", ".glb", ".obj", ".rsm"}
}

// ReadFile imports the scene at path.
func ReadFile(path string, opts Options) (*scene.Scene, error) {
	if opts.Flags == 0 {
		opts.Flags = DefaultFlags
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		s   *scene.Scene
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		s, err = readGLTF(path, log)
	case ".obj":
		s, err = readOBJ(path, opts.TextEncoding, log)
	case ".rsm":
		s, err = readRSM(path, opts.TextEncoding, log)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := postProcess(s, opts.Flags, log); err != nil {
		return nil, errors.Wrapf(err, "post-process %s", path)
	}

	log.Debug("scene imported",
		zap.String("path", path),
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("materials", len(s.Materials)),
		zap.Int("embeddedTextures", len(s.Embedded)))
	return s, nil
}
