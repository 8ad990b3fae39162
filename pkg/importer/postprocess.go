package importer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

// postProcess validates every mesh and applies the requested steps.
func postProcess(s *scene.Scene, flags Flags, log *zap.Logger) error {
	for i, m := range s.Meshes {
		if err := validateMesh(m); err != nil {
			return errors.Wrapf(err, "mesh %d (%s)", i, m.Name)
		}
		if len(m.TexCoords) != 0 && len(m.TexCoords) != len(m.Positions) {
			log.Warn("texture coordinate count mismatch, dropping uvs",
				zap.String("mesh", m.Name),
				zap.Int("positions", len(m.Positions)),
				zap.Int("uvs", len(m.TexCoords)))
			m.TexCoords = nil
		}
		if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
			m.Normals = nil
		}

		if flags&Triangulate != 0 {
			if dropped := triangulate(m); dropped > 0 {
				log.Debug("dropped degenerate faces",
					zap.String("mesh", m.Name), zap.Int("faces", dropped))
			}
		}
		if flags&GenNormals != 0 && len(m.Normals) == 0 {
			generateNormals(m)
		}
		if len(m.Normals) != len(m.Positions) {
			// Normals are mandatory downstream.
			m.Normals = make([][3]float32, len(m.Positions))
		}
	}
	return nil
}

func validateMesh(m *scene.Mesh) error {
	n := uint32(len(m.Positions))
	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx >= n {
				return errors.Errorf("face %d references vertex %d of %d", fi, idx, n)
			}
		}
	}
	return nil
}

// triangulate fans every polygon into triangles and returns how many faces
// were dropped for having fewer than three vertices.
func triangulate(m *scene.Mesh) int {
	dropped := 0
	out := make([][]uint32, 0, len(m.Faces))
	for _, f := range m.Faces {
		switch {
		case len(f) < 3:
			dropped++
		case len(f) == 3:
			out = append(out, f)
		default:
			for i := 1; i+1 < len(f); i++ {
				out = append(out, []uint32{f[0], f[i], f[i+1]})
			}
		}
	}
	m.Faces = out
	return dropped
}

// generateNormals accumulates unnormalized face normals, so larger faces
// weigh more, and normalizes the sum per vertex. Vertices touched only by
// degenerate faces get +Z.
func generateNormals(m *scene.Mesh) {
	acc := make([]mgl32.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		if len(f) < 3 {
			continue
		}
		a := mgl32.Vec3(m.Positions[f[0]])
		for i := 1; i+1 < len(f); i++ {
			b := mgl32.Vec3(m.Positions[f[i]])
			c := mgl32.Vec3(m.Positions[f[i+1]])
			n := b.Sub(a).Cross(c.Sub(a))
			acc[f[0]] = acc[f[0]].Add(n)
			acc[f[i]] = acc[f[i]].Add(n)
			acc[f[i+1]] = acc[f[i+1]].Add(n)
		}
	}

	m.Normals = make([][3]float32, len(acc))
	for i, n := range acc {
		if n.Len() < 1e-12 {
			m.Normals[i] = [3]float32{0, 0, 1}
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}
