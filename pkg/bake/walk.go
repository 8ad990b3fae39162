package bake

import (
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

// Walk traverses the scene hierarchy pre-order, depth first, and returns one
// baked Mesh per mesh reference in visit order. A node's own meshes come
// before its children. Meshes referenced by several nodes appear once per
// reference. The traversal uses an explicit stack so deep hierarchies cannot
// exhaust the goroutine stack.
func Walk(s *scene.Scene, log *zap.Logger) []Mesh {
	if log == nil {
		log = zap.NewNop()
	}
	if s == nil || s.Root == nil {
		return nil
	}

	var meshes []Mesh
	stack := []*scene.Node{s.Root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}

		for _, mi := range node.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				log.Warn("node references missing mesh",
					zap.String("node", node.Name), zap.Int("mesh", mi))
				continue
			}
			src := s.Meshes[mi]
			if src == nil {
				log.Warn("node references nil mesh",
					zap.String("node", node.Name), zap.Int("mesh", mi))
				continue
			}
			vertices, indices := Extract(src)
			meshes = append(meshes, Mesh{
				Name:     src.Name,
				Vertices: vertices,
				Indices:  indices,
				Channels: Resolve(s.MaterialOf(src)),
			})
		}

		// Push children in reverse so the first child is visited next.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}

	return meshes
}
