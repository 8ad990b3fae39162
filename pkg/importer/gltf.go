package importer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/scene"
)

type gltfReader struct {
	doc *gltf.Document
	s   *scene.Scene
	log *zap.Logger

	meshes map[uint32][]int // glTF mesh -> scene meshes, one per primitive
}

func readGLTF(path string, log *zap.Logger) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open gltf %s", path)
	}

	r := &gltfReader{
		doc: doc,
		s: &scene.Scene{
			Path:     path,
			Embedded: make(map[string]*scene.EmbeddedTexture),
		},
		log:    log,
		meshes: make(map[uint32][]int),
	}

	for i, m := range doc.Materials {
		r.s.Materials = append(r.s.Materials, r.material(i, m))
	}
	for mi, m := range doc.Meshes {
		if err := r.mesh(uint32(mi), m); err != nil {
			return nil, err
		}
	}
	r.s.Root, err = r.hierarchy()
	if err != nil {
		return nil, err
	}
	return r.s, nil
}

// material copies the PBR metallic-roughness parameters of m.
func (r *gltfReader) material(i int, m *gltf.Material) *scene.Material {
	out := &scene.Material{Name: m.Name}
	if out.Name == "" {
		out.Name = fmt.Sprintf("material%d", i)
	}

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		// The decoder fills unset factors with the glTF defaults of 1.
		if c := pbr.BaseColorFactor; c != nil {
			out.BaseColor = &[3]float32{c[0], c[1], c[2]}
		}
		if pbr.MetallicFactor != nil {
			v := *pbr.MetallicFactor
			out.Metallic = &v
		}
		if pbr.RoughnessFactor != nil {
			v := *pbr.RoughnessFactor
			out.Roughness = &v
		}
		if t := pbr.BaseColorTexture; t != nil {
			out.SetTexture(scene.TextureBaseColor, r.textureRef(t.Index))
		}
		if t := pbr.MetallicRoughnessTexture; t != nil {
			out.SetTexture(scene.TextureMetallicRoughness, r.textureRef(t.Index))
		}
	}
	if t := m.NormalTexture; t != nil && t.Index != nil {
		out.SetTexture(scene.TextureNormals, r.textureRef(*t.Index))
	}
	if t := m.OcclusionTexture; t != nil && t.Index != nil {
		out.SetTexture(scene.TextureAmbientOcclusion, r.textureRef(*t.Index))
	}
	return out
}

// textureRef returns the reference for texture index ti: a decoded file
// path for external images, "*<image>" for images stored in the file. An
// empty string means the texture cannot be resolved.
func (r *gltfReader) textureRef(ti uint32) string {
	if int(ti) >= len(r.doc.Textures) || r.doc.Textures[ti].Source == nil {
		r.log.Warn("texture has no image source", zap.Uint32("texture", ti))
		return ""
	}
	src := *r.doc.Textures[ti].Source
	if int(src) >= len(r.doc.Images) {
		r.log.Warn("texture references missing image",
			zap.Uint32("texture", ti), zap.Uint32("image", src))
		return ""
	}
	img := r.doc.Images[src]

	if img.BufferView == nil && !strings.HasPrefix(img.URI, "data:") {
		if img.URI == "" {
			return ""
		}
		ref, err := url.PathUnescape(img.URI)
		if err != nil {
			return img.URI
		}
		return ref
	}

	ref := fmt.Sprintf("*%d", src)
	if _, ok := r.s.Embedded[ref]; ok {
		return ref
	}
	data, mime, err := r.imageData(img)
	if err != nil {
		r.log.Warn("failed to read embedded image",
			zap.Uint32("image", src), zap.Error(err))
		return ""
	}
	r.s.Embedded[ref] = &scene.EmbeddedTexture{Name: img.Name, MimeType: mime, Data: data}
	return ref
}

func (r *gltfReader) imageData(img *gltf.Image) ([]byte, string, error) {
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(r.doc.BufferViews) {
			return nil, "", errors.Errorf("buffer view %d out of range", *img.BufferView)
		}
		data, err := modeler.ReadBufferView(r.doc, r.doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, "", err
		}
		return append([]byte(nil), data...), img.MimeType, nil
	}

	data, err := img.MarshalData()
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("unsupported data uri")
	}
	mime := img.MimeType
	if mime == "" {
		mime = strings.SplitN(strings.TrimPrefix(img.URI, "data:"), ";", 2)[0]
	}
	return data, mime, nil
}

// mesh converts every triangle primitive of glTF mesh mi.
func (r *gltfReader) mesh(mi uint32, m *gltf.Mesh) error {
	for pi, p := range m.Primitives {
		name := m.Name
		if len(m.Primitives) > 1 {
			name = fmt.Sprintf("%s_%d", m.Name, pi)
		}
		sm, err := r.primitive(name, p)
		if err != nil {
			return errors.Wrapf(err, "mesh %d primitive %d", mi, pi)
		}
		if sm == nil {
			continue
		}
		r.meshes[mi] = append(r.meshes[mi], len(r.s.Meshes))
		r.s.Meshes = append(r.s.Meshes, sm)
	}
	return nil
}

func (r *gltfReader) accessor(p *gltf.Primitive, attr string) (*gltf.Accessor, bool) {
	idx, ok := p.Attributes[attr]
	if !ok || int(idx) >= len(r.doc.Accessors) {
		return nil, false
	}
	return r.doc.Accessors[idx], true
}

func (r *gltfReader) primitive(name string, p *gltf.Primitive) (*scene.Mesh, error) {
	switch p.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		r.log.Warn("skipping non-triangle primitive",
			zap.String("mesh", name), zap.Int("mode", int(p.Mode)))
		return nil, nil
	}

	acr, ok := r.accessor(p, gltf.POSITION)
	if !ok {
		r.log.Warn("skipping primitive without positions", zap.String("mesh", name))
		return nil, nil
	}
	positions, err := modeler.ReadPosition(r.doc, acr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "read positions")
	}

	out := &scene.Mesh{Name: name, Positions: positions, Material: -1}
	if p.Material != nil && int(*p.Material) < len(r.s.Materials) {
		out.Material = int(*p.Material)
	}

	if acr, ok := r.accessor(p, gltf.NORMAL); ok {
		if out.Normals, err = modeler.ReadNormal(r.doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read normals")
		}
	}
	if acr, ok := r.accessor(p, gltf.TEXCOORD_0); ok {
		if out.TexCoords, err = modeler.ReadTextureCoord(r.doc, acr, nil); err != nil {
			return nil, errors.Wrap(err, "read texture coordinates")
		}
	}

	var indices []uint32
	if p.Indices != nil {
		if int(*p.Indices) >= len(r.doc.Accessors) {
			return nil, errors.Errorf("index accessor %d out of range", *p.Indices)
		}
		if indices, err = modeler.ReadIndices(r.doc, r.doc.Accessors[*p.Indices], nil); err != nil {
			return nil, errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	out.Faces = triangleFaces(p.Mode, indices)
	return out, nil
}

// triangleFaces expands an index list of the given topology into triangles.
// Strips alternate winding so every triangle keeps the first one's facing.
func triangleFaces(mode gltf.PrimitiveMode, idx []uint32) [][]uint32 {
	var faces [][]uint32
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, []uint32{idx[i], idx[i+1], idx[i+2]})
			} else {
				faces = append(faces, []uint32{idx[i+1], idx[i], idx[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, []uint32{idx[0], idx[i], idx[i+1]})
		}
	default:
		faces = make([][]uint32, 0, len(idx)/3)
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, []uint32{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return faces
}

// hierarchy builds the node tree under a synthetic root whose children are
// the root nodes of the default scene. Without scenes every parentless node
// is a root. A node reachable twice is kept only at its first position.
func (r *gltfReader) hierarchy() (*scene.Node, error) {
	root := &scene.Node{Name: "root"}

	var roots []uint32
	switch {
	case r.doc.Scene != nil && int(*r.doc.Scene) < len(r.doc.Scenes):
		roots = r.doc.Scenes[*r.doc.Scene].Nodes
	case len(r.doc.Scenes) > 0:
		roots = r.doc.Scenes[0].Nodes
	default:
		hasParent := make([]bool, len(r.doc.Nodes))
		for _, n := range r.doc.Nodes {
			for _, c := range n.Children {
				if int(c) < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i, p := range hasParent {
			if !p {
				roots = append(roots, uint32(i))
			}
		}
	}

	type item struct {
		index  uint32
		parent *scene.Node
	}
	visited := make([]bool, len(r.doc.Nodes))
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], root})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if int(it.index) >= len(r.doc.Nodes) {
			return nil, errors.Errorf("node %d out of range", it.index)
		}
		if visited[it.index] {
			r.log.Warn("node referenced more than once, ignoring repeat", zap.Uint32("node", it.index))
			continue
		}
		visited[it.index] = true

		n := r.doc.Nodes[it.index]
		node := &scene.Node{Name: n.Name}
		if n.Mesh != nil {
			node.Meshes = append(node.Meshes, r.meshes[*n.Mesh]...)
		}
		it.parent.Children = append(it.parent.Children, node)

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{n.Children[i], node})
		}
	}
	return root, nil
}
