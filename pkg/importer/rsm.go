package importer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	textenc "golang.org/x/text/encoding"

	"github.com/Faultbox/bakemodel/pkg/encoding"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

// RSM models store names as fixed 40 byte, NUL padded fields, usually in
// the Korean legacy code page.
const (
	rsmMagic       = "GRSM"
	rsmNameLen     = 40
	rsmMaxCount    = 1 << 20
	rsmDefaultText = "euc-kr"
)

var (
	ErrInvalidRSM   = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrTruncatedRSM = errors.New("truncated RSM data")
)

type rsmVersion struct {
	major, minor uint8
}

func (v rsmVersion) atLeast(major, minor uint8) bool {
	return v.major > major || (v.major == major && v.minor >= minor)
}

type rsmFace struct {
	vertex [3]uint16
	uv     [3]uint16
	tex    uint16
}

type rsmNode struct {
	name     string
	parent   string
	textures []int32
	vertices [][3]float32
	uvs      [][2]float32
	faces    []rsmFace
}

type rsmModel struct {
	version  rsmVersion
	textures []string
	nodes    []*rsmNode
}

// rsmReader decodes little-endian fields and remembers the first error, so
// a node can be read field by field and checked once.
type rsmReader struct {
	r   *bytes.Reader
	enc textenc.Encoding
	err error
}

func (rd *rsmReader) read(v any) {
	if rd.err != nil {
		return
	}
	if err := binary.Read(rd.r, binary.LittleEndian, v); err != nil {
		rd.err = ErrTruncatedRSM
	}
}

func (rd *rsmReader) skip(n int64) {
	if rd.err != nil {
		return
	}
	if n > int64(rd.r.Len()) {
		rd.err = ErrTruncatedRSM
		return
	}
	rd.r.Seek(n, io.SeekCurrent)
}

func (rd *rsmReader) count(what string) int {
	var n int32
	rd.read(&n)
	if rd.err == nil && (n < 0 || n > rsmMaxCount) {
		rd.err = errors.Errorf("invalid %s count %d", what, n)
	}
	if rd.err != nil {
		return 0
	}
	return int(n)
}

func (rd *rsmReader) name() string {
	buf := make([]byte, rsmNameLen)
	rd.read(buf)
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return encoding.ToUTF8(rd.enc, buf)
}

func parseRSM(data []byte, enc textenc.Encoding) (*rsmModel, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSM
	}
	if string(data[:4]) != rsmMagic {
		return nil, ErrInvalidRSM
	}
	m := &rsmModel{version: rsmVersion{data[4], data[5]}}
	// 2.x models keep per-node texture names and a different node layout.
	if m.version.major != 1 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "rsm version %d.%d", m.version.major, m.version.minor)
	}

	rd := &rsmReader{r: bytes.NewReader(data[6:]), enc: enc}
	rd.skip(8) // animation length, shading type
	if m.version.atLeast(1, 4) {
		rd.skip(1) // alpha
	}
	rd.skip(16)

	m.textures = make([]string, rd.count("texture"))
	for i := range m.textures {
		m.textures[i] = encoding.NormalizePath(rd.name())
	}
	rd.name() // root node, implied by the parent links

	nodes := rd.count("node")
	if rd.err != nil {
		return nil, errors.Wrap(rd.err, "header")
	}
	for i := 0; i < nodes && rd.err == nil; i++ {
		m.nodes = append(m.nodes, rd.node(m.version))
	}
	if rd.err != nil {
		return nil, errors.Wrapf(rd.err, "node %d", len(m.nodes))
	}
	// Volume boxes follow; nothing in them is baked.
	return m, nil
}

func (rd *rsmReader) node(v rsmVersion) *rsmNode {
	n := &rsmNode{name: rd.name(), parent: rd.name()}

	n.textures = make([]int32, rd.count("texture id"))
	for i := range n.textures {
		rd.read(&n.textures[i])
	}

	// Rotation matrix, pivot, position, axis angle and scale. Placement is
	// not baked; vertices are taken in node space.
	rd.skip((9 + 3 + 3 + 1 + 3 + 3) * 4)

	n.vertices = make([][3]float32, rd.count("vertex"))
	for i := range n.vertices {
		rd.read(&n.vertices[i])
	}

	n.uvs = make([][2]float32, rd.count("texcoord"))
	for i := range n.uvs {
		if v.atLeast(1, 2) {
			rd.skip(4) // vertex color
		}
		rd.read(&n.uvs[i])
	}

	n.faces = make([]rsmFace, rd.count("face"))
	for i := range n.faces {
		f := &n.faces[i]
		rd.read(&f.vertex)
		rd.read(&f.uv)
		rd.read(&f.tex)
		rd.skip(2 + 4) // padding, two-sided flag
		if v.atLeast(1, 2) {
			rd.skip(4) // smoothing group
		}
	}

	if !v.atLeast(1, 5) {
		rd.skip(int64(rd.count("position key")) * 16)
	}
	rd.skip(int64(rd.count("rotation key")) * 20)
	if v.atLeast(1, 5) {
		rd.skip(int64(rd.count("scale key")) * 16)
	}
	return n
}

func readRSM(path, textEncoding string, log *zap.Logger) (*scene.Scene, error) {
	if textEncoding == "" {
		textEncoding = rsmDefaultText
	}
	enc, err := encoding.Lookup(textEncoding)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open rsm")
	}
	m, err := parseRSM(data, enc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse rsm %s", path)
	}

	s := &scene.Scene{Path: path}
	// One material per model texture, bound as its base color.
	for _, tex := range m.textures {
		mat := &scene.Material{Name: tex}
		mat.SetTexture(scene.TextureBaseColor, tex)
		s.Materials = append(s.Materials, mat)
	}

	nodes := make([]*scene.Node, len(m.nodes))
	for i, n := range m.nodes {
		nodes[i] = &scene.Node{Name: n.name}
		meshes, err := rsmMeshes(n, len(m.textures))
		if err != nil {
			return nil, errors.Wrapf(err, "rsm node %q", n.name)
		}
		for _, mesh := range meshes {
			nodes[i].Meshes = append(nodes[i].Meshes, len(s.Meshes))
			s.Meshes = append(s.Meshes, mesh)
		}
	}
	s.Root = rsmHierarchy(m, nodes, log)
	return s, nil
}

// rsmMeshes splits the faces of n by texture into single-material meshes,
// deduplicating (vertex, uv) corners.
func rsmMeshes(n *rsmNode, textures int) ([]*scene.Mesh, error) {
	type corner struct{ v, t uint16 }
	type group struct {
		mesh *scene.Mesh
		seen map[corner]uint32
	}
	var (
		order  []*group
		groups = make(map[int]*group)
	)

	for fi, f := range n.faces {
		mat := -1
		if int(f.tex) < len(n.textures) && int(n.textures[f.tex]) < textures && n.textures[f.tex] >= 0 {
			mat = int(n.textures[f.tex])
		}
		g, ok := groups[mat]
		if !ok {
			g = &group{mesh: &scene.Mesh{Material: mat}, seen: make(map[corner]uint32)}
			groups[mat] = g
			order = append(order, g)
		}

		face := make([]uint32, 3)
		for k := range face {
			c := corner{f.vertex[k], f.uv[k]}
			if int(c.v) >= len(n.vertices) {
				return nil, errors.Errorf("face %d: vertex %d of %d", fi, c.v, len(n.vertices))
			}
			idx, ok := g.seen[c]
			if !ok {
				idx = uint32(len(g.mesh.Positions))
				g.seen[c] = idx
				g.mesh.Positions = append(g.mesh.Positions, n.vertices[c.v])
				var uv [2]float32
				if int(c.t) < len(n.uvs) {
					uv = n.uvs[c.t]
				}
				g.mesh.TexCoords = append(g.mesh.TexCoords, uv)
			}
			face[k] = idx
		}
		g.mesh.Faces = append(g.mesh.Faces, face)
	}

	meshes := make([]*scene.Mesh, len(order))
	for i, g := range order {
		g.mesh.Name = n.name
		if len(order) > 1 {
			g.mesh.Name = fmt.Sprintf("%s_%d", n.name, i)
		}
		if len(n.uvs) == 0 {
			g.mesh.TexCoords = nil
		}
		meshes[i] = g.mesh
	}
	return meshes, nil
}

// rsmHierarchy links nodes to their parents by name. Nodes without a known
// parent hang off the synthetic root; nodes only reachable through a parent
// cycle are attached there too.
func rsmHierarchy(m *rsmModel, nodes []*scene.Node, log *zap.Logger) *scene.Node {
	root := &scene.Node{Name: "root"}

	byName := make(map[string]int, len(m.nodes))
	for i, n := range m.nodes {
		if _, dup := byName[n.name]; !dup {
			byName[n.name] = i
		}
	}
	children := make(map[int][]int)
	var tops []int
	for i, n := range m.nodes {
		p, ok := byName[n.parent]
		if n.parent == "" || !ok || p == i {
			tops = append(tops, i)
			continue
		}
		children[p] = append(children[p], i)
	}

	attached := make([]bool, len(nodes))
	var attach func(parent *scene.Node, i int)
	attach = func(parent *scene.Node, i int) {
		if attached[i] {
			return
		}
		attached[i] = true
		parent.Children = append(parent.Children, nodes[i])
		for _, c := range children[i] {
			attach(nodes[i], c)
		}
	}
	for _, i := range tops {
		attach(root, i)
	}
	for i := range nodes {
		if !attached[i] {
			log.Warn("rsm node unreachable from root, attaching to root",
				zap.String("node", m.nodes[i].name), zap.String("parent", m.nodes[i].parent))
			attach(root, i)
		}
	}
	return root
}
