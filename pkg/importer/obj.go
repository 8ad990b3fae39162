package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	textenc "golang.org/x/text/encoding"

	"github.com/Faultbox/bakemodel/pkg/encoding"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

const blanks = "\r\n\t "

// objVertex is one corner of a face: position, uv and normal indices,
// zero based, -1 when absent.
type objVertex struct {
	v, vt, vn int
}

// objPart is the run of faces of one object drawn with one material.
type objPart struct {
	material string
	faces    [][]objVertex
}

type objObject struct {
	name  string
	parts []*objPart
}

// objDecoder holds the state of one OBJ parse.
type objDecoder struct {
	file string
	dir  string
	enc  textenc.Encoding
	log  *zap.Logger
	src  string // File being parsed
	line int

	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	objects   []*objObject
	matlibs   []string
	material  string // Current usemtl

	materials []*scene.Material
	matIndex  map[string]int
	matCur    *scene.Material // Target of MTL statements
}

func readOBJ(path, textEncoding string, log *zap.Logger) (*scene.Scene, error) {
	enc, err := encoding.Lookup(textEncoding)
	if err != nil {
		return nil, err
	}
	dec := &objDecoder{
		file:     path,
		dir:      filepath.Dir(path),
		enc:      enc,
		log:      log,
		matIndex: make(map[string]int),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open obj")
	}
	defer f.Close()
	if err := dec.parse(path, f, dec.parseObjLine); err != nil {
		return nil, err
	}

	for _, lib := range dec.matlibs {
		if err := dec.loadMatlib(lib); err != nil {
			log.Warn("material library not loaded, using defaults",
				zap.String("mtllib", lib), zap.Error(err))
		}
	}
	return dec.build(), nil
}

// parse reads src line by line and dispatches each trimmed line.
func (dec *objDecoder) parse(src string, r io.Reader, parseLine func(string) error) error {
	bufin := bufio.NewReader(encoding.NewReader(r, dec.enc))
	dec.src = src
	dec.line = 1
	for {
		line, err := bufin.ReadString('\n')
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "read %s", src)
		}
		if perr := parseLine(strings.Trim(line, blanks)); perr != nil {
			return perr
		}
		if err == io.EOF {
			return nil
		}
		dec.line++
	}
}

func (dec *objDecoder) formatError(format string, args ...interface{}) error {
	return errors.Errorf("%s:%d: %s", filepath.Base(dec.src), dec.line, fmt.Sprintf(format, args...))
}

func (dec *objDecoder) parseObjLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "mtllib":
		if len(fields) < 2 {
			return dec.formatError("mtllib with no file")
		}
		dec.matlibs = append(dec.matlibs, strings.Join(fields[1:], " "))
	case "o", "g":
		name := ""
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		dec.objects = append(dec.objects, &objObject{name: name})
	case "v":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, [2]float32{v[0], v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	case "usemtl":
		if len(fields) < 2 {
			return dec.formatError("usemtl with no name")
		}
		dec.material = strings.Join(fields[1:], " ")
	case "s", "l", "p":
		// Smoothing groups, lines and points carry nothing we bake.
	default:
		dec.log.Debug("obj field not supported",
			zap.String("field", fields[0]), zap.Int("line", dec.line))
	}
	return nil
}

func (dec *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i, f := range fields[:n] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, dec.formatError("bad number %q", f)
		}
		out[i] = float32(val)
	}
	return out, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a
// zero based one.
func (dec *objDecoder) resolveIndex(field string, count int) (int, error) {
	val, err := strconv.Atoi(field)
	if err != nil {
		return 0, dec.formatError("bad index %q", field)
	}
	switch {
	case val > 0:
		val--
	case val < 0:
		val += count
	default:
		return 0, dec.formatError("index 0 is invalid")
	}
	if val < 0 || val >= count {
		return 0, dec.formatError("index %s out of range", field)
	}
	return val, nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] ...
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face with less than 3 vertices")
	}
	face := make([]objVertex, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		vx := objVertex{vt: -1, vn: -1}
		var err error
		if vx.v, err = dec.resolveIndex(parts[0], len(dec.positions)); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if vx.vt, err = dec.resolveIndex(parts[1], len(dec.uvs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if vx.vn, err = dec.resolveIndex(parts[2], len(dec.normals)); err != nil {
				return err
			}
		}
		face[i] = vx
	}

	p := dec.currentPart()
	p.faces = append(p.faces, face)
	return nil
}

// currentPart returns the part faces are appended to, starting a new one
// when the object or material changed.
func (dec *objDecoder) currentPart() *objPart {
	if len(dec.objects) == 0 {
		dec.objects = append(dec.objects, &objObject{})
	}
	ob := dec.objects[len(dec.objects)-1]
	if n := len(ob.parts); n > 0 && ob.parts[n-1].material == dec.material {
		return ob.parts[n-1]
	}
	p := &objPart{material: dec.material}
	ob.parts = append(ob.parts, p)
	return p
}

// materialNamed returns the index of the material called name, creating
// an empty one on first use.
func (dec *objDecoder) materialNamed(name string) int {
	if i, ok := dec.matIndex[name]; ok {
		return i
	}
	dec.matIndex[name] = len(dec.materials)
	dec.materials = append(dec.materials, &scene.Material{Name: name})
	return len(dec.materials) - 1
}

// build converts the parsed objects into a scene: one node per object
// under the root, one mesh per material run.
func (dec *objDecoder) build() *scene.Scene {
	s := &scene.Scene{Path: dec.file, Root: &scene.Node{Name: "root"}}

	for _, ob := range dec.objects {
		node := &scene.Node{Name: ob.name}
		for pi, p := range ob.parts {
			if len(p.faces) == 0 {
				continue
			}
			m := dec.buildMesh(p)
			m.Name = ob.name
			if len(ob.parts) > 1 {
				m.Name = fmt.Sprintf("%s_%d", ob.name, pi)
			}
			if p.material != "" {
				m.Material = dec.materialNamed(p.material)
			}
			node.Meshes = append(node.Meshes, len(s.Meshes))
			s.Meshes = append(s.Meshes, m)
		}
		if len(node.Meshes) > 0 {
			s.Root.Children = append(s.Root.Children, node)
		}
	}
	s.Materials = dec.materials
	return s
}

// buildMesh deduplicates the face corners of p into indexed vertices.
func (dec *objDecoder) buildMesh(p *objPart) *scene.Mesh {
	m := &scene.Mesh{Material: -1}
	seen := make(map[objVertex]uint32)
	allNormals, anyUV := true, false

	for _, f := range p.faces {
		face := make([]uint32, len(f))
		for i, vx := range f {
			idx, ok := seen[vx]
			if !ok {
				idx = uint32(len(m.Positions))
				seen[vx] = idx
				m.Positions = append(m.Positions, dec.positions[vx.v])

				var n [3]float32
				if vx.vn >= 0 {
					n = dec.normals[vx.vn]
				} else {
					allNormals = false
				}
				m.Normals = append(m.Normals, n)

				var uv [2]float32
				if vx.vt >= 0 {
					uv = dec.uvs[vx.vt]
					anyUV = true
				}
				m.TexCoords = append(m.TexCoords, uv)
			}
			face[i] = idx
		}
		m.Faces = append(m.Faces, face)
	}

	if !allNormals {
		m.Normals = nil
	}
	if !anyUV {
		m.TexCoords = nil
	}
	return m
}
