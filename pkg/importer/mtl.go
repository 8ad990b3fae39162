package importer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/bakemodel/pkg/encoding"
	"github.com/Faultbox/bakemodel/pkg/scene"
)

// mapOptionArgs is the number of arguments taken by each texture map
// option. The numeric options -o, -s and -t take up to three.
var mapOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-mm":      2,
	"-texres":  1,
	"-type":    1,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

// loadMatlib parses the material library lib next to the OBJ file.
func (dec *objDecoder) loadMatlib(lib string) error {
	path := filepath.FromSlash(encoding.NormalizePath(lib))
	if !filepath.IsAbs(path) {
		path = filepath.Join(dec.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open mtl")
	}
	defer f.Close()

	dec.matCur = nil
	return dec.parse(path, f, dec.parseMtlLine)
}

func (dec *objDecoder) parseMtlLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	if fields[0] == "newmtl" {
		if len(fields) < 2 {
			return dec.formatError("newmtl with no name")
		}
		dec.matCur = dec.materials[dec.materialNamed(strings.Join(fields[1:], " "))]
		return nil
	}
	if dec.matCur == nil {
		return dec.formatError("%s before newmtl", fields[0])
	}

	m := dec.matCur
	switch fields[0] {
	case "Kd":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		m.BaseColor = &[3]float32{v[0], v[1], v[2]}
	case "Pm":
		v, err := dec.parseFloats(fields[1:], 1)
		if err != nil {
			return err
		}
		m.Metallic = &v[0]
	case "Pr":
		v, err := dec.parseFloats(fields[1:], 1)
		if err != nil {
			return err
		}
		m.Roughness = &v[0]
	case "map_Kd":
		dec.setMap(m, scene.TextureBaseColor, fields[1:])
	case "map_ORM", "map_Pmr":
		dec.setMap(m, scene.TextureMetallicRoughness, fields[1:])
	case "norm", "map_Bump", "map_bump", "bump":
		dec.setMap(m, scene.TextureNormals, fields[1:])
	case "map_AO", "map_ao":
		dec.setMap(m, scene.TextureAmbientOcclusion, fields[1:])
	default:
		dec.log.Debug("mtl field not supported",
			zap.String("field", fields[0]), zap.Int("line", dec.line))
	}
	return nil
}

func (dec *objDecoder) setMap(m *scene.Material, t scene.TextureType, fields []string) {
	name := mapFileName(fields)
	if name == "" {
		dec.log.Warn("texture map with no file",
			zap.String("material", m.Name), zap.Stringer("type", t), zap.Int("line", dec.line))
		return
	}
	m.SetTexture(t, encoding.NormalizePath(name))
}

// mapFileName skips the options of a texture map statement and returns the
// file name, which may contain spaces.
func mapFileName(fields []string) string {
	i := 0
	for i < len(fields) && strings.HasPrefix(fields[i], "-") {
		n, ok := mapOptionArgs[fields[i]]
		i++
		if !ok {
			continue
		}
		for ; n > 0 && i < len(fields); n-- {
			if !isNumber(fields[i]) && !isOptionWord(fields[i]) {
				break
			}
			i++
		}
	}
	return strings.Join(fields[i:], " ")
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}

func isOptionWord(s string) bool {
	switch s {
	case "on", "off", "r", "g", "b", "m", "l", "z", "sphere", "cube_top", "cube_bottom",
		"cube_front", "cube_back", "cube_left", "cube_right":
		return true
	}
	return false
}
