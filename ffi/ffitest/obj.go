package ffitest

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/assimp-go/ffi"
)

// objDecoder parses the subset of Wavefront OBJ needed by tests. Every face
// corner becomes its own vertex, matching what importers emit for OBJ.
type objDecoder struct {
	line      int
	positions []ffi.Vector3
	normals   []ffi.Vector3
	uvs       []ffi.Vector3
	materials []string
	matIndex  map[string]uint32
	current   *MeshDesc
	meshes    []MeshDesc
	matCur    uint32
}

type objCorner struct {
	v, vt, vn int
}

const objNone = -1

// ParseOBJ decodes data into a SceneDesc named name.
func ParseOBJ(name string, data []byte) (*SceneDesc, error) {
	dec := &objDecoder{matIndex: make(map[string]uint32)}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(dec.positions) == 0 {
		return nil, fmt.Errorf("OBJ: no vertices found")
	}

	desc := &SceneDesc{Name: name, Root: &NodeDesc{Name: name}}
	for i := range dec.meshes {
		if len(dec.meshes[i].Faces) == 0 {
			continue
		}
		idx := uint32(len(desc.Meshes))
		desc.Meshes = append(desc.Meshes, dec.meshes[i])
		desc.Root.Children = append(desc.Root.Children, &NodeDesc{
			Name:   dec.meshes[i].Name,
			Meshes: []uint32{idx},
		})
	}
	if len(dec.materials) == 0 {
		dec.materials = append(dec.materials, "DefaultMaterial")
	}
	for _, m := range dec.materials {
		desc.Materials = append(desc.Materials, MaterialDesc{Name: m})
	}
	return desc, nil
}

func (dec *objDecoder) formatError(msg string) error {
	return fmt.Errorf("OBJ: line %d: %s", dec.line, msg)
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "o", "g":
		return dec.parseObject(fields[1:])
	case "v":
		v, err := dec.parseVec(fields[1:], 3)
		dec.positions = append(dec.positions, v)
		return err
	case "vn":
		v, err := dec.parseVec(fields[1:], 3)
		dec.normals = append(dec.normals, v)
		return err
	case "vt":
		v, err := dec.parseVec(fields[1:], 2)
		dec.uvs = append(dec.uvs, v)
		return err
	case "f":
		return dec.parseFace(fields[1:])
	case "usemtl":
		return dec.parseUsemtl(fields[1:])
	case "s", "mtllib":
		return nil
	default:
		return dec.formatError(fmt.Sprintf("unsupported statement %q", fields[0]))
	}
}

func (dec *objDecoder) parseObject(fields []string) error {
	name := "defaultobject"
	if len(fields) > 0 {
		name = fields[0]
	}
	dec.meshes = append(dec.meshes, MeshDesc{Name: name, Material: dec.matCur})
	dec.current = &dec.meshes[len(dec.meshes)-1]
	return nil
}

func (dec *objDecoder) parseVec(fields []string, min int) (ffi.Vector3, error) {
	if len(fields) < min {
		return ffi.Vector3{}, dec.formatError(fmt.Sprintf("expected %d components", min))
	}
	var out [3]float32
	for i := 0; i < len(fields) && i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return ffi.Vector3{}, dec.formatError(err.Error())
		}
		out[i] = float32(f)
	}
	return ffi.Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func (dec *objDecoder) parseUsemtl(fields []string) error {
	if len(fields) < 1 {
		return dec.formatError("usemtl with no material name")
	}
	idx, ok := dec.matIndex[fields[0]]
	if !ok {
		idx = uint32(len(dec.materials))
		dec.materials = append(dec.materials, fields[0])
		dec.matIndex[fields[0]] = idx
	}
	dec.matCur = idx
	if dec.current != nil && len(dec.current.Faces) == 0 {
		dec.current.Material = idx
	}
	return nil
}

func (dec *objDecoder) parseFace(fields []string) error {
	if dec.current == nil {
		if err := dec.parseObject(nil); err != nil {
			return err
		}
	}
	if len(fields) < 3 {
		return dec.formatError("face with less than 3 vertices")
	}

	m := dec.current
	face := make([]uint32, 0, len(fields))
	for _, f := range fields {
		c, err := dec.parseCorner(f)
		if err != nil {
			return err
		}
		face = append(face, uint32(len(m.Vertices)))
		m.Vertices = append(m.Vertices, dec.positions[c.v])
		if c.vn != objNone {
			m.Normals = append(m.Normals, dec.normals[c.vn])
		}
		if c.vt != objNone {
			m.TexCoords = append(m.TexCoords, dec.uvs[c.vt])
		}
	}
	// partial attribute streams would misalign with the vertices
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return dec.formatError("normals must be given for every face vertex")
	}
	if len(m.TexCoords) != 0 && len(m.TexCoords) != len(m.Vertices) {
		return dec.formatError("texture coordinates must be given for every face vertex")
	}
	m.Faces = append(m.Faces, face)
	return nil
}

func (dec *objDecoder) parseCorner(field string) (objCorner, error) {
	parts := strings.Split(field, "/")
	c := objCorner{v: objNone, vt: objNone, vn: objNone}
	var err error
	if c.v, err = dec.resolve(parts[0], len(dec.positions)); err != nil {
		return c, err
	}
	if c.v == objNone {
		return c, dec.formatError("face vertex without position")
	}
	if len(parts) > 1 {
		if c.vt, err = dec.resolve(parts[1], len(dec.uvs)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 {
		if c.vn, err = dec.resolve(parts[2], len(dec.normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolve turns a 1-based or negative relative OBJ index into a 0-based one.
func (dec *objDecoder) resolve(field string, count int) (int, error) {
	if field == "" {
		return objNone, nil
	}
	val, err := strconv.Atoi(field)
	if err != nil {
		return objNone, dec.formatError(err.Error())
	}
	var idx int
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		idx = count + val
	default:
		return objNone, dec.formatError("index value equal to 0")
	}
	if idx < 0 || idx >= count {
		return objNone, dec.formatError(fmt.Sprintf("index %d out of range", val))
	}
	return idx, nil
}
