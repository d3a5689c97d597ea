package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OBJ and MTL errors.
var (
	ErrInvalidOBJ = errors.New("invalid OBJ data")
	ErrInvalidMTL = errors.New("invalid MTL data")
)

// OBJIndex references one vertex of a face. Indices are 0-based;
// VT and VN are -1 when absent.
type OBJIndex struct {
	V  int
	VT int
	VN int
}

// OBJFace is a triangle. Polygons are fan-triangulated on parse.
type OBJFace [3]OBJIndex

// OBJGroup is a run of faces sharing one material.
type OBJGroup struct {
	Name     string
	Material string
	Faces    []OBJFace
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	Groups       []OBJGroup
	MaterialLibs []string
}

// FaceCount returns the number of triangles over all groups.
func (o *OBJ) FaceCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Faces)
	}
	return n
}

// ParseOBJ parses an OBJ file from raw bytes.
// Supported statements: v, vt, vn, f, o, g, usemtl, mtllib. Others are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var cur *OBJGroup

	// group returns the group new faces go to, starting one if needed.
	group := func() *OBJGroup {
		if cur == nil {
			obj.Groups = append(obj.Groups, OBJGroup{})
			cur = &obj.Groups[len(obj.Groups)-1]
		}
		return cur
	}
	// split starts a new group unless the current one is still empty.
	split := func() *OBJGroup {
		if cur != nil && len(cur.Faces) == 0 {
			return cur
		}
		prev := OBJGroup{}
		if cur != nil {
			prev = OBJGroup{Name: cur.Name, Material: cur.Material}
		}
		obj.Groups = append(obj.Groups, prev)
		cur = &obj.Groups[len(obj.Groups)-1]
		return cur
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		args := fields[1:]

		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			err = parseFloats(args, v[:], 3)
			obj.Positions = append(obj.Positions, v)
		case "vt":
			var vt [2]float32
			err = parseFloats(args, vt[:], 1)
			obj.TexCoords = append(obj.TexCoords, vt)
		case "vn":
			var vn [3]float32
			err = parseFloats(args, vn[:], 3)
			obj.Normals = append(obj.Normals, vn)
		case "f":
			err = obj.parseFace(args, group())
		case "o", "g":
			split().Name = strings.Join(args, " ")
		case "usemtl":
			split().Material = strings.Join(args, " ")
		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, args...)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}

	// Drop groups that never received faces
	groups := obj.Groups[:0]
	for _, g := range obj.Groups {
		if len(g.Faces) > 0 {
			groups = append(groups, g)
		}
	}
	obj.Groups = groups

	return obj, nil
}

func (o *OBJ) parseFace(args []string, g *OBJGroup) error {
	if len(args) < 3 {
		return fmt.Errorf("face has %d vertices", len(args))
	}
	idx := make([]OBJIndex, len(args))
	for i, a := range args {
		ix, err := o.parseIndex(a)
		if err != nil {
			return err
		}
		idx[i] = ix
	}
	for i := 1; i+1 < len(idx); i++ {
		g.Faces = append(g.Faces, OBJFace{idx[0], idx[i], idx[i+1]})
	}
	return nil
}

// parseIndex parses v, v/vt, v//vn or v/vt/vn. Negative indices count
// back from the last element read so far.
func (o *OBJ) parseIndex(s string) (OBJIndex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return OBJIndex{}, fmt.Errorf("bad face vertex %q", s)
	}
	ix := OBJIndex{V: -1, VT: -1, VN: -1}
	counts := [3]int{len(o.Positions), len(o.TexCoords), len(o.Normals)}
	out := [3]*int{&ix.V, &ix.VT, &ix.VN}

	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return OBJIndex{}, fmt.Errorf("bad face vertex %q", s)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return OBJIndex{}, fmt.Errorf("bad face vertex %q", s)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return OBJIndex{}, fmt.Errorf("zero index in %q", s)
		}
		if n < 0 || n >= counts[i] {
			return OBJIndex{}, fmt.Errorf("index out of range in %q", s)
		}
		*out[i] = n
	}
	return ix, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// MTLMaterial is one newmtl block of a material library.
// Map paths are relative to the library file.
type MTLMaterial struct {
	Name        string
	Ambient     [3]float32
	Diffuse     [3]float32
	Specular    [3]float32
	Shininess   float32
	Dissolve    float32
	DiffuseMap  string
	SpecularMap string
	NormalMap   string
	HeightMap   string
}

// ParseMTL parses a material library. Materials are returned by name.
func ParseMTL(data []byte) (map[string]*MTLMaterial, error) {
	materials := make(map[string]*MTLMaterial)
	var cur *MTLMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		key, args := fields[0], fields[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: line %d: newmtl without name", ErrInvalidMTL, line)
			}
			cur = &MTLMaterial{Name: strings.Join(args, " "), Dissolve: 1}
			materials[cur.Name] = cur
			continue
		}
		if cur == nil {
			continue
		}

		var err error
		switch strings.ToLower(key) {
		case "ka":
			err = parseFloats(args, cur.Ambient[:], 3)
		case "kd":
			err = parseFloats(args, cur.Diffuse[:], 3)
		case "ks":
			err = parseFloats(args, cur.Specular[:], 3)
		case "ns":
			var ns [1]float32
			err = parseFloats(args, ns[:], 1)
			cur.Shininess = ns[0]
		case "d":
			var d [1]float32
			err = parseFloats(args, d[:], 1)
			cur.Dissolve = d[0]
		case "map_kd":
			cur.DiffuseMap = mapPath(args)
		case "map_ks":
			cur.SpecularMap = mapPath(args)
		case "map_bump", "bump", "norm", "map_kn":
			cur.NormalMap = mapPath(args)
		case "disp", "map_disp":
			cur.HeightMap = mapPath(args)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidMTL, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMTL, err)
	}
	return materials, nil
}

// parseFloats fills dst from args, requiring at least want values.
// Extra arguments are ignored.
func parseFloats(args []string, dst []float32, want int) error {
	if len(args) < want {
		return fmt.Errorf("want %d values, got %d", want, len(args))
	}
	for i := 0; i < len(dst) && i < len(args); i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return fmt.Errorf("bad number %q", args[i])
		}
		dst[i] = float32(f)
	}
	return nil
}

// mapPath returns the file name of a texture map statement, skipping
// options such as "-bm 1.0".
func mapPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.ReplaceAll(args[len(args)-1], "\\", "/")
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}
