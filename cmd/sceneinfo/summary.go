package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/assimp-go"
	"github.com/wippyai/assimp-go/ffi"
)

// summary is a flattened, copied description of a scene. It holds no views,
// so it stays valid after the scene is closed.
type summary struct {
	name       string
	flags      ffi.SceneFlags
	nodes      []nodeLine
	meshes     []meshLine
	materials  []string
	animations []animLine
	textures   []string
	cameras    []string
	lights     []string
}

type nodeLine struct {
	name   string
	depth  int
	meshes int
}

type meshLine struct {
	name      string
	vertices  int
	faces     int
	bones     int
	prims     string
	material  string
	hasNormal bool
	uvs       int
}

type animLine struct {
	name     string
	seconds  float64
	channels int
}

func summarize(s *assimp.Scene) summary {
	sum := summary{name: s.Name(), flags: s.Flags()}

	s.Walk(func(n assimp.Node, depth int) bool {
		sum.nodes = append(sum.nodes, nodeLine{name: n.Name(), depth: depth, meshes: n.NumMeshes()})
		return true
	})

	for m := range s.Meshes() {
		ml := meshLine{
			name:      m.Name(),
			vertices:  m.NumVertices(),
			faces:     m.NumFaces(),
			bones:     m.NumBones(),
			prims:     primitiveNames(m.PrimitiveTypes()),
			hasNormal: m.Normals() != nil,
		}
		for ch := range ffi.MaxTextureCoords {
			if m.TextureCoords(ch) != nil {
				ml.uvs++
			}
		}
		if mat, ok := m.Material(); ok {
			ml.material = materialName(mat)
		}
		sum.meshes = append(sum.meshes, ml)
	}

	for mat := range s.Materials() {
		sum.materials = append(sum.materials, materialName(mat))
	}

	for an := range s.Animations() {
		sum.animations = append(sum.animations, animLine{
			name:     an.Name(),
			seconds:  an.Seconds(),
			channels: an.NumChannels(),
		})
	}

	for t := range s.Textures() {
		desc := fmt.Sprintf("%dx%d %s", t.Width(), t.Height(), t.FormatHint())
		if t.Compressed() {
			desc = fmt.Sprintf("%d bytes %s", t.Width(), t.FormatHint())
		}
		if name := t.Filename(); name != "" {
			desc = name + " (" + desc + ")"
		}
		sum.textures = append(sum.textures, desc)
	}

	for c := range s.Cameras() {
		sum.cameras = append(sum.cameras, c.Name())
	}
	for l := range s.Lights() {
		sum.lights = append(sum.lights, fmt.Sprintf("%s (%s)", l.Name(), l.Type()))
	}
	return sum
}

func materialName(m assimp.Material) string {
	name, err := m.Name()
	if err != nil || name == "" {
		return "<unnamed>"
	}
	return name
}

func primitiveNames(p ffi.PrimitiveType) string {
	var names []string
	for _, e := range []struct {
		bit  ffi.PrimitiveType
		name string
	}{
		{ffi.PrimitivePoint, "points"},
		{ffi.PrimitiveLine, "lines"},
		{ffi.PrimitiveTriangle, "triangles"},
		{ffi.PrimitivePolygon, "polygons"},
		{ffi.PrimitiveNGon, "ngons"},
	} {
		if p&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

func (s summary) totals() (vertices, faces int) {
	for _, m := range s.meshes {
		vertices += m.vertices
		faces += m.faces
	}
	return vertices, faces
}

// styles renders headings and emphasis. The zero value renders plain text.
type styles struct {
	heading lipgloss.Style
	name    lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{heading: s, name: s, dim: s, warn: s}
}

func colorStyles() styles {
	return styles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (s summary) write(w io.Writer, st styles) {
	vertices, faces := s.totals()
	fmt.Fprintf(w, "%s %s\n", st.heading.Render("Scene:"), st.name.Render(s.name))
	fmt.Fprintf(w, "Meshes: %d  Vertices: %d  Faces: %d\n", len(s.meshes), vertices, faces)
	fmt.Fprintf(w, "Materials: %d  Animations: %d  Textures: %d  Cameras: %d  Lights: %d\n",
		len(s.materials), len(s.animations), len(s.textures), len(s.cameras), len(s.lights))
	if s.flags&ffi.SceneIncomplete != 0 {
		fmt.Fprintln(w, st.warn.Render("warning: scene is incomplete"))
	}

	fmt.Fprintf(w, "\n%s\n", st.heading.Render("Nodes"))
	for _, n := range s.nodes {
		line := strings.Repeat("  ", n.depth) + st.name.Render(n.name)
		if n.meshes > 0 {
			line += st.dim.Render(fmt.Sprintf(" [%d meshes]", n.meshes))
		}
		fmt.Fprintln(w, line)
	}

	if len(s.meshes) > 0 {
		fmt.Fprintf(w, "\n%s\n", st.heading.Render("Meshes"))
		for i, m := range s.meshes {
			fmt.Fprintf(w, "%3d %s: %d vertices, %d faces (%s)", i, st.name.Render(m.name), m.vertices, m.faces, m.prims)
			if m.hasNormal {
				fmt.Fprint(w, ", normals")
			}
			if m.uvs > 0 {
				fmt.Fprintf(w, ", %d uv sets", m.uvs)
			}
			if m.bones > 0 {
				fmt.Fprintf(w, ", %d bones", m.bones)
			}
			if m.material != "" {
				fmt.Fprintf(w, " %s", st.dim.Render("material "+m.material))
			}
			fmt.Fprintln(w)
		}
	}

	writeList(w, st, "Materials", s.materials)
	if len(s.animations) > 0 {
		fmt.Fprintf(w, "\n%s\n", st.heading.Render("Animations"))
		for _, a := range s.animations {
			fmt.Fprintf(w, "  %s: %.2fs, %d channels\n", st.name.Render(a.name), a.seconds, a.channels)
		}
	}
	writeList(w, st, "Textures", s.textures)
	writeList(w, st, "Cameras", s.cameras)
	writeList(w, st, "Lights", s.lights)
}

func writeList(w io.Writer, st styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", st.heading.Render(title))
	for _, it := range items {
		fmt.Fprintf(w, "  %s\n", it)
	}
}
