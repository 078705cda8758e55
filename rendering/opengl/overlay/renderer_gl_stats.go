package overlay

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/core"
	"simpleblocks/rendering/opengl/shaders"
)

// Colored rectangles in screen pixels, origin top left.

const statsVertexShader = `
#version 410 core

layout (location = 0) in vec2 position;
layout (location = 1) in vec4 color;

out vec4 fragColor;

uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(position, 0.0, 1.0);
    fragColor = color;
}
`

const statsFragmentShader = `
#version 410 core

in vec4 fragColor;
out vec4 outColor;

void main() {
    outColor = fragColor;
}
`

const floatsPerVertex = 6

// Panel layout in pixels.
const (
	panelX      = 10
	panelY      = 10
	panelW      = 280
	panelH      = 90
	barX        = panelX + 10
	barW        = panelW - 50
	barH        = 15
	swatchSize  = 20
	maxBarFPS   = 120
	barSpacing  = 25
	swatchRight = panelX + panelW - 10
)

var (
	panelColor    = mgl32.Vec4{0, 0, 0, 0.6}
	troughColor   = mgl32.Vec4{0.3, 0.3, 0.3, 0.8}
	occupiedColor = mgl32.Vec4{0.4, 0.5, 1.0, 1.0}
	drawnColor    = mgl32.Vec4{0.0, 1.0, 0.0, 1.0}
	fpsColor      = mgl32.Vec4{1.0, 1.0, 0.0, 1.0}
)

// Stats is what the HUD shows for one frame.
type Stats struct {
	Total       int
	NonEmpty    int
	Drawn       int
	Orientation core.SliceOrientation
	FPS         float64
}

// StatsOverlay renders frame stats as bars
type StatsOverlay struct {
	program *shaders.Program
	vao     uint32
	vbo     uint32

	width  float32
	height float32

	stats Stats
}

// NewStatsOverlay creates a stats overlay renderer
func NewStatsOverlay(width, height int) (*StatsOverlay, error) {
	program, err := shaders.NewProgram("stats", statsVertexShader, statsFragmentShader, "projection")
	if err != nil {
		return nil, fmt.Errorf("failed to build stats overlay program: %w", err)
	}
	so := &StatsOverlay{
		program: program,
		width:   float32(width),
		height:  float32(height),
	}

	gl.GenVertexArrays(1, &so.vao)
	gl.GenBuffers(1, &so.vbo)

	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)

	// Each vertex has 6 floats: 2 for position, 4 for color
	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	return so, nil
}

// UpdateStats sets the values drawn by the next Render.
func (so *StatsOverlay) UpdateStats(s Stats) {
	so.stats = s
}

// Render draws the stats overlay
func (so *StatsOverlay) Render() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	so.program.Use()
	so.program.SetMat4("projection", mgl32.Ortho2D(0, so.width, so.height, 0))

	vertices := hudVertices(so.stats)
	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/floatsPerVertex))

	gl.Enable(gl.DEPTH_TEST)
	gl.BindVertexArray(0)
}

// hudVertices lays out the panel: occupied fraction of the grid, drawn
// fraction of the occupied blocks, frame rate, and a swatch for the current
// slice orientation.
func hudVertices(s Stats) []float32 {
	var v []float32
	v = appendRect(v, panelX, panelY, panelW, panelH, panelColor)

	y := float32(panelY + 10)
	v = appendBar(v, y, fraction(s.NonEmpty, s.Total), occupiedColor)
	y += barSpacing
	v = appendBar(v, y, fraction(s.Drawn, s.NonEmpty), drawnColor)
	y += barSpacing
	fps := float32(s.FPS / maxBarFPS)
	if fps > 1 {
		fps = 1
	}
	v = appendBar(v, y, fps, fpsColor)

	v = appendRect(v, swatchRight-swatchSize, panelY+10, swatchSize, swatchSize, orientationColor(s.Orientation))
	return v
}

func fraction(n, d int) float32 {
	if d <= 0 {
		return 0
	}
	return float32(n) / float32(d)
}

func appendBar(v []float32, y, frac float32, color mgl32.Vec4) []float32 {
	v = appendRect(v, barX, y, barW, barH, troughColor)
	if frac > 0 {
		v = appendRect(v, barX, y, barW*frac, barH, color)
	}
	return v
}

// orientationColor is red, green or blue for slices perpendicular to x, y
// or z, at half intensity for a negative stack.
func orientationColor(o core.SliceOrientation) mgl32.Vec4 {
	var c mgl32.Vec4
	switch o.Axis {
	case core.YZ:
		c = mgl32.Vec4{1, 0, 0, 1}
	case core.XZ:
		c = mgl32.Vec4{0, 1, 0, 1}
	default:
		c = mgl32.Vec4{0, 0, 1, 1}
	}
	if o.Negative {
		c = mgl32.Vec4{c[0] * 0.5, c[1] * 0.5, c[2] * 0.5, 1}
	}
	return c
}

func appendRect(v []float32, x, y, w, h float32, c mgl32.Vec4) []float32 {
	return append(v,
		x, y, c[0], c[1], c[2], c[3],
		x+w, y, c[0], c[1], c[2], c[3],
		x, y+h, c[0], c[1], c[2], c[3],
		x+w, y, c[0], c[1], c[2], c[3],
		x+w, y+h, c[0], c[1], c[2], c[3],
		x, y+h, c[0], c[1], c[2], c[3],
	)
}

// UpdateSize updates viewport size
func (so *StatsOverlay) UpdateSize(width, height int) {
	so.width = float32(width)
	so.height = float32(height)
}

// Release cleans up resources
func (so *StatsOverlay) Release() {
	so.program.Delete()
	if so.vao != 0 {
		gl.DeleteVertexArrays(1, &so.vao)
	}
	if so.vbo != 0 {
		gl.DeleteBuffers(1, &so.vbo)
	}
}
