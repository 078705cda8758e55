package shaders

import (
	"errors"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/logging"
)

var (
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("program link failed")
)

// Program is a linked shader program with cached uniform locations.
type Program struct {
	ID   uint32
	name string

	uniforms map[string]int32
}

// NewProgram compiles and links a program and looks up the given uniforms.
func NewProgram(name, vertSource, fragSource string, uniforms ...string) (*Program, error) {
	id, err := buildProgram(vertSource, fragSource)
	if err != nil {
		return nil, err
	}
	p := &Program{ID: id, name: name, uniforms: make(map[string]int32, len(uniforms))}
	for _, u := range uniforms {
		p.lookup(u)
	}
	logging.Debugf("Linked %s program %d", name, id)
	return p, nil
}

// lookup caches the location of a uniform. A uniform the linker optimized out
// or a misspelled name yields -1, which GL silently ignores on upload, so it
// is logged here once.
func (p *Program) lookup(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	if loc == -1 {
		logging.Errorf("%s program: uniform %q not found", p.name, name)
	}
	p.uniforms[name] = loc
	return loc
}

func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.lookup(name), 1, false, &m[0])
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.lookup(name), v[0], v[1], v[2], v[3])
}

func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.lookup(name), v)
}

func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.lookup(name), v)
}

func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}
