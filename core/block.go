package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Point3 is an unsigned 3d coordinate or extent: a block index, a count of
// blocks per axis, or voxel dimensions.
type Point3 [3]uint64

// Prod returns x*y*z.
func (p Point3) Prod() uint64 {
	return p[0] * p[1] * p[2]
}

func (p Point3) Mul(q Point3) Point3 {
	return Point3{p[0] * q[0], p[1] * q[1], p[2] * q[2]}
}

func (p Point3) Add(q Point3) Point3 {
	return Point3{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Div divides component-wise. The caller guarantees q has no zero component.
func (p Point3) Div(q Point3) Point3 {
	return Point3{p[0] / q[0], p[1] / q[1], p[2] / q[2]}
}

func (p Point3) Mod(q Point3) Point3 {
	return Point3{p[0] % q[0], p[1] % q[1], p[2] % q[2]}
}

func (p Point3) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
}

func (p Point3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Transform places a block in world space: a scale to the block's extent
// followed by a translation to its center.
type Transform struct {
	Scale  mgl32.Vec3
	Origin mgl32.Vec3
}

// Matrix composes the world matrix, translate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Origin[0], t.Origin[1], t.Origin[2]).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Texture is a GPU resource holding one block's voxels. A Block owns its
// texture and releases it when replaced or when the block is released.
type Texture interface {
	Valid() bool
	Release()
}

// Block is one cell of a BlockGrid, the unit of culling and rendering.
type Block struct {
	ijk       Point3
	transform Transform
	average   float32
	empty     bool
	tex       Texture
}

func newBlock(ijk Point3, dims, origin mgl32.Vec3) *Block {
	return &Block{
		ijk:       ijk,
		transform: Transform{Scale: dims, Origin: origin},
	}
}

// IJK returns the block's coordinate within the grid.
func (b *Block) IJK() Point3 { return b.ijk }

// Origin is the block center in world coordinates.
func (b *Block) Origin() mgl32.Vec3 { return b.transform.Origin }

// Scale is the block extent in normalized volume space.
func (b *Block) Scale() mgl32.Vec3 { return b.transform.Scale }

func (b *Block) Transform() Transform { return b.transform }

func (b *Block) WorldMatrix() mgl32.Mat4 { return b.transform.Matrix() }

// Average is the mean voxel value computed by the last Filter pass.
func (b *Block) Average() float32 { return b.average }

// Empty reports whether the last Filter pass marked the block empty.
func (b *Block) Empty() bool { return b.empty }

func (b *Block) Texture() Texture { return b.tex }

// SetTexture hands ownership of tex to the block, releasing any texture it
// held before.
func (b *Block) SetTexture(tex Texture) {
	if b.tex != nil && b.tex != tex {
		b.tex.Release()
	}
	b.tex = tex
}

// Release frees the block's texture.
func (b *Block) Release() {
	if b.tex != nil {
		b.tex.Release()
		b.tex = nil
	}
}

func (b *Block) String() string {
	o := b.transform.Origin
	return fmt.Sprintf("ijk: %s origin: %.3f,%.3f,%.3f avg: %.4f empty: %t",
		b.ijk, o[0], o[1], o[2], b.average, b.empty)
}
