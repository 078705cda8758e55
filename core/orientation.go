package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/logging"
)

const (
	// VerticesPerQuad is the number of vertices stored per slice.
	VerticesPerQuad = 4

	// ElementsPerQuad is the number of indices drawn per slice: a four
	// index triangle strip followed by the primitive restart index.
	ElementsPerQuad = 5

	// BucketCount is the number of pre-built slice stacks per block,
	// one per axis and sign.
	BucketCount = 6
)

// SliceAxis names the plane the slices of a stack lie in. The numeric value
// is the stack's position in the shared vertex buffer.
type SliceAxis int

const (
	YZ SliceAxis = iota // slices perpendicular to X
	XZ                  // slices perpendicular to Y
	XY                  // slices perpendicular to Z
)

func (a SliceAxis) String() string {
	switch a {
	case YZ:
		return "YZ"
	case XZ:
		return "XZ"
	case XY:
		return "XY"
	}
	return "unknown"
}

// SliceOrientation is a slice stack plus the half-space of its dominant axis
// the camera sits in.
type SliceOrientation struct {
	Axis     SliceAxis
	Negative bool
}

// Bucket is the index of the stack in the shared vertex buffer.
func (o SliceOrientation) Bucket() int {
	b := int(o.Axis) * 2
	if o.Negative {
		b++
	}
	return b
}

func (o SliceOrientation) String() string {
	if o.Negative {
		return "-" + o.Axis.String()
	}
	return "+" + o.Axis.String()
}

// SelectOrientation picks the slice stack most nearly facing viewDir: the
// axis of the largest absolute component. Ties go to the earlier axis in
// x, y, z order.
func SelectOrientation(viewDir mgl32.Vec3) SliceOrientation {
	o := SliceOrientation{Axis: YZ, Negative: viewDir[0] < 0}
	longest := math32.Abs(viewDir[0])

	if y := math32.Abs(viewDir[1]); y > longest {
		o = SliceOrientation{Axis: XZ, Negative: viewDir[1] < 0}
		longest = y
	}
	if z := math32.Abs(viewDir[2]); z > longest {
		o = SliceOrientation{Axis: XY, Negative: viewDir[2] < 0}
	}
	return o
}

// BaseVertex is the offset of o's stack in the shared vertex buffer.
func BaseVertex(o SliceOrientation, slicesPerBlock int) int32 {
	return int32(o.Bucket() * VerticesPerQuad * slicesPerBlock)
}

// OrientationSelector selects the slice stack for each frame and logs when
// the selected stack changes.
type OrientationSelector struct {
	SlicesPerBlock int

	last    SliceOrientation
	hasLast bool

	pinned    SliceAxis
	hasPinned bool
}

func NewOrientationSelector(slicesPerBlock int) *OrientationSelector {
	return &OrientationSelector{SlicesPerBlock: slicesPerBlock}
}

// Pin forces later selections onto axis. The stack direction still follows
// the sign of viewDir along the axis's normal.
func (s *OrientationSelector) Pin(axis SliceAxis) {
	s.pinned, s.hasPinned = axis, true
}

// Unpin returns to choosing the axis from the view direction.
func (s *OrientationSelector) Unpin() {
	s.hasPinned = false
}

// Pinned returns the forced axis, if any.
func (s *OrientationSelector) Pinned() (SliceAxis, bool) {
	return s.pinned, s.hasPinned
}

// Select returns the orientation for viewDir and its base vertex.
func (s *OrientationSelector) Select(viewDir mgl32.Vec3) (SliceOrientation, int32) {
	o := SelectOrientation(viewDir)
	if s.hasPinned {
		// YZ, XZ and XY are normal to x, y and z in that order.
		o = SliceOrientation{Axis: s.pinned, Negative: viewDir[int(s.pinned)] < 0}
	}
	if !s.hasLast || o.Axis != s.last.Axis {
		logging.Infof("Switched slice set: %s", o)
	}
	s.last, s.hasLast = o, true
	return o, BaseVertex(o, s.SlicesPerBlock)
}

// Last returns the most recent selection, if any.
func (s *OrientationSelector) Last() (SliceOrientation, bool) {
	return s.last, s.hasLast
}
