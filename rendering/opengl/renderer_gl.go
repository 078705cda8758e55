package opengl

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/core"
	"simpleblocks/logging"
	"simpleblocks/rendering/opengl/overlay"
	"simpleblocks/rendering/opengl/shaders"
)

var errForeignTexture = errors.New("texture was not created by this renderer")

const (
	defaultCameraDistance = 2.5
	minCameraDistance     = 0.5
	maxCameraDistance     = 20
	thresholdStep         = 0.05
	mouseSensitivity      = 0.008
)

var boxColor = mgl32.Vec4{0.9, 0.9, 0.9, 1}

// Options configures a VolumeRenderer.
type Options struct {
	Width, Height  int
	SlicesPerBlock int
	FOV            float32 // degrees
	TransferScale  float32
	Background     [3]float32
	ShowStats      bool

	// Refilter receives threshold changes made from the keyboard. Sends
	// never block; a request made while one is pending is dropped.
	Refilter chan<- core.Thresholds
}

// VolumeRenderer draws a block grid as view aligned slice stacks in a glfw
// window.
type VolumeRenderer struct {
	window *glfw.Window

	volumeProgram    *shaders.Program
	wireframeProgram *shaders.Program

	slices   *meshBuffers
	box      *meshBuffers
	transfer *TransferFunction

	frame         *core.FrameRenderer
	transferScale float32

	// Camera orbits the origin.
	viewMatrix      mgl32.Mat4
	projMatrix      mgl32.Mat4
	cameraPos       mgl32.Vec3
	cameraDistance  float32
	cameraRotationX float32
	cameraRotationY float32
	fov             float32
	viewDirty       bool

	width, height int

	// Mouse state for camera control
	MouseDown  bool
	lastMouseX float64
	lastMouseY float64

	thresholds core.Thresholds
	refilter   chan<- core.Thresholds

	pickable []*core.Block

	statsOverlay *overlay.StatsOverlay
	showStats    bool

	frames    int
	lastTick  time.Time
	fps       float64
	lastStats core.FrameStats
}

// NewVolumeRenderer opens the window, creates the GL context and builds the
// shared slice geometry.
func NewVolumeRenderer(opts Options) (*VolumeRenderer, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logging.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &VolumeRenderer{
		window:         window,
		width:          opts.Width,
		height:         opts.Height,
		frame:          core.NewFrameRenderer(opts.SlicesPerBlock, nil),
		transferScale:  opts.TransferScale,
		cameraDistance: defaultCameraDistance,
		fov:            opts.FOV,
		viewDirty:      true,
		refilter:       opts.Refilter,
		showStats:      opts.ShowStats,
		lastTick:       time.Now(),
	}

	if err := r.init(opts); err != nil {
		r.Terminate()
		return nil, err
	}

	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(key, scancode, action, mods)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.onScroll(xoff, yoff)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		r.onMouseButton(button, action, mods)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.onMouseMove(xpos, ypos)
	})

	return r, nil
}

func (r *VolumeRenderer) init(opts Options) error {
	bg := opts.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 0)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PRIMITIVE_RESTART)
	gl.PrimitiveRestartIndex(uint32(RestartIndex))

	var err error
	if r.volumeProgram, err = shaders.CompileVolumeProgram(); err != nil {
		return fmt.Errorf("failed to build volume program: %w", err)
	}
	if r.wireframeProgram, err = shaders.CompileWireframeProgram(); err != nil {
		return fmt.Errorf("failed to build wireframe program: %w", err)
	}

	r.slices = newMeshBuffers(SliceVertices(opts.SlicesPerBlock), SliceElements(opts.SlicesPerBlock))
	r.box = newMeshBuffers(BoxVertices(), BoxElements())
	logging.Debugf("Slice geometry: %d slices per block, %d elements per draw",
		opts.SlicesPerBlock, r.slices.elements)

	if r.transfer, err = newTransferFunction(GrayRamp(256)); err != nil {
		return err
	}

	r.volumeProgram.Use()
	r.volumeProgram.SetInt(shaders.UniformVolume, shaders.BlockTextureUnit)
	r.volumeProgram.SetInt(shaders.UniformTransfer, shaders.TransferTextureUnit)
	r.volumeProgram.SetFloat(shaders.UniformTransferScale, r.transferScale)

	if opts.ShowStats {
		so, err := overlay.NewStatsOverlay(opts.Width, opts.Height)
		if err != nil {
			logging.Errorf("Failed to create stats overlay: %v", err)
		} else {
			r.statsOverlay = so
		}
	}
	return nil
}

// Frame returns the frame renderer, for toggling ordering and bounding boxes.
func (r *VolumeRenderer) Frame() *core.FrameRenderer {
	return r.frame
}

// SetThresholds records the window currently applied to the grid, which the
// threshold keys step from.
func (r *VolumeRenderer) SetThresholds(t core.Thresholds) {
	r.thresholds = t
}

// GeometryBound reports whether the slice and box buffers exist.
func (r *VolumeRenderer) GeometryBound() bool {
	return r.slices != nil && r.slices.vao != 0 && r.box != nil && r.box.vao != 0
}

func (r *VolumeRenderer) DrawBoundingBox(mvp mgl32.Mat4) {
	r.wireframeProgram.Use()
	r.wireframeProgram.SetMat4(shaders.UniformMVP, mvp)
	r.wireframeProgram.SetVec4(shaders.UniformColor, boxColor)
	r.box.bind()
	gl.DrawElements(gl.LINE_LOOP, 4, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
	gl.DrawElements(gl.LINE_LOOP, 4, gl.UNSIGNED_SHORT, gl.PtrOffset(4*2))
	gl.DrawElements(gl.LINES, 8, gl.UNSIGNED_SHORT, gl.PtrOffset(8*2))
}

func (r *VolumeRenderer) UseVolumeProgram() {
	r.volumeProgram.Use()
	r.volumeProgram.SetFloat(shaders.UniformTransferScale, r.transferScale)
	r.transfer.bind(shaders.TransferTextureUnit)
	r.slices.bind()
}

func (r *VolumeRenderer) BindBlockTexture(tex core.Texture) error {
	bt, ok := tex.(*BlockTexture)
	if !ok {
		return errForeignTexture
	}
	return bt.bind(shaders.BlockTextureUnit)
}

func (r *VolumeRenderer) SetModelViewProjection(mvp mgl32.Mat4) {
	r.volumeProgram.SetMat4(shaders.UniformMVP, mvp)
}

func (r *VolumeRenderer) DrawSlices(baseVertex, elementCount int32) {
	gl.DrawElementsBaseVertex(gl.TRIANGLE_STRIP, elementCount, gl.UNSIGNED_SHORT, gl.PtrOffset(0), baseVertex)
}

// FrameContext recomputes the camera matrices if they changed and returns
// this frame's camera state.
func (r *VolumeRenderer) FrameContext() core.FrameContext {
	if r.viewDirty {
		r.updateMatrices()
	}
	return core.FrameContext{
		View:       r.viewMatrix,
		Projection: r.projMatrix,
		CameraPos:  r.cameraPos,
		ViewDir:    r.viewMatrix.Col(2).Vec3(),
	}
}

// RenderFrame clears the screen, draws the live blocks and the HUD, and
// swaps buffers.
func (r *VolumeRenderer) RenderFrame(live []*core.Block, total int) (core.FrameStats, error) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	stats, err := r.frame.Render(r, live, r.FrameContext())
	if err != nil {
		return stats, err
	}
	r.lastStats = stats
	r.tick()

	if r.showStats && r.statsOverlay != nil {
		r.statsOverlay.UpdateStats(overlay.Stats{
			Total:       total,
			NonEmpty:    len(live) - stats.SkippedEmpty,
			Drawn:       stats.Drawn,
			Orientation: stats.Orientation,
			FPS:         r.fps,
		})
		r.statsOverlay.Render()
	}

	r.window.SwapBuffers()
	return stats, nil
}

func (r *VolumeRenderer) tick() {
	r.frames++
	if elapsed := time.Since(r.lastTick); elapsed >= time.Second {
		r.fps = float64(r.frames) / elapsed.Seconds()
		r.frames = 0
		r.lastTick = time.Now()
		r.updateTitle()
	}
}

// FPS is the frame rate measured over the last second.
func (r *VolumeRenderer) FPS() float64 {
	return r.fps
}

func (r *VolumeRenderer) updateMatrices() {
	rx := float64(r.cameraRotationX)
	ry := float64(r.cameraRotationY)
	d := r.cameraDistance
	r.cameraPos = mgl32.Vec3{
		d * float32(math.Cos(ry)*math.Sin(rx)),
		d * float32(math.Sin(ry)),
		d * float32(math.Cos(ry)*math.Cos(rx)),
	}
	r.viewMatrix = mgl32.LookAtV(r.cameraPos, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	aspect := float32(r.width) / float32(r.height)
	r.projMatrix = mgl32.Perspective(mgl32.DegToRad(r.fov), aspect, 0.1, 100)
	r.viewDirty = false
}

func (r *VolumeRenderer) resetCamera() {
	r.cameraDistance = defaultCameraDistance
	r.cameraRotationX = 0
	r.cameraRotationY = 0
	r.viewDirty = true
}

func (r *VolumeRenderer) onResize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	if r.statsOverlay != nil {
		r.statsOverlay.UpdateSize(width, height)
	}
	r.viewDirty = true
}

func (r *VolumeRenderer) onKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyF1:
		r.showStats = !r.showStats
	case glfw.KeyB:
		r.frame.DrawBoundingBoxes = !r.frame.DrawBoundingBoxes
		logging.Infof("Bounding boxes: %t", r.frame.DrawBoundingBoxes)
	case glfw.KeyO:
		if _, ok := r.frame.Orderer.(core.CameraDistance); ok {
			r.frame.Orderer = core.ViewDirDistance{}
		} else {
			r.frame.Orderer = core.CameraDistance{}
		}
		logging.Infof("Block ordering: %s", r.frame.Orderer.Name())
	case glfw.KeyR:
		r.resetCamera()
	case glfw.Key0:
		r.frame.Selector.Unpin()
		logging.Infof("Slice set follows the view")
	case glfw.Key1:
		r.pinSliceAxis(core.XY)
	case glfw.Key2:
		r.pinSliceAxis(core.XZ)
	case glfw.Key3:
		r.pinSliceAxis(core.YZ)
	case glfw.KeyLeftBracket:
		r.requestThresholds(core.Thresholds{TMin: r.thresholds.TMin - thresholdStep, TMax: r.thresholds.TMax})
	case glfw.KeyRightBracket:
		r.requestThresholds(core.Thresholds{TMin: r.thresholds.TMin + thresholdStep, TMax: r.thresholds.TMax})
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		r.requestThresholds(core.Thresholds{TMin: r.thresholds.TMin, TMax: r.thresholds.TMax - thresholdStep})
	case glfw.KeyEqual, glfw.KeyKPAdd:
		r.requestThresholds(core.Thresholds{TMin: r.thresholds.TMin, TMax: r.thresholds.TMax + thresholdStep})
	}
}

func (r *VolumeRenderer) pinSliceAxis(axis core.SliceAxis) {
	r.frame.Selector.Pin(axis)
	logging.Infof("Slice set pinned to %s", axis)
}

// requestThresholds queues a refilter. The grid is only reclassified between
// frames, by whoever drains the channel, and the applied window comes back
// through SetThresholds.
func (r *VolumeRenderer) requestThresholds(t core.Thresholds) {
	if r.refilter == nil {
		return
	}
	t = t.Clamp()
	select {
	case r.refilter <- t:
		logging.Debugf("Requested thresholds %s", t)
	default:
		logging.Debugf("Refilter pending, dropped request %s", t)
	}
}

func (r *VolumeRenderer) onScroll(xoff, yoff float64) {
	d := r.cameraDistance * float32(1.0-yoff*0.1)
	r.cameraDistance = mgl32.Clamp(d, minCameraDistance, maxCameraDistance)
	r.viewDirty = true
}

func (r *VolumeRenderer) onMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button == glfw.MouseButtonRight && action == glfw.Press {
		r.HandleMouseClick(r.window.GetCursorPos())
		return
	}
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		r.MouseDown = true
		r.lastMouseX, r.lastMouseY = r.window.GetCursorPos()
	case glfw.Release:
		r.MouseDown = false
	}
}

func (r *VolumeRenderer) onMouseMove(xpos, ypos float64) {
	if !r.MouseDown {
		return
	}
	dx := float32(xpos - r.lastMouseX)
	dy := float32(ypos - r.lastMouseY)

	r.cameraRotationX -= dx * mouseSensitivity
	r.cameraRotationY = mgl32.Clamp(r.cameraRotationY+dy*mouseSensitivity, -1.5, 1.5)

	r.lastMouseX = xpos
	r.lastMouseY = ypos
	r.viewDirty = true
}

func (r *VolumeRenderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

func (r *VolumeRenderer) PollEvents() {
	glfw.PollEvents()
}

// Terminate releases GL resources and closes the window. Block textures
// belong to the grid and must be released before this.
func (r *VolumeRenderer) Terminate() {
	if r.statsOverlay != nil {
		r.statsOverlay.Release()
	}
	if r.transfer != nil {
		r.transfer.release()
	}
	if r.slices != nil {
		r.slices.delete()
	}
	if r.box != nil {
		r.box.delete()
	}
	if r.volumeProgram != nil {
		r.volumeProgram.Delete()
	}
	if r.wireframeProgram != nil {
		r.wireframeProgram.Delete()
	}
	r.window.Destroy()
	glfw.Terminate()
}
