package opengl

import (
	"fmt"

	"simpleblocks/core"
)

const windowTitle = "Simple Blocks"

// statusLine summarizes a frame for the window title.
func statusLine(stats core.FrameStats, ordering string, fps float64) string {
	return fmt.Sprintf("%s | %d blocks drawn | slices %s | order %s | %.1f fps",
		windowTitle, stats.Drawn, stats.Orientation, ordering, fps)
}

// updateTitle writes the latest frame stats into the window title.
func (r *VolumeRenderer) updateTitle() {
	r.window.SetTitle(statusLine(r.lastStats, r.frame.Orderer.Name(), r.fps))
}
