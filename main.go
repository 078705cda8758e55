package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"

	"simpleblocks/config"
	"simpleblocks/core"
	"simpleblocks/logging"
	"simpleblocks/rendering/opengl"
	"simpleblocks/server"
	"simpleblocks/volume"
)

func main() {
	runtime.LockOSThread()

	settingsPath := flag.String("config", "", "Settings file (default "+config.DefaultFile+" if present)")
	registerFlags(flag.CommandLine)
	flag.Parse()

	s, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := applyFlags(s, flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := s.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	s.Logging.SetLogger()
	defer logging.Shutdown()

	if err := run(s); err != nil {
		logging.Criticalf("%v", err)
		logging.Shutdown()
		os.Exit(1)
	}
}

// registerFlags defines the flags that override settings file values. Their
// defaults are never used; only flags given on the command line are applied.
func registerFlags(fs *flag.FlagSet) {
	fs.String("f", "", "Raw volume file")
	fs.String("dat", "", "Volume descriptor (.dat) file")
	fs.String("t", "", "Voxel type: uchar, ushort or float")
	fs.Uint64("x", 0, "Volume width in voxels")
	fs.Uint64("y", 0, "Volume height in voxels")
	fs.Uint64("z", 0, "Volume depth in voxels")
	fs.Uint64("nbx", 0, "Blocks along x")
	fs.Uint64("nby", 0, "Blocks along y")
	fs.Uint64("nbz", 0, "Blocks along z")
	fs.Float64("tmin", 0, "Lowest block average drawn")
	fs.Float64("tmax", 0, "Highest block average drawn")
	fs.Int("s", 0, "Slices per block")
	fs.String("order", "", "Block ordering: viewdir or camera")
	fs.String("p", "", "Write block averages to this file")
	fs.String("serve", "", "Serve stats over a websocket on this address")
	fs.Bool("v", false, "Verbose logging")
}

// applyFlags copies explicitly set flags over the loaded settings.
func applyFlags(s *config.Settings, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		g, ok := f.Value.(flag.Getter)
		if !ok || err != nil {
			return
		}
		v := g.Get()
		switch f.Name {
		case "f":
			s.Volume.Path = v.(string)
		case "dat":
			s.Volume.Dat = v.(string)
		case "t":
			s.Volume.Type = v.(string)
		case "x":
			s.Volume.Dims[0] = v.(uint64)
		case "y":
			s.Volume.Dims[1] = v.(uint64)
		case "z":
			s.Volume.Dims[2] = v.(uint64)
		case "nbx":
			s.Blocks.PerAxis[0] = v.(uint64)
		case "nby":
			s.Blocks.PerAxis[1] = v.(uint64)
		case "nbz":
			s.Blocks.PerAxis[2] = v.(uint64)
		case "tmin":
			s.Blocks.TMin = float32(v.(float64))
		case "tmax":
			s.Blocks.TMax = float32(v.(float64))
		case "s":
			s.Render.SlicesPerBlock = v.(int)
		case "order":
			if _, err = core.OrdererByName(v.(string)); err == nil {
				s.Render.Ordering = v.(string)
			}
		case "p":
			s.Blocks.ReportFile = v.(string)
		case "serve":
			s.Server.Addr = v.(string)
		case "v":
			s.Logging.Verbose = v.(bool)
		}
	})
	return err
}

func run(s *config.Settings) error {
	vol, err := volume.Open(volume.Source{
		Path:      s.Volume.Path,
		Dat:       s.Volume.Dat,
		Type:      s.Volume.Type,
		Dims:      s.Volume.Dims,
		Normalize: s.Volume.Normalize,
	})
	if err != nil {
		return err
	}

	grid, err := core.NewBlockGrid(core.Point3(s.Blocks.PerAxis), core.Point3(vol.Dims))
	if err != nil {
		return err
	}
	logging.Infof("Volume %s %s, %d blocks of %s voxels",
		core.Point3(vol.Dims), vol.Type, len(grid.Blocks()), grid.BlockVoxelDims())

	thresholds := core.Thresholds{TMin: s.Blocks.TMin, TMax: s.Blocks.TMax}
	if _, err := core.Filter(grid, vol.Data, thresholds.TMin, thresholds.TMax); err != nil {
		return err
	}
	if s.Blocks.ReportFile != "" {
		if err := writeReport(grid, s.Blocks.ReportFile); err != nil {
			return err
		}
	}

	orderer, err := core.OrdererByName(s.Render.Ordering)
	if err != nil {
		return err
	}

	refilter := make(chan core.Thresholds, 1)
	renderer, err := opengl.NewVolumeRenderer(opengl.Options{
		Width:          s.Render.Width,
		Height:         s.Render.Height,
		SlicesPerBlock: s.Render.SlicesPerBlock,
		FOV:            s.Render.FOV,
		TransferScale:  s.Render.TransferScale,
		Background:     s.Render.Background,
		ShowStats:      s.Render.ShowStats,
		Refilter:       refilter,
	})
	if err != nil {
		return err
	}
	defer renderer.Terminate()
	defer grid.Release()

	renderer.Frame().Orderer = orderer
	renderer.Frame().DrawBoundingBoxes = s.Render.BoundingBoxes
	renderer.SetThresholds(thresholds)
	renderer.SetPickable(grid.Blocks())

	if _, err := opengl.SyncBlockTextures(grid, vol.Data); err != nil {
		return err
	}

	var hub *server.Hub
	if s.Server.Addr != "" {
		hub = server.NewHub(refilter, s.Server.BroadcastEvery)
		hub.SetClassification(server.Snapshot(grid, thresholds))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := hub.ListenAndServe(ctx, s.Server.Addr); err != nil {
				logging.Errorf("Stats server: %v", err)
			}
		}()
	}

	fmt.Println("Controls: drag to rotate, scroll to zoom, right click to pick a block")
	fmt.Println("  B boxes, O ordering, 1-3 pin XY/XZ/YZ slices, 0 unpin, [ ] tmin, - = tmax, R reset camera, F1 stats, ESC quit")

	live := grid.NonEmpty()
	total := len(grid.Blocks())
	for !renderer.ShouldClose() {
		renderer.PollEvents()

		// Reclassify only between frames.
		select {
		case t := <-refilter:
			if err := refilterGrid(grid, vol.Data, t); err != nil {
				logging.Errorf("Refilter %s: %v", t, err)
				break
			}
			thresholds = t
			live = grid.NonEmpty()
			renderer.SetThresholds(t)
			if hub != nil {
				hub.SetClassification(server.Snapshot(grid, t))
			}
		default:
		}

		stats, err := renderer.RenderFrame(live, total)
		if err != nil {
			return err
		}
		if hub != nil {
			hub.FrameDone(stats, renderer.FPS())
		}
	}
	logging.Infof("Exiting with thresholds %s", thresholds)
	return nil
}

func refilterGrid(grid *core.BlockGrid, data []float32, t core.Thresholds) error {
	stats, err := core.Filter(grid, data, t.TMin, t.TMax)
	if err != nil {
		return err
	}
	n, err := opengl.SyncBlockTextures(grid, data)
	if err != nil {
		return err
	}
	logging.Infof("Thresholds %s: %s, %d new textures", t, stats, n)
	return nil
}

func writeReport(grid *core.BlockGrid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := grid.WriteAverages(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Infof("Wrote %s block averages to %s", humanize.Comma(int64(len(grid.Blocks()))), path)
	return nil
}
