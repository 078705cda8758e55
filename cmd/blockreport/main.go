// Command blockreport classifies a volume's blocks without opening a window
// and writes the per-block averages as text or as a binary block index.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"simpleblocks/config"
	"simpleblocks/core"
	"simpleblocks/logging"
	"simpleblocks/volume"
)

func main() {
	settingsPath := flag.String("config", "", "Settings file")
	outPath := flag.String("o", "", "Output file (default stdout)")
	format := flag.String("format", "ascii", "Output format: ascii or binary")
	printBlocks := flag.Bool("print", false, "Print every block to stderr")
	bins := flag.Int("bins", 10, "Histogram bins for block averages")
	registerFlags(flag.CommandLine)
	flag.Parse()

	if *format != "ascii" && *format != "binary" {
		fmt.Fprintf(os.Stderr, "unknown output format %q\n", *format)
		os.Exit(2)
	}
	s, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	applyFlags(s, flag.CommandLine)

	s.Logging.SetLogger()
	defer logging.Shutdown()

	if err := run(s, *outPath, *format, *printBlocks, *bins); err != nil {
		logging.Criticalf("%v", err)
		logging.Shutdown()
		os.Exit(1)
	}
}

// registerFlags defines the flags that override settings file values. Only
// flags given on the command line are applied, so any threshold, negative
// ones included, can be passed.
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
	fs.Float64("tmin", 0, "Lowest block average kept")
	fs.Float64("tmax", 0, "Highest block average kept")
	fs.Bool("raw", false, "Keep voxel values as stored instead of normalizing")
}

// applyFlags copies explicitly set flags over the loaded settings.
func applyFlags(s *config.Settings, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		g, ok := f.Value.(flag.Getter)
		if !ok {
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
		case "raw":
			s.Volume.Normalize = !v.(bool)
		}
	})
}

func run(s *config.Settings, outPath, format string, printBlocks bool, bins int) error {
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
	t := core.Thresholds{TMin: s.Blocks.TMin, TMax: s.Blocks.TMax}
	if _, err := core.Filter(grid, vol.Data, t.TMin, t.TMax); err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if format == "binary" {
		err = grid.WriteIndex(out, t)
	} else {
		err = grid.WriteAverages(out)
	}
	if err != nil {
		return fmt.Errorf("writing %s output: %w", format, err)
	}

	if printBlocks {
		for _, b := range grid.Blocks() {
			fmt.Fprintln(os.Stderr, b)
		}
	}

	sum := summarize(grid)
	fmt.Fprintf(os.Stderr, "Thresholds %s: %s\n", t, sum)
	fmt.Fprint(os.Stderr, formatHistogram(histogram(grid, bins)))
	return nil
}

// summary is what filtering saved.
type summary struct {
	Total, NonEmpty int
	VoxelsKept      uint64
	VoxelsSkipped   uint64
}

func summarize(g *core.BlockGrid) summary {
	per := g.BlockVoxelDims().Prod()
	s := summary{Total: len(g.Blocks())}
	for _, b := range g.Blocks() {
		if b.Empty() {
			s.VoxelsSkipped += per
		} else {
			s.NonEmpty++
			s.VoxelsKept += per
		}
	}
	return s
}

func (s summary) String() string {
	return fmt.Sprintf("%d of %d blocks kept, %s voxels skipped (%s of float textures)",
		s.NonEmpty, s.Total,
		humanize.Comma(int64(s.VoxelsSkipped)),
		humanize.Bytes(s.VoxelsSkipped*4))
}

// bucket is one histogram bin of block averages over [Lo, Hi).
type bucket struct {
	Lo, Hi float32
	Count  int
}

// histogram bins block averages between the smallest and largest average.
// The largest average falls in the last bin.
func histogram(g *core.BlockGrid, bins int) []bucket {
	blocks := g.Blocks()
	if bins < 1 || len(blocks) == 0 {
		return nil
	}
	lo, hi := blocks[0].Average(), blocks[0].Average()
	for _, b := range blocks[1:] {
		if a := b.Average(); a < lo {
			lo = a
		} else if a > hi {
			hi = a
		}
	}
	width := (hi - lo) / float32(bins)
	out := make([]bucket, bins)
	for i := range out {
		out[i].Lo = lo + width*float32(i)
		out[i].Hi = lo + width*float32(i+1)
	}
	for _, b := range blocks {
		i := bins - 1
		if width > 0 {
			i = int((b.Average() - lo) / width)
			if i >= bins {
				i = bins - 1
			}
		}
		out[i].Count++
	}
	return out
}

func formatHistogram(h []bucket) string {
	var sb strings.Builder
	for _, b := range h {
		fmt.Fprintf(&sb, "[%8.4f, %8.4f) %6d %s\n", b.Lo, b.Hi, b.Count, strings.Repeat("#", min(b.Count, 60)))
	}
	return sb.String()
}
