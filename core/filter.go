package core

import (
	"fmt"

	"simpleblocks/logging"
)

// Scalar lists the voxel element types a volume may be stored as.
type Scalar interface {
	~uint8 | ~uint16 | ~float32
}

// FilterStats summarizes one classification pass.
type FilterStats struct {
	Empty int
	Total int
}

func (s FilterStats) NonEmpty() int { return s.Total - s.Empty }

func (s FilterStats) String() string {
	return fmt.Sprintf("%d/%d blocks removed", s.Empty, s.Total)
}

// Thresholds is the [TMin, TMax] window a block average must fall in for
// the block to be drawn.
type Thresholds struct {
	TMin float32 `json:"tmin"`
	TMax float32 `json:"tmax"`
}

// Clamp limits both ends of the window to [0, 1].
func (t Thresholds) Clamp() Thresholds {
	clamp := func(v float32) float32 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Thresholds{TMin: clamp(t.TMin), TMax: clamp(t.TMax)}
}

func (t Thresholds) String() string {
	return fmt.Sprintf("[%g, %g]", t.TMin, t.TMax)
}

// Filter computes every block's average over data, a flat x-fastest buffer
// of the grid's volume, and marks a block empty iff its average lies outside
// [tmin, tmax]. Averages equal to tmin or tmax count as non-empty. An
// inverted window is not corrected.
//
// A buffer shorter than the volume fails the whole pass without touching
// any block.
func Filter[T Scalar](g *BlockGrid, data []T, tmin, tmax float32) (FilterStats, error) {
	vol := g.volumeDims
	if uint64(len(data)) < vol.Prod() {
		return FilterStats{}, fmt.Errorf("%w: have %d voxels, volume %s needs %d",
			ErrDataShape, len(data), vol, vol.Prod())
	}

	bsz := g.BlockVoxelDims()
	points := float64(bsz.Prod())
	w, h := vol[0], vol[0]*vol[1]

	stats := FilterStats{Total: len(g.blocks)}
	for _, b := range g.blocks {
		start := g.VoxelStart(b)
		var sum float64
		for k := start[2]; k < start[2]+bsz[2]; k++ {
			for j := start[1]; j < start[1]+bsz[1]; j++ {
				row := data[start[0]+j*w+k*h : start[0]+bsz[0]+j*w+k*h]
				for _, v := range row {
					sum += float64(v)
				}
			}
		}

		b.average = float32(sum / points)
		b.empty = b.average < tmin || b.average > tmax
		if b.empty {
			stats.Empty++
		}
	}

	logging.Infof("%s (thresholds [%g, %g]).", stats, tmin, tmax)
	return stats, nil
}

// ExtractBlock copies the voxels of b out of data into a new x-fastest
// buffer sized to one block.
func ExtractBlock[T Scalar](g *BlockGrid, b *Block, data []T) ([]T, error) {
	vol := g.volumeDims
	if uint64(len(data)) < vol.Prod() {
		return nil, fmt.Errorf("%w: have %d voxels, volume %s needs %d",
			ErrDataShape, len(data), vol, vol.Prod())
	}
	bsz := g.BlockVoxelDims()
	start := g.VoxelStart(b)
	w, h := vol[0], vol[0]*vol[1]

	out := make([]T, 0, bsz.Prod())
	for k := start[2]; k < start[2]+bsz[2]; k++ {
		for j := start[1]; j < start[1]+bsz[1]; j++ {
			off := start[0] + j*w + k*h
			out = append(out, data[off:off+bsz[0]]...)
		}
	}
	return out, nil
}
