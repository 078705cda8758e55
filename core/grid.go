package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/logging"
)

var (
	// ErrConfiguration is returned when the grid cannot be built from the
	// requested block counts and volume dimensions.
	ErrConfiguration = errors.New("invalid block configuration")

	// ErrDataShape is returned when a voxel buffer does not match the grid.
	ErrDataShape = errors.New("voxel buffer does not match volume dimensions")
)

// BlockGrid owns the blocks of one volume, stored in construction order
// (z outer, y middle, x inner).
type BlockGrid struct {
	blocks        []*Block
	blocksPerAxis Point3
	volumeDims    Point3
}

// NewBlockGrid subdivides a volume of volumeDims voxels into blocksPerAxis
// blocks. The whole volume occupies a unit cube centered at the origin.
// Every volume dimension must be a positive multiple of the block count on
// that axis; otherwise no grid is built.
func NewBlockGrid(blocksPerAxis, volumeDims Point3) (*BlockGrid, error) {
	for i := 0; i < 3; i++ {
		if blocksPerAxis[i] == 0 || volumeDims[i] == 0 {
			return nil, fmt.Errorf("%w: blocks %s, volume %s: dimensions must be positive",
				ErrConfiguration, blocksPerAxis, volumeDims)
		}
	}
	if rem := volumeDims.Mod(blocksPerAxis); rem != (Point3{}) {
		return nil, fmt.Errorf("%w: volume %s is not divisible into %s blocks (remainder %s)",
			ErrConfiguration, volumeDims, blocksPerAxis, rem)
	}

	g := &BlockGrid{
		blocks:        make([]*Block, 0, blocksPerAxis.Prod()),
		blocksPerAxis: blocksPerAxis,
		volumeDims:    volumeDims,
	}

	blkDims := mgl32.Vec3{
		1 / float32(blocksPerAxis[0]),
		1 / float32(blocksPerAxis[1]),
		1 / float32(blocksPerAxis[2]),
	}
	logging.Debugf("Starting block init: blocks %dx%dx%d, volume %dx%dx%d, block dims %.2f,%.2f,%.2f",
		blocksPerAxis[0], blocksPerAxis[1], blocksPerAxis[2],
		volumeDims[0], volumeDims[1], volumeDims[2],
		blkDims[0], blkDims[1], blkDims[2])

	for bz := uint64(0); bz < blocksPerAxis[2]; bz++ {
		for by := uint64(0); by < blocksPerAxis[1]; by++ {
			for bx := uint64(0); bx < blocksPerAxis[0]; bx++ {
				ijk := Point3{bx, by, bz}
				lowerLeft := mgl32.Vec3{
					blkDims[0]*float32(bx) - 0.5,
					blkDims[1]*float32(by) - 0.5,
					blkDims[2]*float32(bz) - 0.5,
				}
				origin := lowerLeft.Add(blkDims.Mul(0.5))
				g.blocks = append(g.blocks, newBlock(ijk, blkDims, origin))
			}
		}
	}
	logging.Debugf("Finished block init: total blocks is %d.", len(g.blocks))
	return g, nil
}

// Blocks returns every block in construction order.
func (g *BlockGrid) Blocks() []*Block { return g.blocks }

func (g *BlockGrid) BlocksPerAxis() Point3 { return g.blocksPerAxis }

func (g *BlockGrid) VolumeDims() Point3 { return g.volumeDims }

// BlockVoxelDims is the number of voxels along each axis of a single block.
func (g *BlockGrid) BlockVoxelDims() Point3 {
	return g.volumeDims.Div(g.blocksPerAxis)
}

// VoxelStart is the first voxel of b.
func (g *BlockGrid) VoxelStart(b *Block) Point3 {
	return b.ijk.Mul(g.BlockVoxelDims())
}

// VoxelRange returns the half-open voxel range [start, end) covered by b.
func (g *BlockGrid) VoxelRange(b *Block) (start, end Point3) {
	start = g.VoxelStart(b)
	return start, start.Add(g.BlockVoxelDims())
}

// Block returns the block at grid coordinate ijk, or nil if out of range.
func (g *BlockGrid) Block(ijk Point3) *Block {
	n := g.blocksPerAxis
	if ijk[0] >= n[0] || ijk[1] >= n[1] || ijk[2] >= n[2] {
		return nil
	}
	return g.blocks[ijk[0]+ijk[1]*n[0]+ijk[2]*n[0]*n[1]]
}

// NonEmpty returns the live blocks, in construction order.
func (g *BlockGrid) NonEmpty() []*Block {
	live := make([]*Block, 0, len(g.blocks))
	for _, b := range g.blocks {
		if !b.empty {
			live = append(live, b)
		}
	}
	return live
}

// EmptyCount returns the number of blocks marked empty.
func (g *BlockGrid) EmptyCount() int {
	n := 0
	for _, b := range g.blocks {
		if b.empty {
			n++
		}
	}
	return n
}

// Release frees every block's texture.
func (g *BlockGrid) Release() {
	for _, b := range g.blocks {
		b.Release()
	}
}

// WriteAverages writes one "(i,j,k):\taverage" line per block.
func (g *BlockGrid) WriteAverages(w io.Writer) error {
	for _, b := range g.blocks {
		ijk := b.ijk
		if _, err := fmt.Fprintf(w, "(%d,%d,%d):\t%g\n", ijk[0], ijk[1], ijk[2], b.average); err != nil {
			return err
		}
	}
	return nil
}
