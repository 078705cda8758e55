package core

import (
	"bufio"
	"encoding/binary"
	"io"
)

// IndexMagic starts every binary block index.
const IndexMagic = "SBIX"

const indexVersion uint32 = 1

// indexHeader is the fixed part of a binary block index. All fields are
// little endian.
type indexHeader struct {
	Magic         [4]byte
	Version       uint32
	BlocksPerAxis [3]uint64
	VolumeDims    [3]uint64
	Blocks        uint64
	TMin, TMax    float32
}

// indexRecord follows the header once per block, in grid order.
type indexRecord struct {
	IJK     [3]uint64
	Average float32
	Empty   uint8
}

// WriteIndex writes the grid's classification as a binary block index.
func (g *BlockGrid) WriteIndex(w io.Writer, t Thresholds) error {
	bw := bufio.NewWriter(w)
	h := indexHeader{
		Version:       indexVersion,
		BlocksPerAxis: g.blocksPerAxis,
		VolumeDims:    g.volumeDims,
		Blocks:        uint64(len(g.blocks)),
		TMin:          t.TMin,
		TMax:          t.TMax,
	}
	copy(h.Magic[:], IndexMagic)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, b := range g.blocks {
		rec := indexRecord{IJK: b.ijk, Average: b.average}
		if b.empty {
			rec.Empty = 1
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}
