// Package volume reads raw scalar volumes from disk.
package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/constraints"

	"simpleblocks/logging"
)

// DataType is the element type stored in a raw file.
type DataType int

const (
	Unknown DataType = iota
	Uint8
	Uint16
	Float32
)

// Size is the number of bytes per voxel.
func (t DataType) Size() int {
	switch t {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Float32:
		return 4
	}
	return 0
}

func (t DataType) String() string {
	switch t {
	case Uint8:
		return "uchar"
	case Uint16:
		return "ushort"
	case Float32:
		return "float"
	}
	return "unknown"
}

// ParseDataType accepts the names used on the command line and in .dat files.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uchar", "uint8", "ubyte", "unsigned_char":
		return Uint8, nil
	case "ushort", "uint16", "unsigned_short":
		return Uint16, nil
	case "float", "float32":
		return Float32, nil
	}
	return Unknown, fmt.Errorf("unsupported volume data type %q", s)
}

// Volume is a decoded scalar volume, x fastest then y then z.
type Volume struct {
	Dims [3]uint64
	Type DataType

	// Data holds the voxels converted to float32, normalized to [0,1] when
	// the volume was read with normalization on.
	Data []float32

	// Min and Max are the extremes of the voxels as stored in the file.
	Min, Max float32
}

// Voxels returns W*H*D.
func (v *Volume) Voxels() uint64 {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

// ReadRaw reads the raw volume at path. Files ending in .gz or .zst are
// decompressed on the fly.
func ReadRaw(path string, typ DataType, dims [3]uint64, normalize bool) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open volume: %w", err)
	}
	defer f.Close()

	timedLog := logging.NewTimeLog()
	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip volume %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd volume %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	v, err := Decode(r, typ, dims, normalize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	timedLog.Infof("Read %s volume %s (%dx%dx%d, %s voxels)", typ, path,
		dims[0], dims[1], dims[2], humanize.Comma(int64(v.Voxels())))
	return v, nil
}

// Decode reads little-endian voxels of type typ from r. Reading stops after
// W*H*D voxels; a stream holding fewer is an error.
func Decode(r io.Reader, typ DataType, dims [3]uint64, normalize bool) (*Volume, error) {
	n := dims[0] * dims[1] * dims[2]
	if n == 0 {
		return nil, fmt.Errorf("volume dimensions %v must be positive", dims)
	}
	size := typ.Size()
	if size == 0 {
		return nil, fmt.Errorf("unsupported volume data type %s", typ)
	}

	raw := make([]byte, n*uint64(size))
	got, err := io.ReadFull(r, raw)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, fmt.Errorf("file holds %d voxels (%s), dimensions %dx%dx%d need %d",
			got/size, humanize.Bytes(uint64(got)), dims[0], dims[1], dims[2], n)
	}
	if err != nil {
		return nil, err
	}
	if extra, _ := io.Copy(io.Discard, r); extra > 0 {
		logging.Warningf("Volume is %s larger than given dimensions. Reading anyway.", humanize.Bytes(uint64(extra)))
	}

	v := &Volume{Dims: dims, Type: typ}
	switch typ {
	case Uint8:
		v.Data, v.Min, v.Max = convert(raw, normalize)
	case Uint16:
		vals := make([]uint16, n)
		for i := range vals {
			vals[i] = binary.LittleEndian.Uint16(raw[2*i:])
		}
		v.Data, v.Min, v.Max = convert(vals, normalize)
	case Float32:
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		v.Data, v.Min, v.Max = convert(vals, normalize)
	}
	logging.Debugf("Volume min %.2f, max %.2f", v.Min, v.Max)
	return v, nil
}

// convert returns src as float32 together with its min and max. When
// normalize is set, negative data is first shifted up by |min| and every
// value is divided by the (shifted) max.
func convert[T constraints.Integer | constraints.Float](src []T, normalize bool) ([]float32, float32, float32) {
	out := make([]float32, len(src))
	if len(src) == 0 {
		return out, 0, 0
	}
	lo, hi := MinMax(src)
	vmin, vmax := float32(lo), float32(hi)
	if !normalize {
		for i, v := range src {
			out[i] = float32(v)
		}
		return out, vmin, vmax
	}

	var shift float32
	top := vmax
	if vmin < 0 {
		shift = -vmin
		top += shift
	}
	if top == 0 {
		return out, vmin, vmax
	}
	for i, v := range src {
		out[i] = (float32(v) + shift) / top
	}
	return out, vmin, vmax
}

// MinMax returns the smallest and largest element of a non-empty slice.
func MinMax[T constraints.Ordered](src []T) (T, T) {
	lo, hi := src[0], src[0]
	for _, v := range src[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
