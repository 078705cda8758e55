package opengl

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/gl/v4.3-core/gl"

	"simpleblocks/core"
	"simpleblocks/logging"
)

var errReleasedTexture = errors.New("texture has been released")

// BlockTexture is a single channel float 3D texture holding one block's
// voxels.
type BlockTexture struct {
	id   uint32
	dims core.Point3
}

func newBlockTexture(voxels []float32, dims core.Point3) (*BlockTexture, error) {
	if uint64(len(voxels)) != dims.Prod() {
		return nil, fmt.Errorf("%w: %d voxels for block %s", core.ErrDataShape, len(voxels), dims)
	}
	t := &BlockTexture{dims: dims}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_3D, t.id)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R32F,
		int32(dims[0]), int32(dims[1]), int32(dims[2]),
		0, gl.RED, gl.FLOAT, gl.Ptr(voxels))
	gl.BindTexture(gl.TEXTURE_3D, 0)
	return t, nil
}

func (t *BlockTexture) Valid() bool { return t != nil && t.id != 0 }

func (t *BlockTexture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func (t *BlockTexture) bind(unit uint32) error {
	if t.id == 0 {
		return errReleasedTexture
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_3D, t.id)
	return nil
}

// SyncBlockTextures gives every non-empty block a texture of its voxels and
// frees the textures of empty blocks. Blocks that already hold a valid
// texture keep it, so calling this after a refilter only uploads blocks that
// became non-empty.
func SyncBlockTextures(g *core.BlockGrid, data []float32) (uploaded int, err error) {
	tlog := logging.NewTimeLog()
	dims := g.BlockVoxelDims()
	var released int
	for _, b := range g.Blocks() {
		if b.Empty() {
			if b.Texture() != nil {
				b.Release()
				released++
			}
			continue
		}
		if tex := b.Texture(); tex != nil && tex.Valid() {
			continue
		}
		voxels, err := core.ExtractBlock(g, b, data)
		if err != nil {
			return uploaded, err
		}
		tex, err := newBlockTexture(voxels, dims)
		if err != nil {
			return uploaded, err
		}
		b.SetTexture(tex)
		uploaded++
	}
	bytes := uint64(uploaded) * dims.Prod() * 4
	tlog.Infof("Uploaded %d block textures (%s), released %d",
		uploaded, humanize.Bytes(bytes), released)
	return uploaded, nil
}

// TransferFunction maps a normalized scalar to RGBA.
type TransferFunction struct {
	id      uint32
	entries int
}

// GrayRamp returns n RGBA entries rising linearly from transparent black to
// opaque white.
func GrayRamp(n int) []float32 {
	rgba := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		v := float32(0)
		if n > 1 {
			v = float32(i) / float32(n-1)
		}
		rgba = append(rgba, v, v, v, v)
	}
	return rgba
}

func newTransferFunction(rgba []float32) (*TransferFunction, error) {
	if len(rgba) == 0 || len(rgba)%4 != 0 {
		return nil, fmt.Errorf("transfer function needs RGBA entries, got %d floats", len(rgba))
	}
	tf := &TransferFunction{entries: len(rgba) / 4}
	gl.GenTextures(1, &tf.id)
	gl.BindTexture(gl.TEXTURE_1D, tf.id)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexImage1D(gl.TEXTURE_1D, 0, gl.RGBA32F, int32(tf.entries), 0, gl.RGBA, gl.FLOAT, gl.Ptr(rgba))
	gl.BindTexture(gl.TEXTURE_1D, 0)
	return tf, nil
}

func (tf *TransferFunction) bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_1D, tf.id)
}

func (tf *TransferFunction) release() {
	if tf.id != 0 {
		gl.DeleteTextures(1, &tf.id)
		tf.id = 0
	}
}
