package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"simpleblocks/logging"
)

// DefaultFile is read when no settings path is given.
const DefaultFile = "settings.toml"

type Settings struct {
	Volume  VolumeSettings    `toml:"volume"`
	Blocks  BlockSettings     `toml:"blocks"`
	Render  RenderSettings    `toml:"render"`
	Server  ServerSettings    `toml:"server"`
	Logging logging.LogConfig `toml:"logging"`
}

type VolumeSettings struct {
	Path      string    `toml:"path"`
	Dat       string    `toml:"dat"`
	Type      string    `toml:"type"`
	Dims      [3]uint64 `toml:"dims"`
	Normalize bool      `toml:"normalize"`
}

type BlockSettings struct {
	PerAxis    [3]uint64 `toml:"per_axis"`
	TMin       float32   `toml:"tmin"`
	TMax       float32   `toml:"tmax"`
	ReportFile string    `toml:"report_file"`
}

type RenderSettings struct {
	Width          int        `toml:"width"`
	Height         int        `toml:"height"`
	SlicesPerBlock int        `toml:"slices_per_block"`
	Ordering       string     `toml:"ordering"`
	BoundingBoxes  bool       `toml:"bounding_boxes"`
	FOV            float32    `toml:"fov"`
	TransferScale  float32    `toml:"transfer_scale"`
	Background     [3]float32 `toml:"background"`
	ShowStats      bool       `toml:"show_stats"`
}

type ServerSettings struct {
	Addr           string `toml:"addr"`
	BroadcastEvery int    `toml:"broadcast_every"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		Volume: VolumeSettings{
			Type:      "uchar",
			Normalize: true,
		},
		Blocks: BlockSettings{
			PerAxis: [3]uint64{1, 1, 1},
			TMin:    0.1,
			TMax:    0.9,
		},
		Render: RenderSettings{
			Width:          1000,
			Height:         1000,
			SlicesPerBlock: 64,
			Ordering:       "viewdir",
			FOV:            50,
			TransferScale:  1,
			Background:     [3]float32{0.15, 0.15, 0.15},
			ShowStats:      true,
		},
		Server: ServerSettings{
			BroadcastEvery: 30,
		},
	}
}

// Load reads a TOML settings file over the defaults. A missing file is not
// an error when path is DefaultFile.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		path = DefaultFile
	}
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultFile {
			fmt.Printf("No %s found, using defaults\n", DefaultFile)
			return s, nil
		}
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Warningf("Unknown setting %q in %s", key.String(), path)
	}
	return s, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
// Block divisibility is left to the block grid.
func (s *Settings) Validate() error {
	if s.Volume.Path == "" && s.Volume.Dat == "" {
		return fmt.Errorf("no volume given: set volume.path or volume.dat")
	}
	if s.Render.SlicesPerBlock <= 0 {
		return fmt.Errorf("render.slices_per_block must be positive, got %d", s.Render.SlicesPerBlock)
	}
	// The index buffer is 16 bit and reserves 0xFFFF for primitive restart.
	if s.Render.SlicesPerBlock*4 >= 0xFFFF {
		return fmt.Errorf("render.slices_per_block %d is too large", s.Render.SlicesPerBlock)
	}
	if s.Render.Width <= 0 || s.Render.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", s.Render.Width, s.Render.Height)
	}
	if s.Blocks.TMin > s.Blocks.TMax {
		logging.Warningf("tmin %g is greater than tmax %g; every block will be marked empty",
			s.Blocks.TMin, s.Blocks.TMax)
	}
	return nil
}
