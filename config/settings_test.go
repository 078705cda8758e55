package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.toml")
	content := `
[volume]
path = "data/skull.raw"
type = "ushort"
dims = [256, 256, 128]

[blocks]
per_axis = [8, 8, 4]
tmin = 0.2

[render]
ordering = "camera"
slices_per_block = 32

[logging]
logfile = "/tmp/blocks.log"
max_log_size = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Volume.Path != "data/skull.raw" || s.Volume.Type != "ushort" {
		t.Errorf("volume %+v", s.Volume)
	}
	if s.Volume.Dims != [3]uint64{256, 256, 128} {
		t.Errorf("dims %v", s.Volume.Dims)
	}
	if s.Blocks.PerAxis != [3]uint64{8, 8, 4} {
		t.Errorf("per axis %v", s.Blocks.PerAxis)
	}
	if s.Blocks.TMin != 0.2 || s.Blocks.TMax != 0.9 {
		t.Errorf("thresholds %v, %v", s.Blocks.TMin, s.Blocks.TMax)
	}
	if s.Render.Ordering != "camera" || s.Render.SlicesPerBlock != 32 {
		t.Errorf("render %+v", s.Render)
	}
	if !s.Volume.Normalize || s.Render.Width != 1000 {
		t.Errorf("defaults lost: %+v", s)
	}
	if s.Logging.Logfile != "/tmp/blocks.log" || s.Logging.MaxSize != 10 {
		t.Errorf("logging %+v", s.Logging)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("valid settings rejected: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit settings file")
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[render\nwidth = 3"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"no volume", func(s *Settings) { s.Volume.Path = "" }},
		{"zero slices", func(s *Settings) { s.Render.SlicesPerBlock = 0 }},
		{"too many slices", func(s *Settings) { s.Render.SlicesPerBlock = 20000 }},
		{"zero width", func(s *Settings) { s.Render.Width = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			s.Volume.Path = "vol.raw"
			tc.modify(s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
