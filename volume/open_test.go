package volume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDescriptor(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "v.raw"), []byte{0, 10, 20, 40}, 0644); err != nil {
		t.Fatal(err)
	}
	dat := filepath.Join(dir, "v.dat")
	if err := os.WriteFile(dat, []byte("ObjectFileName: v.raw\nResolution: 2 2 1\nFormat: UCHAR\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Type and dims from the descriptor override the raw settings.
	v, err := Open(Source{Dat: dat, Type: "float", Dims: [3]uint64{9, 9, 9}, Normalize: true})
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != Uint8 || v.Dims != [3]uint64{2, 2, 1} {
		t.Errorf("type %s dims %v", v.Type, v.Dims)
	}
	if v.Data[3] != 1 || v.Data[1] != 0.25 {
		t.Errorf("data %v", v.Data)
	}
}

func TestOpenRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.raw")
	if err := os.WriteFile(path, []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}
	v, err := Open(Source{Path: path, Type: "uchar", Dims: [3]uint64{2, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Data) != 2 || v.Data[1] != 2 {
		t.Errorf("data %v", v.Data)
	}
}

func TestOpenErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.raw")
	if err := os.WriteFile(path, []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}
	tests := map[string]Source{
		"nothing":   {},
		"bad type":  {Path: path, Type: "double", Dims: [3]uint64{2, 1, 1}},
		"zero dims": {Path: path, Type: "uchar", Dims: [3]uint64{2, 0, 1}},
		"no dat":    {Dat: filepath.Join(t.TempDir(), "missing.dat")},
	}
	for name, src := range tests {
		if _, err := Open(src); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
