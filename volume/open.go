package volume

import (
	"fmt"
)

// Source names a volume either by a .dat descriptor or by a raw file with
// an explicit type and dimensions. A descriptor wins when both are given.
type Source struct {
	Path      string
	Dat       string
	Type      string
	Dims      [3]uint64
	Normalize bool
}

// Open reads the volume src describes.
func Open(src Source) (*Volume, error) {
	if src.Dat != "" {
		dat, err := ReadDat(src.Dat)
		if err != nil {
			return nil, err
		}
		path := dat.ObjectFileName
		if path == "" {
			path = src.Path
		}
		if path == "" {
			return nil, fmt.Errorf("%s names no object file and no raw path was given", src.Dat)
		}
		return ReadRaw(path, dat.Type, dat.Dims, src.Normalize)
	}

	if src.Path == "" {
		return nil, fmt.Errorf("no volume path given")
	}
	typ, err := ParseDataType(src.Type)
	if err != nil {
		return nil, err
	}
	for i, d := range src.Dims {
		if d == 0 {
			return nil, fmt.Errorf("volume dimension %d is zero: %v", i, src.Dims)
		}
	}
	return ReadRaw(src.Path, typ, src.Dims, src.Normalize)
}
