package volume

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DatFile is the descriptor that accompanies a raw volume:
//
//	ObjectFileName: head.raw
//	Resolution:     256 256 113
//	SliceThickness: 1 1 2
//	Format:         USHORT
type DatFile struct {
	ObjectFileName string
	Dims           [3]uint64
	Thickness      [3]float32
	Type           DataType
}

// ReadDat parses the descriptor at path. A relative ObjectFileName is
// resolved against the descriptor's directory.
func ReadDat(path string) (*DatFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dat, err := ParseDat(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if dat.ObjectFileName != "" && !filepath.IsAbs(dat.ObjectFileName) {
		dat.ObjectFileName = filepath.Join(filepath.Dir(path), dat.ObjectFileName)
	}
	return dat, nil
}

// ParseDat reads "Key: value" lines. Unknown keys are ignored; Resolution and
// Format are required.
func ParseDat(r io.Reader) (*DatFile, error) {
	dat := &DatFile{Thickness: [3]float32{1, 1, 1}}
	var haveDims, haveType bool

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"key: value\", got %q", lineNum, line)
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "objectfilename":
			dat.ObjectFileName = value
		case "resolution":
			fields := strings.Fields(value)
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: resolution needs 3 values, got %q", lineNum, value)
			}
			for i, s := range fields {
				n, err := strconv.ParseUint(s, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad resolution %q: %w", lineNum, s, err)
				}
				dat.Dims[i] = n
			}
			haveDims = true
		case "slicethickness":
			fields := strings.Fields(value)
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: slice thickness needs 3 values, got %q", lineNum, value)
			}
			for i, s := range fields {
				v, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad slice thickness %q: %w", lineNum, s, err)
				}
				dat.Thickness[i] = float32(v)
			}
		case "format":
			t, err := ParseDataType(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			dat.Type = t
			haveType = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !haveDims {
		return nil, fmt.Errorf("descriptor has no Resolution")
	}
	if !haveType {
		return nil, fmt.Errorf("descriptor has no Format")
	}
	return dat, nil
}
