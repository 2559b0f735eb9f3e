package wavelet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Handle identifies a source image previously uploaded to the service.
type Handle string

// Query selects one rendering of an uploaded image.
type Query struct {
	Handle Handle
	Level  int
	Ratio  int
	Step   int
}

// MaxStep returns the last visualization step available for level.
// Step 0 is the original image and the last step is the reconstructed preview.
func MaxStep(level int) int {
	return level*4 + 1
}

// uploadResponse mirrors the JSON returned by POST /upload.
type uploadResponse struct {
	ID string `json:"id"`
}

// File is a local file offered for upload. Contents are opened lazily so
// that size checks can run before anything is read.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// FileFromPath describes the file at path without reading it.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory data as an uploadable file.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns a reader over the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no contents", f.Name)
	}
	return f.open()
}
