package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrReleased is returned when a released Result is opened.
var ErrReleased = errors.New("result released")

// Result is a decoded bitmap spooled to a private temporary file. It lives
// until Close, which removes the file.
type Result struct {
	mu       sync.Mutex
	path     string
	size     int64
	released bool
}

func newResult(dir string, data []byte) (*Result, error) {
	f, err := os.CreateTemp(dir, "haarview-*.bmp")
	if err != nil {
		return nil, fmt.Errorf("create result file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("close result file: %w", err)
	}
	return &Result{path: f.Name(), size: int64(len(data))}, nil
}

// Path returns the location of the spooled file.
func (r *Result) Path() string { return r.path }

// Size returns the number of decoded bytes.
func (r *Result) Size() int64 { return r.size }

// Open returns a reader over the decoded bytes.
func (r *Result) Open() (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	return os.Open(r.path)
}

// Released reports whether Close has run.
func (r *Result) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Close removes the spooled file. It is safe to call more than once.
func (r *Result) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove result file: %w", err)
	}
	return nil
}
