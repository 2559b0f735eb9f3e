package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/five82/haarview/internal/wavelet"
)

func TestWriteSampleIsUploadable(t *testing.T) {
	h := newHarness(t)
	path, err := WriteSample(DirSaver{Dir: h.out}, 32)
	if err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if path != filepath.Join(h.out, SampleName) {
		t.Fatalf("path = %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cfg, err := bmp.DecodeConfig(f)
	_ = f.Close()
	if err != nil || cfg.Width != 32 || cfg.Height != 32 {
		t.Fatalf("DecodeConfig = %+v, %v", cfg, err)
	}

	file, err := wavelet.FileFromPath(path)
	if err != nil {
		t.Fatalf("FileFromPath: %v", err)
	}
	c := NewCompression(h.deps)
	if _, ok := c.Upload(context.Background(), file); !ok {
		t.Fatalf("sample rejected: %#v", h.rec.All())
	}
	if v := c.View(); v.Width != 32 || v.Height != 32 {
		t.Fatalf("dimensions = %dx%d, want 32x32", v.Width, v.Height)
	}
}

func TestWriteSampleDefaultSize(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSample(DirSaver{Dir: dir}, 0)
	if err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	if err != nil || cfg.Width != DefaultSampleSize {
		t.Fatalf("DecodeConfig = %+v, %v", cfg, err)
	}
}
