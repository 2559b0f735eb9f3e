package policy

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/bmp"

	"github.com/five82/haarview/internal/wavelet"
)

// MaxUploadBytes is the largest file accepted by either upload.
const MaxUploadBytes = 10 << 20

// ArtifactExt is the suffix every compressed artifact carries.
const ArtifactExt = ".compressed"

// Local validation errors.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file is too large")
	ErrNotBitmap       = errors.New("file is not a bitmap")
	ErrInvalidFileType = errors.New("invalid file type")
)

// ValidateBitmap applies the source-image dropzone rules: a BMP file of at
// most MaxUploadBytes. A file counts as BMP when its name ends in .bmp or its
// header carries the "BM" signature.
func ValidateBitmap(f wavelet.File) error {
	if err := checkSize(f); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(f.Name), ".bmp") {
		return nil
	}
	header, err := readHeader(f, 2)
	if err != nil {
		return err
	}
	if !bytes.Equal(header, []byte("BM")) {
		return fmt.Errorf("%w: %s", ErrNotBitmap, f.Name)
	}
	return nil
}

// ValidateArtifact applies the decompression dropzone rules.
func ValidateArtifact(f wavelet.File) error {
	if !strings.HasSuffix(f.Name, ArtifactExt) {
		return fmt.Errorf("%w: %s", ErrInvalidFileType, f.Name)
	}
	return checkSize(f)
}

// BitmapDimensions reads the width and height from a BMP header. It is
// informational only; the service accepts encodings this decoder does not.
func BitmapDimensions(f wavelet.File) (image.Config, error) {
	rc, err := f.Open()
	if err != nil {
		return image.Config{}, err
	}
	defer func() { _ = rc.Close() }()
	return bmp.DecodeConfig(rc)
}

func checkSize(f wavelet.File) error {
	if f.Size <= 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
	}
	if f.Size > MaxUploadBytes {
		return fmt.Errorf("%w: %s is %s, limit %s", ErrTooLarge, f.Name,
			humanize.IBytes(uint64(f.Size)), humanize.IBytes(MaxUploadBytes))
	}
	return nil
}

func readHeader(f wavelet.File, n int) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	buf := make([]byte, n)
	read, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return buf[:read], nil
}
