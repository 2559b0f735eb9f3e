package policy

import (
	"errors"
	"strings"
	"testing"

	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/wavelet/wavelettest"
)

func TestValidateBitmap(t *testing.T) {
	tests := []struct {
		name    string
		file    wavelet.File
		wantErr error
	}{
		{"bmp extension", wavelet.FileFromBytes("cat.BMP", []byte("anything")), nil},
		{"header sniff", wavelet.FileFromBytes("cat", []byte("BM\x00\x00")), nil},
		{"png rejected", wavelet.FileFromBytes("cat.png", []byte("\x89PNG")), ErrNotBitmap},
		{"empty", wavelet.FileFromBytes("cat.bmp", nil), ErrEmptyFile},
		{"too large", wavelet.File{Name: "big.bmp", Size: MaxUploadBytes + 1}, ErrTooLarge},
		{"exactly at limit", wavelet.File{Name: "edge.bmp", Size: MaxUploadBytes}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBitmap(tt.file)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateBitmap returned %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateBitmap error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBitmap_TooLargeMentionsSizes(t *testing.T) {
	err := ValidateBitmap(wavelet.File{Name: "big.bmp", Size: 12 << 20})
	if err == nil || !strings.Contains(err.Error(), "12 MiB") || !strings.Contains(err.Error(), "10 MiB") {
		t.Fatalf("error = %v, want human readable sizes", err)
	}
}

func TestValidateArtifact(t *testing.T) {
	if err := ValidateArtifact(wavelet.FileFromBytes("photo.compressed", []byte("x"))); err != nil {
		t.Fatalf("ValidateArtifact(photo.compressed) = %v, want nil", err)
	}
	if err := ValidateArtifact(wavelet.FileFromBytes("photo.txt", []byte("x"))); !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("ValidateArtifact(photo.txt) = %v, want ErrInvalidFileType", err)
	}
	if err := ValidateArtifact(wavelet.FileFromBytes("photo.compressed.bak", []byte("x"))); !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("ValidateArtifact(photo.compressed.bak) = %v, want ErrInvalidFileType", err)
	}
}

func TestBitmapDimensions(t *testing.T) {
	cfg, err := BitmapDimensions(wavelet.FileFromBytes("g.bmp", wavelettest.Bitmap(6, 3)))
	if err != nil {
		t.Fatalf("BitmapDimensions returned error: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 6x3", cfg.Width, cfg.Height)
	}
}
