// Package preview loads visualization images and renders them as coloured
// half-block cells for the terminal.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // decoder registration
)

var (
	// ErrEmptyImage is returned when the service answers with no bytes.
	ErrEmptyImage = errors.New("empty image")
	// ErrInvalidImage is returned when the bytes are not a decodable image.
	ErrInvalidImage = errors.New("invalid image")
)

// Fetcher retrieves raw bytes for an image address.
type Fetcher interface {
	FetchVisualization(ctx context.Context, rawURL string) ([]byte, error)
}

// Loader is the image-loading primitive handed a visualization URL.
type Loader interface {
	Load(ctx context.Context, rawURL string) (image.Image, error)
}

type loader struct {
	fetcher Fetcher
}

// NewLoader returns a Loader that fetches through f and decodes the result.
func NewLoader(f Fetcher) Loader {
	return &loader{fetcher: f}
}

func (l *loader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := l.fetcher.FetchVisualization(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode turns BMP, PNG or JPEG bytes into an image.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

const halfBlock = "▀"

// Render fits img into cols x rows terminal cells. Each cell carries two
// vertically stacked pixels: the upper one as foreground, the lower as
// background.
func Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	fitted := imaging.Fit(img, cols, rows*2, imaging.Box)
	fb := fitted.Bounds()

	var sb strings.Builder
	for y := fb.Min.Y; y < fb.Max.Y; y += 2 {
		for x := fb.Min.X; x < fb.Max.X; x++ {
			top := fitted.At(x, y)
			bottom := top
			if y+1 < fb.Max.Y {
				bottom = fitted.At(x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render(halfBlock))
		}
		if y+2 < fb.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Size returns the cell footprint Render would produce for img.
func Size(img image.Image, cols, rows int) (w, h int) {
	if img == nil || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, 0
	}
	fb := imaging.Fit(img, cols, rows*2, imaging.Box).Bounds()
	return fb.Dx(), (fb.Dy() + 1) / 2
}

func hex(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B))
}
