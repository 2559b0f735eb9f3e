package workflow

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/bmp"
)

// SampleName is the file written by WriteSample.
const SampleName = "example.bmp"

// DefaultSampleSize is the edge length of the sample bitmap in pixels.
const DefaultSampleSize = 256

// WriteSample saves a size×size example bitmap through s and returns its
// path. The image mixes smooth gradients with hard edges so every
// decomposition step shows visible detail.
func WriteSample(s Saver, size int) (string, error) {
	if size <= 0 {
		size = DefaultSampleSize
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, sampleImage(size)); err != nil {
		return "", fmt.Errorf("encode sample: %w", err)
	}
	return s.Save(SampleName, &buf)
}

func sampleImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/8, 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := uint8(x * 255 / size)
			g := uint8(y * 255 / size)
			b := uint8(64)
			if (x/cell+y/cell)%2 == 0 {
				b = 192
			}
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
