package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// DefaultThreshold is the gray level separating box outlines from background.
const DefaultThreshold = 128

// Scale resizes img by factor using Lanczos resampling.
//
// A factor of exactly 1.0 returns img unchanged. The result is at least 1x1.
func Scale(img image.Image, factor float64) (image.Image, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("scaling factor must be positive, got %v", factor)
	}
	if factor == 1.0 {
		return img, nil
	}

	bounds := img.Bounds()
	newWidth := max(1, int(float64(bounds.Dx())*factor))
	newHeight := max(1, int(float64(bounds.Dy())*factor))
	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos), nil
}

// Binarize converts img to black and white at the given gray level.
// Pixels darker than level become black.
func Binarize(img image.Image, level uint8) *image.Gray {
	return segment.Threshold(imaging.Grayscale(img), level)
}

// Dilate thickens the dark strokes of img.
//
// kernel is the (width, height) of the structuring element; its larger side
// sets the search radius. iterations of zero or less return img unchanged.
//
// Dilation picks local maxima, so the image is inverted around the operation
// to grow dark outlines on a light background.
func Dilate(img image.Image, kernel [2]int, iterations int) image.Image {
	if iterations <= 0 {
		return img
	}

	radius := float64(max(kernel[0], kernel[1])) / 2
	if radius <= 0 {
		return img
	}

	out := image.Image(effect.Invert(img))
	for i := 0; i < iterations; i++ {
		out = effect.Dilate(out, radius)
	}
	return effect.Invert(out)
}
