package detection

import (
	"image"
	"math"

	pkgerrors "github.com/pkg/errors"

	"github.com/ironsheep/boxdetect/internal/calibrate"
	"github.com/ironsheep/boxdetect/internal/imaging"
	"github.com/ironsheep/boxdetect/internal/params"
)

// Defaults for MeasureOptions.
const (
	DefaultMinArea   = 16
	DefaultTolerance = 0.85
)

// MeasureOptions controls a measurement pass over one image.
type MeasureOptions struct {
	// ScalingFactors are the image scales to detect at. Empty means 1.0.
	ScalingFactors []float64

	// MinArea is the smallest box area, in scaled pixels, to record.
	MinArea int

	// Tolerance is the minimum rectangularity score, from 0 to 1.
	Tolerance float64

	// Threshold is the gray level used to binarize each scaled image.
	Threshold uint8

	// DilationKernel and DilationIterations thicken outlines before
	// detection. Zero iterations disables dilation.
	DilationKernel     [2]int
	DilationIterations int
}

// DefaultMeasureOptions returns options for a single pass at the source scale.
func DefaultMeasureOptions() MeasureOptions {
	return MeasureOptions{
		ScalingFactors: []float64{1.0},
		MinArea:        DefaultMinArea,
		Tolerance:      DefaultTolerance,
		Threshold:      imaging.DefaultThreshold,
	}
}

// MeasureOptionsFrom takes the scaling factors and the first dilation setting
// from p, so that measurement sees images the way the pipeline will.
func MeasureOptionsFrom(p *params.ParameterSet) MeasureOptions {
	opts := DefaultMeasureOptions()
	opts.ScalingFactors = p.ScalingFactors.Values()
	if k, ok := p.DilationKernel.First(); ok {
		opts.DilationKernel = k
	}
	if n, ok := p.DilationIterations.First(); ok {
		opts.DilationIterations = n
	}
	return opts
}

// ScaleResult reports how many boxes were found at one scaling factor.
type ScaleResult struct {
	Factor   float64 `json:"factor"`
	Detected int     `json:"detected"`
}

// MeasureResult holds the box sizes observed in an image.
type MeasureResult struct {
	// Samples are distinct (height, width) sizes in source pixels, in the
	// order they were first seen.
	Samples []calibrate.Sample `json:"samples"`
	Count   int                `json:"count"`
	Scales  []ScaleResult      `json:"scales"`
}

// MeasureBoxes detects boxes in img at every scaling factor and records their
// sizes mapped back to the source resolution.
func MeasureBoxes(img image.Image, opts MeasureOptions) (*MeasureResult, error) {
	factors := opts.ScalingFactors
	if len(factors) == 0 {
		factors = []float64{1.0}
	}

	result := &MeasureResult{
		Samples: []calibrate.Sample{},
		Scales:  make([]ScaleResult, 0, len(factors)),
	}
	seen := make(map[calibrate.Sample]bool)

	for _, factor := range factors {
		scaled, err := imaging.Scale(img, factor)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "measure boxes")
		}

		var prepared image.Image = imaging.Binarize(scaled, opts.Threshold)
		prepared = imaging.Dilate(prepared, opts.DilationKernel, opts.DilationIterations)

		rects, err := DetectRectangles(prepared, opts.MinArea, opts.Tolerance)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "detect rectangles at scale %v", factor)
		}

		result.Scales = append(result.Scales, ScaleResult{Factor: factor, Detected: rects.Count})
		for _, r := range rects.Rectangles {
			s := calibrate.Sample{
				Height: int(math.Round(float64(r.Height) / factor)),
				Width:  int(math.Round(float64(r.Width) / factor)),
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			result.Samples = append(result.Samples, s)
		}
	}

	result.Count = len(result.Samples)
	return result, nil
}
