package params

import (
	"fmt"
	"iter"

	pkgerrors "github.com/pkg/errors"
)

// Tuple is one fully resolved parameter combination. Each Tuple drives one
// pass of the detection pipeline.
type Tuple struct {
	WidthRange            IntPair    `json:"width_range"`
	HeightRange           IntPair    `json:"height_range"`
	WHRatioRange          FloatPair  `json:"wh_ratio_range"`
	DilationIterations    int        `json:"dilation_iterations"`
	DilationKernel        IntPair    `json:"dilation_kernel"`
	VerticalMaxDistance   int        `json:"vertical_max_distance"`
	HorizontalMaxDistance int        `json:"horizontal_max_distance"`
	MorphKernelsType      KernelType `json:"morph_kernels_type"`
	MorphKernelsThickness int        `json:"morph_kernels_thickness"`
}

func (t Tuple) String() string {
	return fmt.Sprintf("width=%v height=%v ratio=%v dilation=%d/%v vdist=%d hdist=%d kernel=%s/%d",
		t.WidthRange, t.HeightRange, t.WHRatioRange,
		t.DilationIterations, t.DilationKernel,
		t.VerticalMaxDistance, t.HorizontalMaxDistance,
		t.MorphKernelsType, t.MorphKernelsThickness)
}

// Tuples recomputes the iteration count and returns the sequence of parameter
// combinations, indexed 0..NumIterations()-1.
//
// Every tracked parameter is broadcast to the iteration count when Tuples is
// called; later changes to p do not affect a sequence already returned. The
// sequence can be ranged over any number of times.
func (p *ParameterSet) Tuples() (iter.Seq2[int, Tuple], error) {
	p.RecomputeIterationCount()
	n := p.numIterations

	widths, err := broadcast(FieldWidthRange, p.WidthRange, n)
	if err != nil {
		return nil, err
	}
	heights, err := broadcast(FieldHeightRange, p.HeightRange, n)
	if err != nil {
		return nil, err
	}
	ratios, err := broadcast(FieldWHRatioRange, p.WHRatioRange, n)
	if err != nil {
		return nil, err
	}
	dilIters, err := broadcast(FieldDilationIterations, p.DilationIterations, n)
	if err != nil {
		return nil, err
	}
	dilKernels, err := broadcast(FieldDilationKernel, p.DilationKernel, n)
	if err != nil {
		return nil, err
	}
	vdists, err := broadcast(FieldVerticalMaxDistance, p.VerticalMaxDistance, n)
	if err != nil {
		return nil, err
	}
	hdists, err := broadcast(FieldHorizontalMaxDistance, p.HorizontalMaxDistance, n)
	if err != nil {
		return nil, err
	}
	kernelTypes, err := broadcast(FieldMorphKernelsType, p.MorphKernelsType, n)
	if err != nil {
		return nil, err
	}
	kernelThick, err := broadcast(FieldMorphKernelsThickness, p.MorphKernelsThickness, n)
	if err != nil {
		return nil, err
	}

	return func(yield func(int, Tuple) bool) {
		for i := 0; i < n; i++ {
			t := Tuple{
				WidthRange:            widths[i],
				HeightRange:           heights[i],
				WHRatioRange:          ratios[i],
				DilationIterations:    dilIters[i],
				DilationKernel:        dilKernels[i],
				VerticalMaxDistance:   vdists[i],
				HorizontalMaxDistance: hdists[i],
				MorphKernelsType:      kernelTypes[i],
				MorphKernelsThickness: kernelThick[i],
			}
			if !yield(i, t) {
				return
			}
		}
	}, nil
}

// Expand collects Tuples into a slice.
func (p *ParameterSet) Expand() ([]Tuple, error) {
	seq, err := p.Tuples()
	if err != nil {
		return nil, err
	}
	out := make([]Tuple, 0, p.numIterations)
	for _, t := range seq {
		out = append(out, t)
	}
	return out, nil
}

func broadcast[T comparable](name string, v Value[T], n int) ([]T, error) {
	out, err := v.BroadcastTo(n)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "broadcast %s", name)
	}
	return out, nil
}
