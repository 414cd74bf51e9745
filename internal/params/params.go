package params

import (
	"reflect"
)

// ParameterSet holds every tunable parameter of the box detection pipeline.
//
// Sweep parameters are Values: either a single setting or a list to iterate
// over. After changing a field directly, call RecomputeIterationCount so that
// NumIterations reflects the new state. Tuples recomputes on its own.
//
// A ParameterSet is not safe for concurrent mutation.
type ParameterSet struct {
	// WidthRange and HeightRange bound the size of boxes to keep, in pixels.
	WidthRange  Value[IntPair]
	HeightRange Value[IntPair]

	// WHRatioRange bounds the width/height ratio of boxes to keep.
	WHRatioRange Value[FloatPair]

	// ScalingFactors are the image scales the pipeline processes. More factors
	// give better recall at the cost of runtime.
	ScalingFactors Value[float64]

	// Thickness is the line thickness used when drawing results.
	Thickness int

	// DilationKernel and DilationIterations control the dilation applied
	// before contour extraction. Zero iterations disables it.
	DilationKernel     Value[IntPair]
	DilationIterations Value[int]

	MorphKernelsType      Value[KernelType]
	MorphKernelsThickness Value[int]

	// GroupSizeRange is the (min, max) number of boxes in a group. A minimum
	// above 1 drops isolated boxes.
	GroupSizeRange IntPair

	// VerticalMaxDistance and HorizontalMaxDistance are the largest gaps, in
	// pixels, between boxes of the same group.
	VerticalMaxDistance   Value[int]
	HorizontalMaxDistance Value[int]

	// Extra holds fields found in a loaded file that this version does not
	// recognize. They are written back out by Save.
	Extra map[string]any

	numIterations int
}

// Field names as they appear in configuration files.
const (
	FieldWidthRange            = "width_range"
	FieldHeightRange           = "height_range"
	FieldWHRatioRange          = "wh_ratio_range"
	FieldScalingFactors        = "scaling_factors"
	FieldThickness             = "thickness"
	FieldDilationKernel        = "dilation_kernel"
	FieldDilationIterations    = "dilation_iterations"
	FieldMorphKernelsType      = "morph_kernels_type"
	FieldMorphKernelsThickness = "morph_kernels_thickness"
	FieldGroupSizeRange        = "group_size_range"
	FieldVerticalMaxDistance   = "vertical_max_distance"
	FieldHorizontalMaxDistance = "horizontal_max_distance"

	// FieldNumIterations is written for readers of the file; it is derived
	// and ignored on load.
	FieldNumIterations = "num_iterations"
)

// Default returns a ParameterSet holding the built-in defaults. Every sweep
// parameter is a one-element list, so the set expands to a single tuple.
func Default() *ParameterSet {
	widthRange := IntPair{40, 50}
	p := &ParameterSet{
		WidthRange:            Multi(widthRange),
		HeightRange:           Multi(IntPair{50, 60}),
		WHRatioRange:          Multi(FloatPair{0.65, 0.1}),
		ScalingFactors:        Multi(0.5),
		Thickness:             2,
		DilationKernel:        Multi(IntPair{2, 2}),
		DilationIterations:    Multi(0),
		MorphKernelsType:      Multi(KernelLines),
		MorphKernelsThickness: Multi(1),
		GroupSizeRange:        IntPair{1, 100},
		VerticalMaxDistance:   Multi(10),
		HorizontalMaxDistance: Multi(widthRange[0] * 2),
		Extra:                 map[string]any{},
	}
	p.RecomputeIterationCount()
	return p
}

// FromFile returns the defaults overlaid with the configuration stored at path.
func FromFile(path string, opts ...LoadOption) (*ParameterSet, error) {
	p := Default()
	if err := p.Load(path, opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// lengther is implemented by every Value.
type lengther interface {
	Len() int
}

type binding struct {
	name    string
	target  any // pointer to the field
	tracked bool
}

// bindings maps file field names onto p's fields. tracked fields take part in
// the iteration count.
func (p *ParameterSet) bindings() []binding {
	return []binding{
		{FieldWidthRange, &p.WidthRange, true},
		{FieldHeightRange, &p.HeightRange, true},
		{FieldWHRatioRange, &p.WHRatioRange, true},
		{FieldScalingFactors, &p.ScalingFactors, false},
		{FieldThickness, &p.Thickness, false},
		{FieldDilationKernel, &p.DilationKernel, true},
		{FieldDilationIterations, &p.DilationIterations, true},
		{FieldMorphKernelsType, &p.MorphKernelsType, true},
		{FieldMorphKernelsThickness, &p.MorphKernelsThickness, true},
		{FieldGroupSizeRange, &p.GroupSizeRange, false},
		{FieldVerticalMaxDistance, &p.VerticalMaxDistance, true},
		{FieldHorizontalMaxDistance, &p.HorizontalMaxDistance, true},
	}
}

// IsRecognized reports whether name is a field this version understands.
func IsRecognized(name string) bool {
	if name == FieldNumIterations {
		return true
	}
	var p ParameterSet
	for _, b := range p.bindings() {
		if b.name == name {
			return true
		}
	}
	return false
}

// RecomputeIterationCount sets the iteration count to the longest tracked
// parameter, counting single values as length 1. The count is never below 1.
func (p *ParameterSet) RecomputeIterationCount() {
	n := 1
	for _, b := range p.bindings() {
		if !b.tracked {
			continue
		}
		if l := b.target.(lengther).Len(); l > n {
			n = l
		}
	}
	p.numIterations = n
}

// NumIterations returns the iteration count as of the last recompute.
func (p *ParameterSet) NumIterations() int {
	return p.numIterations
}

// Clone returns a copy of p that shares no mutable state with it.
func (p *ParameterSet) Clone() *ParameterSet {
	c := *p
	// Values are immutable once built; only the map needs copying.
	c.Extra = make(map[string]any, len(p.Extra))
	for k, v := range p.Extra {
		c.Extra[k] = v
	}
	return &c
}

// Equal reports whether p and o hold the same fields, extras and iteration count.
func (p *ParameterSet) Equal(o *ParameterSet) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.WidthRange.Equal(o.WidthRange) &&
		p.HeightRange.Equal(o.HeightRange) &&
		p.WHRatioRange.Equal(o.WHRatioRange) &&
		p.ScalingFactors.Equal(o.ScalingFactors) &&
		p.Thickness == o.Thickness &&
		p.DilationKernel.Equal(o.DilationKernel) &&
		p.DilationIterations.Equal(o.DilationIterations) &&
		p.MorphKernelsType.Equal(o.MorphKernelsType) &&
		p.MorphKernelsThickness.Equal(o.MorphKernelsThickness) &&
		p.GroupSizeRange == o.GroupSizeRange &&
		p.VerticalMaxDistance.Equal(o.VerticalMaxDistance) &&
		p.HorizontalMaxDistance.Equal(o.HorizontalMaxDistance) &&
		p.numIterations == o.numIterations &&
		extrasEqual(p.Extra, o.Extra)
}

func extrasEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
