package calibrate

import (
	"errors"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/boxdetect/internal/params"
)

// ErrCalibrationInput is returned when the measurement sample is empty or
// clustering produced no groups. The ParameterSet is not modified.
var ErrCalibrationInput = errors.New("calibration input yields no clusters")

// Sample is one observed box size in pixels.
type Sample struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Clusterer assigns a cluster label to every point. Labels below zero mark
// noise and are ignored by the calibrator.
type Clusterer func(points []Sample, eps float64) ([]int, error)

// Options controls how clusters are turned into parameter ranges.
type Options struct {
	// Epsilon is the largest distance between neighbouring samples of one cluster.
	Epsilon float64

	// MarginPercent and MarginPxLimit pad every bound outward by
	// min(MarginPxLimit, trunc(bound * MarginPercent)) pixels.
	MarginPercent float64
	MarginPxLimit int

	// UseRectKernelForSmall selects the rectangles kernel for clusters whose
	// largest height and width are both at most RectKernelThreshold.
	UseRectKernelForSmall bool
	RectKernelThreshold   int

	// Clusterer defaults to DefaultClusterer.
	Clusterer Clusterer

	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the calibration defaults.
func DefaultOptions() Options {
	return Options{
		Epsilon:               5,
		MarginPercent:         0.1,
		MarginPxLimit:         5,
		UseRectKernelForSmall: false,
		RectKernelThreshold:   30,
		Clusterer:             DefaultClusterer,
	}
}

// Group is the calibrated result for one cluster of samples.
type Group struct {
	Label int `json:"label"`
	Size  int `json:"size"`

	// Observed bounds, before padding.
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`

	HeightRange  params.IntPair    `json:"height_range"`
	WidthRange   params.IntPair    `json:"width_range"`
	WHRatioRange params.FloatPair  `json:"wh_ratio_range"`
	KernelType   params.KernelType `json:"kernel_type"`
}

// AddMargin returns the padding applied to a bound of the given size.
func AddMargin(value int, percent float64, limit int) int {
	margin := int(float64(value) * percent)
	if margin < limit {
		return margin
	}
	return limit
}

// Plan clusters samples and computes one Group per cluster, in label order.
func Plan(samples []Sample, opts Options) ([]Group, error) {
	if len(samples) == 0 {
		return nil, pkgerrors.Wrap(ErrCalibrationInput, "no samples")
	}

	clusterer := opts.Clusterer
	if clusterer == nil {
		clusterer = DefaultClusterer
	}
	labels, err := clusterer(samples, opts.Epsilon)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "clustering failed")
	}
	if len(labels) != len(samples) {
		return nil, pkgerrors.Wrapf(ErrCalibrationInput, "clusterer returned %d labels for %d samples", len(labels), len(samples))
	}

	members := make(map[int][]Sample)
	for i, label := range labels {
		if label < 0 {
			continue
		}
		members[label] = append(members[label], samples[i])
	}
	if len(members) == 0 {
		return nil, pkgerrors.Wrap(ErrCalibrationInput, "every sample was labelled noise")
	}

	order := make([]int, 0, len(members))
	for label := range members {
		order = append(order, label)
	}
	sort.Ints(order)

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		groups = append(groups, buildGroup(label, members[label], opts))
	}
	return groups, nil
}

func buildGroup(label int, members []Sample, opts Options) Group {
	g := Group{
		Label:     label,
		Size:      len(members),
		MinHeight: members[0].Height,
		MaxHeight: members[0].Height,
		MinWidth:  members[0].Width,
		MaxWidth:  members[0].Width,
	}
	for _, s := range members[1:] {
		g.MinHeight = min(g.MinHeight, s.Height)
		g.MaxHeight = max(g.MaxHeight, s.Height)
		g.MinWidth = min(g.MinWidth, s.Width)
		g.MaxWidth = max(g.MaxWidth, s.Width)
	}

	pad := func(v int) int { return AddMargin(v, opts.MarginPercent, opts.MarginPxLimit) }
	g.HeightRange = params.IntPair{g.MinHeight - pad(g.MinHeight), g.MaxHeight + pad(g.MaxHeight)}
	g.WidthRange = params.IntPair{g.MinWidth - pad(g.MinWidth), g.MaxWidth + pad(g.MaxWidth)}

	// Ratios of the padded aggregate bounds, not of individual samples.
	lo := float64(g.WidthRange[0]) / float64(g.HeightRange[0])
	hi := float64(g.WidthRange[1]) / float64(g.HeightRange[1])
	if hi < lo {
		lo, hi = hi, lo
	}
	g.WHRatioRange = params.FloatPair{lo, hi}

	g.KernelType = params.KernelLines
	if opts.UseRectKernelForSmall &&
		g.MaxHeight <= opts.RectKernelThreshold &&
		g.MaxWidth <= opts.RectKernelThreshold {
		g.KernelType = params.KernelRectangles
	}
	return g
}

// Apply overwrites the range parameters of p with one entry per group and
// recomputes the iteration count.
func Apply(p *params.ParameterSet, groups []Group) {
	widths := make([]params.IntPair, len(groups))
	heights := make([]params.IntPair, len(groups))
	ratios := make([]params.FloatPair, len(groups))
	kernels := make([]params.KernelType, len(groups))
	for i, g := range groups {
		widths[i] = g.WidthRange
		heights[i] = g.HeightRange
		ratios[i] = g.WHRatioRange
		kernels[i] = g.KernelType
	}

	p.WidthRange = params.Multi(widths...)
	p.HeightRange = params.Multi(heights...)
	p.WHRatioRange = params.Multi(ratios...)
	p.MorphKernelsType = params.Multi(kernels...)
	p.RecomputeIterationCount()
}

// Calibrate derives width_range, height_range, wh_ratio_range and
// morph_kernels_type from observed box sizes, writes them to p and returns p.
//
// On error p is left exactly as it was.
func Calibrate(p *params.ParameterSet, samples []Sample, opts Options) (*params.ParameterSet, error) {
	groups, err := Plan(samples, opts)
	if err != nil {
		return nil, err
	}

	Apply(p, groups)

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"samples":    len(samples),
		"groups":     len(groups),
		"iterations": p.NumIterations(),
	}).Debug("Calibrated parameter ranges")

	return p, nil
}
