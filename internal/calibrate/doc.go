// Package calibrate infers box size parameters from observed box sizes.
//
// Samples are clustered with DBSCAN over (height, width). Each cluster gives
// one entry of width_range, height_range, wh_ratio_range and
// morph_kernels_type, padded outward by a margin so that boxes slightly
// outside the observed sizes are still accepted.
//
// The clustering step is pluggable through Options.Clusterer, which makes the
// range computation testable against fixed labels.
package calibrate
