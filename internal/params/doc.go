// Package params holds the tunable parameters of the box detection pipeline
// and expands them into the parameter combinations the pipeline runs with.
//
// # Sweep Parameters
//
// Most parameters are a Value: a single setting or a list of settings. The
// longest list among the tracked parameters sets the iteration count, and
// Tuples broadcasts every tracked parameter to that count:
//
//   - A single value is repeated for every iteration
//   - A list shorter than the count repeats its first element
//   - A list at least as long as the count is used as-is, extra elements ignored
//
// scaling_factors, thickness and group_size_range are not tracked; they apply
// to every iteration unchanged.
//
// # Configuration Files
//
// Save and Load use a flat YAML mapping from field name to value:
//
//	width_range:
//	  - [40, 50]
//	height_range:
//	  - [50, 60]
//	  - [60, 70]
//	thickness: 2
//
// A pair such as [40, 50] on its own is a single value; wrapped in a list it is
// a one-element list. Fields this version does not know are kept in
// ParameterSet.Extra, logged as a warning on load, and written back on save.
//
// # Example Usage
//
//	p, err := params.FromFile("boxes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seq, err := p.Tuples()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, t := range seq {
//	    runPass(i, t)
//	}
package params
