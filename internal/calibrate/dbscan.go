package calibrate

import (
	"gonum.org/v1/gonum/floats"
)

// Noise is the label DBSCAN gives to points that belong to no cluster. It is
// never produced when minSamples is 1.
const Noise = -1

const unvisited = -2

// DBSCAN clusters points by Euclidean distance over (height, width).
//
// Two points are neighbours when their distance is at most eps. A point with
// at least minSamples neighbours (itself included) is a core point, and every
// neighbour of a core point joins its cluster, so clusters chain transitively
// through core points. Labels start at 0 and are assigned in the order the
// first core point of each cluster appears in points.
//
// A nil or empty input yields a nil slice.
func DBSCAN(points []Sample, eps float64, minSamples int) []int {
	if len(points) == 0 {
		return nil
	}
	if minSamples < 1 {
		minSamples = 1
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{float64(p.Height), float64(p.Width)}
	}

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := regionQuery(coords, i, eps, nil)
		if len(neighbors) < minSamples {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		expandCluster(coords, labels, neighbors, cluster, eps, minSamples)
		cluster++
	}

	return labels
}

// expandCluster grows a cluster from the neighbours of a core point and
// returns how many points it queued for expansion.
//
// A point is claimed when it is first reached, so each point enters the
// queue at most once. Noise reached from a core point becomes a border point
// and is not expanded; it already had too few neighbours.
func expandCluster(coords [][]float64, labels []int, seeds []int, cluster int, eps float64, minSamples int) int {
	var queue []int
	claim := func(idxs []int) {
		for _, n := range idxs {
			switch labels[n] {
			case Noise:
				labels[n] = cluster
			case unvisited:
				labels[n] = cluster
				queue = append(queue, n)
			}
		}
	}

	claim(seeds)
	var buf []int
	for j := 0; j < len(queue); j++ {
		buf = regionQuery(coords, queue[j], eps, buf[:0])
		if len(buf) >= minSamples {
			claim(buf)
		}
	}
	return len(queue)
}

// regionQuery appends to out the indices of all points within eps of
// coords[i], including i itself.
func regionQuery(coords [][]float64, i int, eps float64, out []int) []int {
	for j := range coords {
		if floats.Distance(coords[i], coords[j], 2) <= eps {
			out = append(out, j)
		}
	}
	return out
}

// DefaultClusterer runs DBSCAN with a minimum of one sample per cluster, so
// every point belongs to some cluster.
func DefaultClusterer(points []Sample, eps float64) ([]int, error) {
	return DBSCAN(points, eps, 1), nil
}
