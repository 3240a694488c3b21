package herd

import (
	"gonum.org/v1/gonum/stat"

	"moove-sim/internal/geom"
)

// Centroid is the mean position of the herd. An empty herd has its centroid at the origin.
func Centroid(cows []Cow) geom.Point {
	if len(cows) == 0 {
		return geom.Point{}
	}
	xs := make([]float64, len(cows))
	ys := make([]float64, len(cows))
	for i, c := range cows {
		xs[i], ys[i] = c.Position.X, c.Position.Y
	}
	return geom.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// AveragePairwiseDistance averages the distance over every unordered pair. Fewer than two
// animals yield 0.
func AveragePairwiseDistance(cows []Cow) float64 {
	var total float64
	pairs := 0
	for i := range cows {
		for j := i + 1; j < len(cows); j++ {
			total += cows[i].Position.Dist(cows[j].Position)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// FarthestIsolated returns the isolated animal farthest from the current centroid.
func FarthestIsolated(cows []Cow) (Cow, bool) {
	center := Centroid(cows)
	var (
		best  Cow
		found bool
		dist  float64
	)
	for _, c := range cows {
		if c.Status != StatusIsolated {
			continue
		}
		if d := c.Position.Dist(center); !found || d > dist {
			best, dist, found = c, d, true
		}
	}
	return best, found
}

// CountStatuses tallies the herd by status.
func CountStatuses(cows []Cow) Counts {
	var n Counts
	for _, c := range cows {
		switch c.Status {
		case StatusEscaped:
			n.Escaped++
		case StatusIsolated:
			n.Isolated++
		case StatusGrazing:
			n.Grazing++
		}
	}
	return n
}

// Herd status labels, most severe first.
const (
	LabelEscaped  = "Cow Escaped!"
	LabelIsolated = "Cow Isolated"
	LabelCalm     = "All Calm"
)

// Label summarises the herd for display.
func Label(cows []Cow) string {
	n := CountStatuses(cows)
	switch {
	case n.Escaped > 0:
		return LabelEscaped
	case n.Isolated > 0:
		return LabelIsolated
	default:
		return LabelCalm
	}
}
