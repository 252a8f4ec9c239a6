package geo

import (
	"math"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Decluster removes spatially redundant stations so that no two retained
// points lie closer than minSep meters.
//
// Points strictly outside the projected bounds are discarded first. The
// remaining points are scanned in input order with an accumulating exclusion
// set: a scan point that is already excluded is skipped; otherwise all
// points within minSep of it (itself included, prior exclusions included)
// form a cluster, and every cluster member except the lowest-index one is
// excluded. The greedy, order-dependent pass and its first-wins tie-break
// are a behavioral contract: outputs must be reproducible across runs, so
// do not "improve" this into a globally optimal thinning.
func Decluster(points []domain.ProjectedPoint, bounds domain.ProjectedBounds, minSep float64) []domain.ProjectedPoint {
	inBounds := make([]domain.ProjectedPoint, 0, len(points))
	for _, pt := range points {
		if bounds.Contains(pt.X, pt.Y) {
			inBounds = append(inBounds, pt)
		}
	}

	excluded := make([]bool, len(inBounds))
	for i := range inBounds {
		if excluded[i] {
			continue
		}

		first := -1
		var cluster []int
		for j := range inBounds {
			if distance(inBounds[i], inBounds[j]) < minSep {
				cluster = append(cluster, j)
				if first < 0 {
					first = j
				}
			}
		}
		if len(cluster) > 1 {
			for _, j := range cluster {
				if j != first {
					excluded[j] = true
				}
			}
		}
	}

	kept := make([]domain.ProjectedPoint, 0, len(inBounds))
	for i, pt := range inBounds {
		if !excluded[i] {
			kept = append(kept, pt)
		}
	}
	return kept
}

func distance(a, b domain.ProjectedPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
