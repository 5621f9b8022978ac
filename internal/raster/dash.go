package raster

import (
	"math"

	"github.com/leapstack-labs/skyoverlay/pkg/render"
)

// dashRuns splits a polyline into the pieces drawn by a dash pattern. A nil
// pattern returns the polyline unchanged.
func dashRuns(pts []render.Point, pattern []float64) [][]render.Point {
	if len(pts) < 2 {
		return nil
	}
	if len(pattern) == 0 {
		return [][]render.Point{pts}
	}

	var runs [][]render.Point
	cur := []render.Point{pts[0]}
	idx, left, on := 0, pattern[0], true

	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for segLen-pos > left {
			pos += left
			t := pos / segLen
			p := render.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if on {
				cur = append(cur, p)
				runs = append(runs, cur)
				cur = nil
			} else {
				cur = []render.Point{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}
