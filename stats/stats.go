/*package stats computes pair statistics over placed ensembles: center
distances, rod orientation angles, and the binned distributions written out
for physical validation.
*/
package stats

import (
	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

// Result holds the raw pair sequences of an ensemble. Every unordered pair
// appears exactly once; ensembles of fewer than two particles (or rods)
// yield empty slices.
type Result struct {
	// Distances are the center-to-center distances of every particle pair.
	Distances []float64
	// Angles are the axis angles in degrees of every rod pair.
	Angles []float64
}

// Compute returns the pair statistics of the ensemble.
func Compute(e *cloud.Ensemble) Result {
	n := len(e.Shapes)
	res := Result{}
	if n >= 2 {
		res.Distances = make([]float64, 0, n*(n-1)/2)
	}

	var axes []geom.Vec
	for i := 0; i < n; i++ {
		if rod, isRod := e.Shapes[i].(geom.Rod); isRod {
			axes = append(axes, rod.Axis)
		}
		for j := i + 1; j < n; j++ {
			d := e.Shapes[i].Center().Dist(e.Shapes[j].Center())
			res.Distances = append(res.Distances, d)
		}
	}

	for i := 0; i < len(axes); i++ {
		for j := i + 1; j < len(axes); j++ {
			res.Angles = append(res.Angles, geom.Angle(axes[i], axes[j]))
		}
	}
	return res
}

// HistInfo describes a fixed histogram binning. The binning is
// configuration, not derived per call.
type HistInfo struct {
	Min, Max float64
	Bins     int
}

// Edges returns the Bins+1 bin boundaries of the histogram.
func (info *HistInfo) Edges() []float64 {
	dx := (info.Max - info.Min) / float64(info.Bins)
	edges := make([]float64, info.Bins+1)
	for i := range edges {
		edges[i] = info.Min + dx*float64(i)
	}
	return edges
}

// Histogram bins xs linearly between info.Min and info.Max. Values outside
// the range are dropped.
func Histogram(xs []float64, info *HistInfo) []int {
	counts := make([]int, info.Bins)
	min, max := info.Min, info.Max
	fBins := float64(info.Bins)
	dx := (max - min) / fBins

	for _, x := range xs {
		idx := (x - min) / dx
		if idx < 0 || idx >= fBins {
			continue
		}
		counts[int(idx)]++
	}
	return counts
}

// Distribution is a histogram ready for serialization.
type Distribution struct {
	Counts []int
	Edges  []float64
}

// Binning defaults for Distributions, matching the validation plots the
// surrounding application renders.
const (
	angleBins    = 36
	distanceBins = 78
)

// Distributions buckets the ensemble's pairwise measurements by particle
// kind: sphere-sphere, sphere-rod, and rod-rod surface distances (segment
// distances for rods) plus sphere-rod axis angles. Distance binning spans
// [2r, 80r] around the mean sphere radius; categories without pairs are
// omitted.
func Distributions(e *cloud.Ensemble) map[string]Distribution {
	var spheres []geom.Sphere
	var rods []geom.Rod
	radii := 0.0
	for _, s := range e.Shapes {
		switch v := s.(type) {
		case geom.Sphere:
			spheres = append(spheres, v)
			radii += v.Radius
		case geom.Rod:
			rods = append(rods, v)
		}
	}

	radius := 1.0
	if len(spheres) > 0 {
		radius = radii / float64(len(spheres))
	} else if len(rods) > 0 {
		radius = 0
		for _, r := range rods {
			radius += r.Radius
		}
		radius /= float64(len(rods))
	}

	distInfo := &HistInfo{Min: 2 * radius, Max: 80 * radius, Bins: distanceBins}
	angleInfo := &HistInfo{Min: 0, Max: 180, Bins: angleBins}

	var dss, dsr, drr, angles []float64
	for i := range spheres {
		for j := i + 1; j < len(spheres); j++ {
			dss = append(dss, spheres[i].C.Dist(spheres[j].C))
		}
		for j := range rods {
			seg := rods[j].Segment()
			dsr = append(dsr, geom.PointSegDist(spheres[i].C, seg))
			angles = append(angles, sphereRodAngle(spheres[i].C, seg))
		}
	}
	for i := range rods {
		for j := i + 1; j < len(rods); j++ {
			drr = append(drr, geom.SegSegDist(rods[i].Segment(), rods[j].Segment()))
		}
	}

	out := map[string]Distribution{}
	bin := func(label string, xs []float64, info *HistInfo) {
		if len(xs) == 0 {
			return
		}
		out[label] = Distribution{Counts: Histogram(xs, info), Edges: info.Edges()}
	}
	bin("dist_ss", dss, distInfo)
	bin("dist_sr", dsr, distInfo)
	bin("dist_rr", drr, distInfo)
	bin("angle", angles, angleInfo)
	return out
}

// sphereRodAngle returns the angle in degrees between the rod axis and the
// vector from the sphere center to the rod's nearest end.
func sphereRodAngle(c geom.Vec, seg geom.Segment) float64 {
	var d, a geom.Vec
	if c.Dist(seg[0]) > c.Dist(seg[1]) {
		d = seg[0].Sub(seg[1])
		a = seg[1].Sub(c)
	} else {
		d = seg[1].Sub(seg[0])
		a = seg[0].Sub(c)
	}
	return geom.Angle(a.Normalize(), d.Normalize())
}
