package geom

import "math"

// Segment is a finite line segment between two endpoints.
type Segment [2]Vec

// Midpoint returns the point halfway between the segment's endpoints.
func (s Segment) Midpoint() Vec {
	return s[0].Add(s[1]).Scale(0.5)
}

// PointSegDist returns the shortest distance between the point p and the
// segment s.
func PointSegDist(p Vec, s Segment) float64 {
	d := s[1].Sub(s[0])
	dd := d.Dot(d)
	if dd == 0 {
		return p.Dist(s[0])
	}
	t := p.Sub(s[0]).Dot(d) / dd
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(s[0].Add(d.Scale(t)))
}

// SegSegDist returns the shortest distance between the segments s1 and s2.
// Parallel and degenerate segments collapse onto the point-segment case.
func SegSegDist(s1, s2 Segment) float64 {
	u := s1[1].Sub(s1[0])
	v := s2[1].Sub(s2[0])
	w0 := s1[0].Sub(s2[0])

	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w0)
	e := v.Dot(w0)

	denom := a*c - b*b
	if denom == 0 {
		// Parallel or degenerate: the closest pair includes an endpoint.
		return math.Min(
			math.Min(PointSegDist(s1[0], s2), PointSegDist(s1[1], s2)),
			math.Min(PointSegDist(s2[0], s1), PointSegDist(s2[1], s1)),
		)
	}
	sc := clamp01((b*e - c*d) / denom)
	tc := clamp01((a*e - b*d) / denom)

	p1 := s1[0].Add(u.Scale(sc))
	p2 := s2[0].Add(v.Scale(tc))
	return p1.Dist(p2)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	} else if x > 1 {
		return 1
	}
	return x
}
