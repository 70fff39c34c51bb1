package geom

import (
	"errors"
	"math"
	"testing"
)

func almostEq(x, y, eps float64) bool {
	return x+eps > y && x-eps < y
}

func TestSphereVolume(t *testing.T) {
	s, err := NewSphere(2, 1)
	if err != nil {
		t.Fatalf("NewSphere returned error: %v", err)
	}
	target := 4.0 / 3.0 * math.Pi * 8
	if !almostEq(s.Volume(), target, 1e-10) {
		t.Errorf("Volume of %g instead of %g", s.Volume(), target)
	}
	if s.BoundRadius() != 2 {
		t.Errorf("BoundRadius of %g instead of 2", s.BoundRadius())
	}
}

func TestRodVolume(t *testing.T) {
	// Radius 1, length 4: cylinder of height 2 plus a unit sphere.
	r, err := NewRod(1, 4, 2)
	if err != nil {
		t.Fatalf("NewRod returned error: %v", err)
	}
	target := 4.0/3.0*math.Pi + 2*math.Pi
	if !almostEq(r.Volume(), target, 1e-10) {
		t.Errorf("Volume of %g instead of %g", r.Volume(), target)
	}
	if r.BoundRadius() != 2 {
		t.Errorf("BoundRadius of %g instead of 2", r.BoundRadius())
	}
}

func TestDegenerateRodVolume(t *testing.T) {
	// Length = 2*radius leaves no cylindrical body: the rod is a sphere.
	r, err := NewRod(1.5, 3, 1)
	if err != nil {
		t.Fatalf("NewRod returned error: %v", err)
	}
	s, _ := NewSphere(1.5, 1)
	if !almostEq(r.Volume(), s.Volume(), 1e-10) {
		t.Errorf("Volume of %g instead of %g", r.Volume(), s.Volume())
	}
}

func TestInvalidSizes(t *testing.T) {
	table := []struct {
		radius, length float64
		rod            bool
	}{
		{0, 0, false},
		{-1, 0, false},
		{0, 5, true},
		{1, 0, true},
		{1, -3, true},
		{2, 3, true}, // length smaller than the two caps
	}

	for i, line := range table {
		var err error
		if line.rod {
			_, err = NewRod(line.radius, line.length, 1)
		} else {
			_, err = NewSphere(line.radius, 1)
		}
		if err == nil {
			t.Errorf("%d) no error for sizes (%g, %g)",
				i+1, line.radius, line.length)
			continue
		}
		gerr := &GeometryError{}
		if !errors.As(err, &gerr) {
			t.Errorf("%d) error %v is not a GeometryError", i+1, err)
		}
	}
}

func TestSphereContains(t *testing.T) {
	s, _ := NewSphere(1, 1)
	sp := s.At(Vec{5, 5, 5}).(Sphere)
	table := []struct {
		p  Vec
		in bool
	}{
		{Vec{5, 5, 5}, true},
		{Vec{5.9, 5, 5}, true},
		{Vec{6, 5, 5}, true}, // surface counts as inside
		{Vec{6.1, 5, 5}, false},
		{Vec{5.6, 5.6, 5.6}, false},
	}
	for i, line := range table {
		if sp.Contains(line.p) != line.in {
			t.Errorf("%d) Contains(%v) != %v", i+1, line.p, line.in)
		}
	}
}

func TestRodContains(t *testing.T) {
	r, _ := NewRod(1, 6, 1)
	rod := r.At(Vec{0, 0, 0}).(Rod)
	table := []struct {
		p  Vec
		in bool
	}{
		{Vec{0, 0, 0}, true},
		{Vec{0, 0, 2.9}, true},  // inside the far cap
		{Vec{0, 0, 3.1}, false}, // beyond the far cap
		{Vec{0.9, 0, 1}, true},
		{Vec{1.1, 0, 1}, false},
		{Vec{0.9, 0, 2.5}, false}, // outside the cap's curvature
	}
	for i, line := range table {
		if rod.Contains(line.p) != line.in {
			t.Errorf("%d) Contains(%v) != %v", i+1, line.p, line.in)
		}
	}
}

func TestSphereSphereOverlap(t *testing.T) {
	a, _ := NewSphere(1, 1)
	b, _ := NewSphere(2, 1)
	s1 := a.At(Vec{0, 0, 0})
	table := []struct {
		c        Vec
		tol      float64
		overlaps bool
	}{
		{Vec{2.9, 0, 0}, 0, true},
		{Vec{3.1, 0, 0}, 0, false},
		{Vec{3.1, 0, 0}, 0.5, true},
		{Vec{0, 10, 0}, 0, false},
	}
	for i, line := range table {
		s2 := b.At(line.c)
		if s1.Overlaps(s2, line.tol) != line.overlaps {
			t.Errorf("%d) Overlaps at %v != %v", i+1, line.c, line.overlaps)
		}
		// The test is symmetric.
		if s2.Overlaps(s1, line.tol) != line.overlaps {
			t.Errorf("%d) reversed Overlaps at %v != %v",
				i+1, line.c, line.overlaps)
		}
	}
}

func TestSphereRodOverlap(t *testing.T) {
	s, _ := NewSphere(1, 1)
	r, _ := NewRod(1, 6, 2)
	rod := r.At(Vec{0, 0, 0})

	table := []struct {
		c        Vec
		overlaps bool
	}{
		{Vec{1.9, 0, 0}, true},  // beside the cylinder body
		{Vec{2.1, 0, 0}, false},
		{Vec{0, 0, 3.9}, true},  // off the cap along the axis
		{Vec{0, 0, 4.1}, false},
	}
	for i, line := range table {
		sp := s.At(line.c)
		if sp.Overlaps(rod, 0) != line.overlaps {
			t.Errorf("%d) sphere at %v overlap != %v",
				i+1, line.c, line.overlaps)
		}
		if rod.Overlaps(sp, 0) != line.overlaps {
			t.Errorf("%d) reversed overlap at %v != %v",
				i+1, line.c, line.overlaps)
		}
	}
}

func TestRodRodOverlap(t *testing.T) {
	r, _ := NewRod(1, 6, 1)
	r1 := r.WithAxis(Vec{0, 0, 1}).At(Vec{0, 0, 0}).(Rod)
	r2 := r.WithAxis(Vec{1, 0, 0})

	table := []struct {
		c        Vec
		overlaps bool
	}{
		{Vec{0, 1.9, 0}, true}, // crossed rods, axes 1.9 apart
		{Vec{0, 2.1, 0}, false},
		{Vec{0, 0, 5.9}, true}, // stacked end on end
		{Vec{0, 0, 6.1}, false},
	}
	for i, line := range table {
		other := r2.At(line.c)
		if r1.Overlaps(other, 0) != line.overlaps {
			t.Errorf("%d) rod at %v overlap != %v", i+1, line.c, line.overlaps)
		}
	}
}

func TestRodSegment(t *testing.T) {
	r, _ := NewRod(1, 6, 1)
	rod := r.At(Vec{1, 1, 1}).(Rod)
	seg := rod.Segment()
	if !almostEq(seg[0].Dist(seg[1]), 4, 1e-10) {
		t.Errorf("axis segment length %g instead of 4", seg[0].Dist(seg[1]))
	}
	if mid := seg.Midpoint(); mid.Dist(Vec{1, 1, 1}) > 1e-10 {
		t.Errorf("axis midpoint %v is off center", mid)
	}
}
