package geom

import (
	"fmt"
	"math"
)

// Kind discriminates the shape variants.
type Kind int

const (
	KindSphere Kind = iota
	KindRod
)

// String returns the lower-case name of the shape kind.
func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindRod:
		return "rod"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// GeometryError reports a size parameter which cannot describe a valid
// geometry, e.g. "sphere radius" or "dipole size".
type GeometryError struct {
	Param string
	Value float64
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf(
		"geom: %s = %g is not a valid size", e.Param, e.Value,
	)
}

// Shape is the capability set shared by all placed particle variants. A
// Shape is a value: methods never mutate the receiver, and placement
// produces a translated copy through At.
type Shape interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Center returns the geometric center of the shape.
	Center() Vec
	// Material returns the 1-based material index of the shape.
	Material() int
	// Volume returns the continuous volume of the shape.
	Volume() float64
	// BoundRadius returns the radius of the smallest origin-centered
	// sphere that contains the shape for every orientation.
	BoundRadius() float64
	// Contains reports whether the point p lies inside the shape.
	Contains(p Vec) bool
	// Overlaps reports whether the shape and s come within tol of
	// interpenetrating.
	Overlaps(s Shape, tol float64) bool
	// At returns a copy of the shape moved so its center is at p.
	At(p Vec) Shape
}

// Sphere is a solid sphere.
type Sphere struct {
	C      Vec
	Radius float64
	Mat    int
}

// NewSphere returns an unplaced sphere centered at the origin.
func NewSphere(radius float64, mat int) (Sphere, error) {
	if radius <= 0 {
		return Sphere{}, &GeometryError{"sphere radius", radius}
	}
	return Sphere{Radius: radius, Mat: mat}, nil
}

func (s Sphere) Kind() Kind    { return KindSphere }
func (s Sphere) Center() Vec   { return s.C }
func (s Sphere) Material() int { return s.Mat }

// Volume returns 4/3 pi r^3.
func (s Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

func (s Sphere) BoundRadius() float64 { return s.Radius }

func (s Sphere) Contains(p Vec) bool {
	return p.Dist(s.C) <= s.Radius
}

func (s Sphere) At(p Vec) Shape {
	s.C = p
	return s
}

func (s Sphere) Overlaps(other Shape, tol float64) bool {
	switch o := other.(type) {
	case Sphere:
		return s.C.Dist(o.C) < s.Radius+o.Radius+tol
	case Rod:
		return PointSegDist(s.C, o.Segment()) < s.Radius+o.Radius+tol
	}
	panic("unknown shape variant: " + other.Kind().String())
}

// Rod is a spherocylinder: a cylinder of radius Radius capped by two
// hemispheres, with total end-to-end length Length. Axis is the unit
// direction of the cylinder axis.
type Rod struct {
	C      Vec
	Axis   Vec
	Radius float64
	Length float64
	Mat    int
}

// NewRod returns an unplaced rod centered at the origin and aligned with
// the z axis. Length counts the two hemispherical caps, so it must be at
// least twice the radius.
func NewRod(radius, length float64, mat int) (Rod, error) {
	if radius <= 0 {
		return Rod{}, &GeometryError{"rod radius", radius}
	}
	if length <= 0 || length < 2*radius {
		return Rod{}, &GeometryError{"rod length", length}
	}
	return Rod{
		Axis:   Vec{0, 0, 1},
		Radius: radius,
		Length: length,
		Mat:    mat,
	}, nil
}

func (r Rod) Kind() Kind    { return KindRod }
func (r Rod) Center() Vec   { return r.C }
func (r Rod) Material() int { return r.Mat }

// Segment returns the central axis segment between the two cap centers.
func (r Rod) Segment() Segment {
	h := r.Length/2 - r.Radius
	d := r.Axis.Scale(h)
	return Segment{r.C.Sub(d), r.C.Add(d)}
}

// Volume returns the cylinder volume plus the volume of the two caps.
func (r Rod) Volume() float64 {
	caps := 4.0 / 3.0 * math.Pi * r.Radius * r.Radius * r.Radius
	cyl := math.Pi * r.Radius * r.Radius * (r.Length - 2*r.Radius)
	return caps + cyl
}

func (r Rod) BoundRadius() float64 { return r.Length / 2 }

// Contains reports whether p lies within Radius of the axis segment. This
// covers the cylindrical body and both caps in a single test.
func (r Rod) Contains(p Vec) bool {
	return PointSegDist(p, r.Segment()) <= r.Radius
}

func (r Rod) At(p Vec) Shape {
	r.C = p
	return r
}

// WithAxis returns a copy of the rod realigned along the unit vector axis.
func (r Rod) WithAxis(axis Vec) Rod {
	r.Axis = axis.Normalize()
	return r
}

func (r Rod) Overlaps(other Shape, tol float64) bool {
	switch o := other.(type) {
	case Sphere:
		return PointSegDist(o.C, r.Segment()) < r.Radius+o.Radius+tol
	case Rod:
		return SegSegDist(r.Segment(), o.Segment()) < r.Radius+o.Radius+tol
	}
	panic("unknown shape variant: " + other.Kind().String())
}
