/*package geom contains the geometric primitives used to build particle
ensembles: vectors, spheres, and spherocylindrical rods.

Distance routines follow the segment-distance formulations in Schneider &
Eberly, "Geometric Tools for Computer Graphics".
*/
package geom

import (
	"math"
	"math/rand"
)

// Vec is a three dimensional vector.
type Vec [3]float64

// Add returns the component-wise sum of v and u.
func (v Vec) Add(u Vec) Vec {
	return Vec{v[0] + u[0], v[1] + u[1], v[2] + u[2]}
}

// Sub returns the component-wise difference of v and u.
func (v Vec) Sub(u Vec) Vec {
	return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]}
}

// Scale returns v multiplied by the scalar a.
func (v Vec) Scale(a float64) Vec {
	return Vec{v[0] * a, v[1] * a, v[2] * a}
}

// Dot returns the inner product of v and u.
func (v Vec) Dot(u Vec) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between v and u.
func (v Vec) Dist(u Vec) float64 {
	return v.Sub(u).Norm()
}

// Normalize returns the unit vector pointing in the direction of v. The
// zero vector is returned unchanged.
func (v Vec) Normalize() Vec {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// RandomDirection returns a unit vector drawn uniformly from the sphere.
// The polar angle is sampled through its cosine so the distribution has no
// pole clustering.
func RandomDirection(rnd *rand.Rand) Vec {
	phi := rnd.Float64() * 2 * math.Pi
	cosTheta := 2*rnd.Float64() - 1
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	return Vec{
		sinTheta * math.Cos(phi),
		sinTheta * math.Sin(phi),
		cosTheta,
	}
}

// Angle returns the angle between the unit vectors u and v in degrees. The
// inner product is clamped to [-1, +1] before the inverse cosine so that
// floating point overshoot past the domain boundary cannot produce NaN.
func Angle(u, v Vec) float64 {
	dot := u.Dot(v)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) * 180 / math.Pi
}
