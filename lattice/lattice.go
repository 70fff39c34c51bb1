/*package lattice converts placed ensembles into the regular dipole grids
consumed by the scattering solver's shape file.
*/
package lattice

import (
	"math"

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

// Vacuum marks a lattice cell containing no particle material.
const Vacuum = 0

// naiveThreshold is the cell-count ceiling below which Discretize falls
// back to testing every cell against every shape. Above it, cells are only
// visited inside each shape's bounding box.
const naiveThreshold = 1 << 15

// Lattice is a regular grid of dipole cells over an ensemble's bounding
// box. Comp holds one material index per cell, Vacuum for empty cells,
// ordered x-fastest like every grid in this code base.
type Lattice struct {
	// CellSize is the dipole edge length.
	CellSize float64
	// Dims are the cell counts along each axis.
	Dims [3]int
	// Comp holds the per-cell material indices.
	Comp []int
}

// Idx returns the flat index of the cell at (x, y, z).
func (l *Lattice) Idx(x, y, z int) int {
	return x + y*l.Dims[0] + z*l.Dims[0]*l.Dims[1]
}

// Coords returns the (x, y, z) coordinates of the cell with flat index idx.
func (l *Lattice) Coords(idx int) (x, y, z int) {
	x = idx % l.Dims[0]
	y = (idx / l.Dims[0]) % l.Dims[1]
	z = idx / (l.Dims[0] * l.Dims[1])
	return x, y, z
}

// Len returns the total cell count.
func (l *Lattice) Len() int {
	return l.Dims[0] * l.Dims[1] * l.Dims[2]
}

// CellCenter returns the center point of the cell at (x, y, z) in the
// ensemble's coordinates.
func (l *Lattice) CellCenter(x, y, z int) geom.Vec {
	return geom.Vec{
		(float64(x) + 0.5) * l.CellSize,
		(float64(y) + 0.5) * l.CellSize,
		(float64(z) + 0.5) * l.CellSize,
	}
}

// Occupied returns the number of non-vacuum cells.
func (l *Lattice) Occupied() int {
	n := 0
	for _, c := range l.Comp {
		if c != Vacuum {
			n++
		}
	}
	return n
}

// Discretize lays a dipole grid of the given cell size over the ensemble's
// bounding box and assigns each cell the material of the first shape
// containing the cell's center, or Vacuum if there is none. Grid dimensions
// round the box extent up, so boundary cells are never clipped. The result
// is a pure function of the ensemble and cell size.
func Discretize(e *cloud.Ensemble, dipoleSize float64) (*Lattice, error) {
	if dipoleSize <= 0 {
		return nil, &geom.GeometryError{Param: "dipole size", Value: dipoleSize}
	}

	l := &Lattice{CellSize: dipoleSize}
	for k := 0; k < 3; k++ {
		l.Dims[k] = int(math.Ceil(e.Params.Region[k] / dipoleSize))
		if l.Dims[k] < 1 {
			l.Dims[k] = 1
		}
	}
	l.Comp = make([]int, l.Len())

	if l.Len() <= naiveThreshold {
		l.fillNaive(e.Shapes)
	} else {
		l.fillBounded(e.Shapes)
	}
	return l, nil
}

// fillNaive tests every cell center against every shape in ensemble order.
func (l *Lattice) fillNaive(shapes []geom.Shape) {
	for idx := range l.Comp {
		x, y, z := l.Coords(idx)
		p := l.CellCenter(x, y, z)
		for _, s := range shapes {
			if s.Contains(p) {
				l.Comp[idx] = s.Material()
				break
			}
		}
	}
}

// fillBounded visits only the cells inside each shape's bounding box.
// Shapes are rasterized in ensemble order and never overwrite an assigned
// cell, which reproduces the first-containing-shape tie break of fillNaive
// while the work drops from cells x shapes to the summed shape volumes.
func (l *Lattice) fillBounded(shapes []geom.Shape) {
	for _, s := range shapes {
		c, br := s.Center(), s.BoundRadius()

		var lo, hi [3]int
		for k := 0; k < 3; k++ {
			lo[k] = int(math.Floor((c[k] - br) / l.CellSize))
			hi[k] = int(math.Ceil((c[k] + br) / l.CellSize))
			if lo[k] < 0 {
				lo[k] = 0
			}
			if hi[k] > l.Dims[k]-1 {
				hi[k] = l.Dims[k] - 1
			}
		}

		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					idx := l.Idx(x, y, z)
					if l.Comp[idx] != Vacuum {
						continue
					}
					if s.Contains(l.CellCenter(x, y, z)) {
						l.Comp[idx] = s.Material()
					}
				}
			}
		}
	}
}
