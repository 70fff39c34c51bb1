package cloud

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/logiclorenzo/ddcloud/geom"
)

// Generator builds ensembles and hands them to the optional persistence
// boundary. The zero value generates without persisting.
type Generator struct {
	// Store receives each successfully generated ensemble and assigns its
	// durable identifier. May be nil.
	Store EnsembleStore
	// Tracker is told that the geometry stage finished once per stored
	// ensemble. May be nil.
	Tracker CompletionTracker
}

// Generate builds an ensemble from p using the configured placement
// strategy. The same params and a non-zero seed always produce the same
// ensemble.
func (g *Generator) Generate(p Params) (*Ensemble, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	var shapes []geom.Shape
	var err error
	switch p.Strategy {
	case CellToEnsemble:
		shapes, err = cellToEnsemble(&p, rnd)
	case VolumeToEnsemble:
		shapes, err = volumeToEnsemble(&p, rnd)
	}
	if err != nil {
		return nil, err
	}
	return &Ensemble{Params: p, Shapes: shapes}, nil
}

// GenerateAndStore generates an ensemble, persists it through the store
// boundary, and marks the geometry stage done exactly once. It returns the
// ensemble together with the identifier the store assigned.
func (g *Generator) GenerateAndStore(p Params) (*Ensemble, string, error) {
	e, err := g.Generate(p)
	if err != nil {
		return nil, "", err
	}
	if g.Store == nil {
		return e, "", nil
	}
	id, err := g.Store.SaveEnsemble(e)
	if err != nil {
		return nil, "", fmt.Errorf("store ensemble: %w", err)
	}
	if g.Tracker != nil {
		if err := g.Tracker.MarkDone(id, StageGeometry); err != nil {
			return nil, "", fmt.Errorf("mark geometry done: %w", err)
		}
	}
	return e, id, nil
}

// cellGrid is the deterministic cell partition used by CellToEnsemble. The
// cell counts per axis scale with the region side lengths so cells stay as
// cubic as the region's aspect ratio allows.
type cellGrid struct {
	n    [3]int
	cell geom.Vec
}

func newCellGrid(region geom.Vec, particles int) cellGrid {
	g := cellGrid{}
	c := math.Cbrt(float64(particles) / (region[0] * region[1] * region[2]))
	for k := 0; k < 3; k++ {
		g.n[k] = int(math.Ceil(region[k] * c))
		if g.n[k] < 1 {
			g.n[k] = 1
		}
	}
	// Ceiling per axis can still undershoot for extreme aspect ratios.
	// Grow the axis with the widest cells until every particle has a cell.
	for g.n[0]*g.n[1]*g.n[2] < particles {
		widest := 0
		for k := 1; k < 3; k++ {
			if region[k]/float64(g.n[k]) > region[widest]/float64(g.n[widest]) {
				widest = k
			}
		}
		g.n[widest]++
	}
	for k := 0; k < 3; k++ {
		g.cell[k] = region[k] / float64(g.n[k])
	}
	return g
}

// origin returns the low corner of the cell with flat index idx. Cells are
// ordered x-fastest.
func (g *cellGrid) origin(idx int) geom.Vec {
	x := idx % g.n[0]
	y := (idx / g.n[0]) % g.n[1]
	z := idx / (g.n[0] * g.n[1])
	return geom.Vec{
		float64(x) * g.cell[0],
		float64(y) * g.cell[1],
		float64(z) * g.cell[2],
	}
}

// cellToEnsemble fills the first N cells of the partition with one particle
// each. A particle is jittered uniformly inside its cell shrunk by the
// particle's bounding radius, so neighboring cells can never overlap.
func cellToEnsemble(p *Params, rnd *rand.Rand) ([]geom.Shape, error) {
	counts := make([]int, len(p.Species))
	total := 0
	for i := range p.Species {
		n, err := p.targetCount(&p.Species[i])
		if err != nil {
			return nil, err
		}
		counts[i], total = n, total+n
	}

	grid := newCellGrid(p.Region, total)
	for i := range p.Species {
		sp := &p.Species[i]
		proto, err := sp.NewShape()
		if err != nil {
			return nil, err
		}
		br := proto.BoundRadius()
		for k := 0; k < 3; k++ {
			if grid.cell[k] < 2*br {
				return nil, &ConfigurationError{
					Field: "Region",
					Reason: fmt.Sprintf(
						"%s particles (bounding radius %g) do not fit the "+
							"%gx%gx%g placement cells; lower the target "+
							"population or grow the region",
						sp.Material, br,
						grid.cell[0], grid.cell[1], grid.cell[2],
					),
				}
			}
		}
	}

	shapes := make([]geom.Shape, 0, total)
	cell := 0
	for i := range p.Species {
		sp := &p.Species[i]
		for n := 0; n < counts[i]; n++ {
			proto, err := sp.NewShape()
			if err != nil {
				return nil, err
			}
			if rod, isRod := proto.(geom.Rod); isRod {
				proto = rod.WithAxis(geom.RandomDirection(rnd))
			}
			br := proto.BoundRadius()
			o := grid.origin(cell)
			center := geom.Vec{}
			for k := 0; k < 3; k++ {
				span := grid.cell[k] - 2*br
				center[k] = o[k] + br + rnd.Float64()*span
			}
			shapes = append(shapes, proto.At(center))
			cell++
		}
	}
	return shapes, nil
}

// volumeToEnsemble places particles one at a time by rejection sampling.
// Candidates are drawn uniformly from the region inset by the particle's
// bounding radius, so every accepted particle is fully contained. A
// candidate is rejected while it overlaps any accepted particle; after
// maxAttempts rejections the whole generation fails with a PlacementError.
func volumeToEnsemble(p *Params, rnd *rand.Rand) ([]geom.Shape, error) {
	budget := p.maxAttempts()

	var shapes []geom.Shape
	for i := range p.Species {
		sp := &p.Species[i]
		count, err := p.targetCount(sp)
		if err != nil {
			return nil, err
		}
		proto, err := sp.NewShape()
		if err != nil {
			return nil, err
		}
		br := proto.BoundRadius()
		for k := 0; k < 3; k++ {
			if p.Region[k] < 2*br {
				return nil, &ConfigurationError{
					Field: "Region",
					Reason: fmt.Sprintf(
						"%s particles (bounding radius %g) do not fit a "+
							"region of side %g", sp.Material, br, p.Region[k],
					),
				}
			}
		}

		for n := 0; n < count; n++ {
			cand, err := sp.NewShape()
			if err != nil {
				return nil, err
			}
			if rod, isRod := cand.(geom.Rod); isRod {
				cand = rod.WithAxis(geom.RandomDirection(rnd))
			}

			attempts := 0
			for {
				center := geom.Vec{}
				for k := 0; k < 3; k++ {
					span := p.Region[k] - 2*br
					center[k] = br + rnd.Float64()*span
				}
				placed := cand.At(center)
				if !collides(placed, shapes, p.Tol) {
					shapes = append(shapes, placed)
					break
				}
				attempts++
				if attempts >= budget {
					return nil, &PlacementError{
						Species:  sp.Material,
						Index:    len(shapes),
						Attempts: attempts,
					}
				}
				// Redraw the orientation along with the position: near the
				// packing limit a stuck rod otherwise never finds a slot.
				if rod, isRod := cand.(geom.Rod); isRod {
					cand = rod.WithAxis(geom.RandomDirection(rnd))
				}
			}
		}
	}
	return shapes, nil
}

func collides(s geom.Shape, placed []geom.Shape, tol float64) bool {
	for _, old := range placed {
		if s.Overlaps(old, tol) {
			return true
		}
	}
	return false
}
