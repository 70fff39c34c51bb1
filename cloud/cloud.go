/*package cloud generates randomly dispersed particle ensembles for discrete
dipole scattering runs.

An ensemble is built from a Params value by one of two placement strategies.
CellToEnsemble tiles the bounding box with equal cells and drops one particle
into each occupied cell, which makes non-overlap a construction guarantee.
VolumeToEnsemble places particles one at a time by rejection sampling against
everything placed so far, which converges on higher packing fractions but can
fail with a PlacementError when the attempt budget runs out.

All randomness comes from a single generator seeded by Params.Seed, so a
fixed config and seed always reproduce the same ensemble.
*/
package cloud

import (
	"fmt"
	"math"

	"github.com/logiclorenzo/ddcloud/geom"
)

// Strategy selects how particles are placed inside the bounding region.
type Strategy int

const (
	// CellToEnsemble partitions the region into equal cells holding one
	// particle each.
	CellToEnsemble Strategy = iota
	// VolumeToEnsemble rejection-samples particle positions against the
	// whole region.
	VolumeToEnsemble
)

// String returns the short config-file name of the strategy.
func (s Strategy) String() string {
	switch s {
	case CellToEnsemble:
		return "c2e"
	case VolumeToEnsemble:
		return "v2e"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a config-file strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "c2e":
		return CellToEnsemble, nil
	case "v2e":
		return VolumeToEnsemble, nil
	}
	return 0, &ConfigurationError{
		Field:  "Strategy",
		Reason: fmt.Sprintf("unknown strategy %q (want c2e or v2e)", name),
	}
}

// Species describes one particle population of an ensemble: its material,
// its shape kind and size parameters, and how much of it to place. Exactly
// one of Count and Fraction must be set.
type Species struct {
	// Material is the material identifier, usually the name of an optical
	// constants table (e.g. "Au.nk").
	Material string
	// MaterialIdx is the 1-based composition index written to the dipole
	// lattice.
	MaterialIdx int
	// Kind selects the shape variant.
	Kind geom.Kind
	// Radius is the sphere or rod radius.
	Radius float64
	// Length is the end-to-end rod length, caps included. Ignored for
	// spheres.
	Length float64
	// Count is the target population. Zero means Fraction is used instead.
	Count int
	// Fraction is the target volume fraction of the bounding region.
	Fraction float64
}

// NewShape constructs an unplaced shape for the species. The shape sits at
// the origin; placement strategies move and orient it.
func (sp *Species) NewShape() (geom.Shape, error) {
	switch sp.Kind {
	case geom.KindSphere:
		return geom.NewSphere(sp.Radius, sp.MaterialIdx)
	case geom.KindRod:
		return geom.NewRod(sp.Radius, sp.Length, sp.MaterialIdx)
	}
	return nil, &ConfigurationError{
		Field:  "Shape",
		Reason: fmt.Sprintf("unknown shape kind %v", sp.Kind),
	}
}

// Validate checks the fields the placement strategies rely on. Size
// parameters are validated by shape construction and reported as
// GeometryErrors.
func (sp *Species) Validate() error {
	if sp.Kind != geom.KindSphere && sp.Kind != geom.KindRod {
		return &ConfigurationError{
			Field:  "Shape",
			Reason: fmt.Sprintf("unknown shape kind %v", sp.Kind),
		}
	}
	if sp.MaterialIdx <= 0 {
		return &ConfigurationError{
			Field:  "MaterialIndex",
			Reason: fmt.Sprintf("must be positive, got %d", sp.MaterialIdx),
		}
	}
	if sp.Count < 0 {
		return &ConfigurationError{
			Field:  "Count",
			Reason: fmt.Sprintf("must be non-negative, got %d", sp.Count),
		}
	}
	if sp.Fraction < 0 || sp.Fraction >= 1 {
		return &ConfigurationError{
			Field:  "VolumeFraction",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", sp.Fraction),
		}
	}
	if sp.Count == 0 && sp.Fraction == 0 {
		return &ConfigurationError{
			Field:  "Count",
			Reason: "species needs either a Count or a VolumeFraction",
		}
	}
	if sp.Count > 0 && sp.Fraction > 0 {
		return &ConfigurationError{
			Field:  "Count",
			Reason: "Count and VolumeFraction are mutually exclusive",
		}
	}
	if _, err := sp.NewShape(); err != nil {
		return err
	}
	return nil
}

// DefaultMaxAttempts is the per-particle rejection sampling budget used
// when Params.MaxAttempts is zero.
const DefaultMaxAttempts = 500

// Params are the generation parameters of an ensemble.
type Params struct {
	// Region holds the side lengths of the bounding box. Particles are
	// placed fully inside [0, Region[k]] on every axis.
	Region geom.Vec
	// Species lists the particle populations to place, in order.
	Species []Species
	// DipoleSize is the lattice cell edge used by discretization.
	DipoleSize float64
	// Wavelength is the illumination wavelength, carried as metadata for
	// the simulation boundary.
	Wavelength float64
	// EffRadius is the effective radius metadata for the simulation
	// boundary.
	EffRadius float64
	// Strategy selects the placement algorithm.
	Strategy Strategy
	// Seed seeds the ensemble's random generator. Zero means the run is
	// seeded from the wall clock and is not reproducible.
	Seed int64
	// MaxAttempts bounds rejection sampling per particle. Zero selects
	// DefaultMaxAttempts.
	MaxAttempts int
	// Tol is the extra center distance required between particles before
	// they count as overlapping.
	Tol float64
}

// RegionVolume returns the volume of the bounding box.
func (p *Params) RegionVolume() float64 {
	return p.Region[0] * p.Region[1] * p.Region[2]
}

// Validate checks p before any placement work starts.
func (p *Params) Validate() error {
	for k := 0; k < 3; k++ {
		if p.Region[k] <= 0 {
			return &ConfigurationError{
				Field:  "Region",
				Reason: fmt.Sprintf("axis %d length %g", k, p.Region[k]),
			}
		}
	}
	if p.DipoleSize <= 0 {
		return &ConfigurationError{
			Field:  "DipoleSize",
			Reason: fmt.Sprintf("must be positive, got %g", p.DipoleSize),
		}
	}
	if len(p.Species) == 0 {
		return &ConfigurationError{
			Field:  "Species",
			Reason: "at least one species is required",
		}
	}
	if p.Strategy != CellToEnsemble && p.Strategy != VolumeToEnsemble {
		return &ConfigurationError{
			Field:  "Strategy",
			Reason: fmt.Sprintf("unknown strategy %v", p.Strategy),
		}
	}
	if p.MaxAttempts < 0 {
		return &ConfigurationError{
			Field:  "MaxAttempts",
			Reason: fmt.Sprintf("must be non-negative, got %d", p.MaxAttempts),
		}
	}
	if p.Tol < 0 {
		return &ConfigurationError{
			Field:  "OverlapTol",
			Reason: fmt.Sprintf("must be non-negative, got %g", p.Tol),
		}
	}
	for i := range p.Species {
		if err := p.Species[i].Validate(); err != nil {
			return fmt.Errorf("species %d: %w", i, err)
		}
	}
	return nil
}

// maxAttempts returns the per-particle attempt budget.
func (p *Params) maxAttempts() int {
	if p.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// targetCount returns the particle count a species should reach inside the
// region. Fraction-driven species round to the nearest whole particle.
func (p *Params) targetCount(sp *Species) (int, error) {
	if sp.Count > 0 {
		return sp.Count, nil
	}
	proto, err := sp.NewShape()
	if err != nil {
		return 0, err
	}
	n := int(math.Round(sp.Fraction * p.RegionVolume() / proto.Volume()))
	if n == 0 {
		return 0, &ConfigurationError{
			Field: "VolumeFraction",
			Reason: fmt.Sprintf(
				"fraction %g of a %g region rounds to zero %s particles",
				sp.Fraction, p.RegionVolume(), sp.Material,
			),
		}
	}
	return n, nil
}

// Ensemble is an ordered set of placed particles together with the
// parameters that generated them.
type Ensemble struct {
	Params Params
	Shapes []geom.Shape
}

// VolumeFraction returns the realized total particle volume divided by the
// bounding region volume.
func (e *Ensemble) VolumeFraction() float64 {
	total := 0.0
	for _, s := range e.Shapes {
		total += s.Volume()
	}
	return total / e.Params.RegionVolume()
}

// Overlapping returns the indexes of the first overlapping particle pair,
// or ok = false if the ensemble is overlap free.
func (e *Ensemble) Overlapping() (i, j int, ok bool) {
	for i := 0; i < len(e.Shapes); i++ {
		for j := i + 1; j < len(e.Shapes); j++ {
			if e.Shapes[i].Overlaps(e.Shapes[j], e.Params.Tol) {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}
