/*package io reads generation config files and writes the artifacts the
external simulation chain consumes: DDSCAT shape files, histogram CSVs, and
material optical constant lookups.
*/
package io

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

const ExampleEnsembleFile = `[Ensemble]

#######################
# Required Parameters #
#######################

# Side lengths of the bounding box particles are placed in, in the same
# length unit as the size parameters below (usually nm).
RegionX = 100
RegionY = 100
RegionZ = 100

# Edge length of one dipole lattice cell.
DipoleSize = 2.0

# Placement strategy. One of:
# [ c2e | v2e ]
# c2e tiles the region with equal cells holding one particle each and never
# fails. v2e rejection-samples positions and fails once a particle exceeds
# its attempt budget, which happens when the volume fraction gets close to
# the packing limit.
Strategy = c2e

#######################
# Optional Parameters #
#######################

# Illumination wavelength, passed through to the solver input.
# Wavelength = 800

# Effective radius, passed through to the solver input.
# EffectiveRadius = 50

# Seed for the ensemble's random generator. Runs with the same config and
# seed reproduce the same ensemble exactly. 0 (the default) seeds from the
# clock.
# Seed = 42

# Rejection sampling budget per particle for the v2e strategy.
# MaxAttempts = 500

# Extra center distance required between particles before they count as
# overlapping.
# OverlapTol = 0.0

# Each species gets its own section. The section name doubles as a label in
# log output.
[Species "plasmonic"]
# Optical constants table of the material.
Material = Au.nk
# Composition index written to the dipole lattice. Must be positive.
MaterialIndex = 1
# One of [ sphere | rod ].
Shape = sphere
Radius = 5.0
# Exactly one of Count and VolumeFraction:
Count = 50
# VolumeFraction = 0.01

[Species "dielectric"]
Material = SiO2.nk
MaterialIndex = 2
Shape = rod
Radius = 4.0
# End-to-end rod length, hemispherical caps included.
Length = 20.0
VolumeFraction = 0.02`

// EnsembleConfig mirrors the [Ensemble] section of a config file.
type EnsembleConfig struct {
	// Required
	RegionX, RegionY, RegionZ float64
	DipoleSize                float64
	Strategy                  string

	// Optional
	Wavelength      float64
	EffectiveRadius float64
	Seed            int64
	MaxAttempts     int
	OverlapTol      float64
}

// SpeciesConfig mirrors a [Species "name"] section.
type SpeciesConfig struct {
	Material       string
	MaterialIndex  int
	Shape          string
	Radius         float64
	Length         float64
	Count          int
	VolumeFraction float64
}

// EnsembleWrapper is the gcfg target for ensemble config files.
type EnsembleWrapper struct {
	Ensemble EnsembleConfig
	Species  map[string]*SpeciesConfig
}

func (con *EnsembleConfig) ValidRegion() bool {
	return con.RegionX > 0 && con.RegionY > 0 && con.RegionZ > 0
}

func (con *EnsembleConfig) ValidDipoleSize() bool {
	return con.DipoleSize > 0
}

func (con *EnsembleConfig) ValidStrategy() bool {
	_, err := cloud.ParseStrategy(con.Strategy)
	return err == nil
}

func (sp *SpeciesConfig) CheckInit(name string) error {
	if sp.Material == "" {
		return fmt.Errorf("Need to specify Material for Species '%s'.", name)
	}
	if sp.MaterialIndex <= 0 {
		return fmt.Errorf(
			"MaterialIndex of Species '%s' must be positive.", name,
		)
	}
	switch strings.ToLower(strings.TrimSpace(sp.Shape)) {
	case "sphere", "rod":
	default:
		return fmt.Errorf(
			"Shape of Species '%s' must be one of [ sphere | rod ]. "+
				"'%s' is not recognized.", name, sp.Shape,
		)
	}
	return nil
}

// Species converts the section into a core species description.
func (sp *SpeciesConfig) toSpecies() cloud.Species {
	kind := geom.KindSphere
	if strings.ToLower(strings.TrimSpace(sp.Shape)) == "rod" {
		kind = geom.KindRod
	}
	return cloud.Species{
		Material:    sp.Material,
		MaterialIdx: sp.MaterialIndex,
		Kind:        kind,
		Radius:      sp.Radius,
		Length:      sp.Length,
		Count:       sp.Count,
		Fraction:    sp.VolumeFraction,
	}
}

// ReadEnsembleConfig parses and validates an ensemble config file and
// returns the generation parameters it describes. Species sections are
// ordered by name so a config file always maps to the same RNG consumption
// order.
func ReadEnsembleConfig(fname string) (*cloud.Params, error) {
	wrap := &EnsembleWrapper{}
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Ensemble

	if !con.ValidRegion() {
		return nil, fmt.Errorf(
			"Need positive 'RegionX', 'RegionY', and 'RegionZ' values.",
		)
	}
	if !con.ValidDipoleSize() {
		return nil, fmt.Errorf("Need a positive 'DipoleSize' value.")
	}
	if !con.ValidStrategy() {
		return nil, fmt.Errorf(
			"'Strategy' must be one of [ c2e | v2e ]. '%s' is not "+
				"recognized.", con.Strategy,
		)
	}
	if len(wrap.Species) == 0 {
		return nil, fmt.Errorf("Need at least one [Species \"name\"] section.")
	}

	names := make([]string, 0, len(wrap.Species))
	for name := range wrap.Species {
		names = append(names, name)
	}
	sort.Strings(names)

	strategy, _ := cloud.ParseStrategy(con.Strategy)
	p := &cloud.Params{
		Region:      geom.Vec{con.RegionX, con.RegionY, con.RegionZ},
		DipoleSize:  con.DipoleSize,
		Wavelength:  con.Wavelength,
		EffRadius:   con.EffectiveRadius,
		Strategy:    strategy,
		Seed:        con.Seed,
		MaxAttempts: con.MaxAttempts,
		Tol:         con.OverlapTol,
	}
	for _, name := range names {
		sp := wrap.Species[name]
		if err := sp.CheckInit(name); err != nil {
			return nil, err
		}
		p.Species = append(p.Species, sp.toSpecies())
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
