package io

import (
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	fname := path.Join(dir, "ensemble.config")
	if err := ioutil.WriteFile(fname, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return fname
}

const validConfig = `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 100
DipoleSize = 2.0
Strategy = v2e
Wavelength = 800
Seed = 42

[Species "plasmonic"]
Material = Au.nk
MaterialIndex = 1
Shape = sphere
Radius = 5.0
Count = 10

[Species "dielectric"]
Material = SiO2.nk
MaterialIndex = 2
Shape = rod
Radius = 4.0
Length = 20.0
VolumeFraction = 0.01
`

func TestReadEnsembleConfig(t *testing.T) {
	p, err := ReadEnsembleConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("ReadEnsembleConfig returned error: %v", err)
	}

	if p.Region != (geom.Vec{50, 50, 100}) {
		t.Errorf("region %v", p.Region)
	}
	if p.Strategy != cloud.VolumeToEnsemble {
		t.Errorf("strategy %v instead of v2e", p.Strategy)
	}
	if p.Seed != 42 || p.DipoleSize != 2 || p.Wavelength != 800 {
		t.Errorf("scalar parameters parsed wrong: %+v", p)
	}

	if len(p.Species) != 2 {
		t.Fatalf("%d species instead of 2", len(p.Species))
	}
	// Species sections are ordered by name: dielectric before plasmonic.
	d, pl := p.Species[0], p.Species[1]
	if d.Material != "SiO2.nk" || d.Kind != geom.KindRod ||
		d.Length != 20 || d.Fraction != 0.01 {
		t.Errorf("dielectric species parsed as %+v", d)
	}
	if pl.Material != "Au.nk" || pl.Kind != geom.KindSphere ||
		pl.Count != 10 || pl.MaterialIdx != 1 {
		t.Errorf("plasmonic species parsed as %+v", pl)
	}
}

func TestReadEnsembleConfigOrderIsStable(t *testing.T) {
	p1, err := ReadEnsembleConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		p2, err := ReadEnsembleConfig(writeConfig(t, validConfig))
		if err != nil {
			t.Fatal(err)
		}
		for j := range p1.Species {
			if p1.Species[j] != p2.Species[j] {
				t.Fatalf("species order changed between reads")
			}
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	p, err := ReadEnsembleConfig(writeConfig(t, ExampleEnsembleFile))
	if err != nil {
		t.Fatalf("the example config does not parse: %v", err)
	}
	if len(p.Species) != 2 {
		t.Errorf("%d species instead of 2", len(p.Species))
	}
}

func TestReadEnsembleConfigErrors(t *testing.T) {
	table := []struct {
		name string
		text string
	}{
		{"no region", `[Ensemble]
DipoleSize = 2
Strategy = c2e
[Species "a"]
Material = Au.nk
MaterialIndex = 1
Shape = sphere
Radius = 5
Count = 10
`},
		{"bad strategy", `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 50
DipoleSize = 2
Strategy = random
[Species "a"]
Material = Au.nk
MaterialIndex = 1
Shape = sphere
Radius = 5
Count = 10
`},
		{"no species", `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 50
DipoleSize = 2
Strategy = c2e
`},
		{"bad shape", `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 50
DipoleSize = 2
Strategy = c2e
[Species "a"]
Material = Au.nk
MaterialIndex = 1
Shape = cube
Radius = 5
Count = 10
`},
		{"count and fraction", `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 50
DipoleSize = 2
Strategy = c2e
[Species "a"]
Material = Au.nk
MaterialIndex = 1
Shape = sphere
Radius = 5
Count = 10
VolumeFraction = 0.1
`},
		{"negative radius", `[Ensemble]
RegionX = 50
RegionY = 50
RegionZ = 50
DipoleSize = 2
Strategy = c2e
[Species "a"]
Material = Au.nk
MaterialIndex = 1
Shape = sphere
Radius = -5
Count = 10
`},
	}
	for _, line := range table {
		if _, err := ReadEnsembleConfig(writeConfig(t, line.text)); err == nil {
			t.Errorf("%s: config was accepted", line.name)
		}
	}
}

func TestReadEnsembleConfigMissingFile(t *testing.T) {
	if _, err := ReadEnsembleConfig(path.Join(os.TempDir(), "nope.config")); err == nil {
		t.Error("missing config file was accepted")
	}
}
