package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ensembles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEnsemble(t *testing.T) *cloud.Ensemble {
	t.Helper()
	p := cloud.Params{
		Region: geom.Vec{20, 20, 20},
		Species: []cloud.Species{
			{
				Material: "Au.nk", MaterialIdx: 1,
				Kind: geom.KindSphere, Radius: 2, Count: 2,
			},
			{
				Material: "SiO2.nk", MaterialIdx: 2,
				Kind: geom.KindRod, Radius: 1, Length: 6, Count: 1,
			},
		},
		DipoleSize: 0.5,
		Wavelength: 0.5,
		Strategy:   cloud.VolumeToEnsemble,
		Seed:       7,
	}

	sphere, err := geom.NewSphere(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	rod, err := geom.NewRod(1, 6, 2)
	if err != nil {
		t.Fatal(err)
	}
	return &cloud.Ensemble{
		Params: p,
		Shapes: []geom.Shape{
			sphere.At(geom.Vec{5, 5, 5}),
			sphere.At(geom.Vec{15, 5, 5}),
			rod.WithAxis(geom.Vec{0, 0, 1}).At(geom.Vec{10, 10, 10}),
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	e := testEnsemble(t)

	id, err := s.SaveEnsemble(e)
	if err != nil {
		t.Fatalf("SaveEnsemble: %v", err)
	}
	if len(id) != 10 {
		t.Errorf("id = %q, want 10 hex chars", id)
	}

	got, err := s.LoadEnsemble(id)
	if err != nil {
		t.Fatalf("LoadEnsemble: %v", err)
	}

	assert.Equal(t, e.Params.Region, got.Params.Region)
	assert.Equal(t, e.Params.Strategy, got.Params.Strategy)
	assert.Equal(t, e.Params.DipoleSize, got.Params.DipoleSize)
	assert.Equal(t, e.Params.Seed, got.Params.Seed)

	if len(got.Shapes) != len(e.Shapes) {
		t.Fatalf("loaded %d shapes, want %d", len(got.Shapes), len(e.Shapes))
	}
	for i := range e.Shapes {
		assert.Equal(t, e.Shapes[i], got.Shapes[i], "shape %d", i)
	}

	if len(got.Params.Species) != 2 {
		t.Fatalf("loaded %d species, want 2", len(got.Params.Species))
	}
	assert.Equal(t, 2, got.Params.Species[0].Count)
	assert.Equal(t, 1, got.Params.Species[1].Count)
	assert.Equal(t, "SiO2.nk", got.Params.Species[1].Material)
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadEnsemble("deadbeef00"); err == nil {
		t.Error("LoadEnsemble on missing id did not fail")
	}
}

func TestCompletionFlags(t *testing.T) {
	s := openTestStore(t)
	id, err := s.SaveEnsemble(testEnsemble(t))
	if err != nil {
		t.Fatal(err)
	}

	stages := []cloud.Stage{
		cloud.StageGeometry, cloud.StageSimulation, cloud.StagePostprocess,
	}
	for _, stage := range stages {
		done, err := s.IsDone(id, stage)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			t.Errorf("stage %v done on fresh ensemble", stage)
		}
	}

	if err := s.MarkDone(id, cloud.StageSimulation); err != nil {
		t.Fatal(err)
	}
	// Marking twice is a no-op, not an error.
	if err := s.MarkDone(id, cloud.StageSimulation); err != nil {
		t.Fatal(err)
	}

	for _, stage := range stages {
		done, err := s.IsDone(id, stage)
		if err != nil {
			t.Fatal(err)
		}
		want := stage == cloud.StageSimulation
		if done != want {
			t.Errorf("stage %v done = %v, want %v", stage, done, want)
		}
	}

	if err := s.Reset(id, cloud.StageSimulation); err != nil {
		t.Fatal(err)
	}
	done, err := s.IsDone(id, cloud.StageSimulation)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("stage still done after Reset")
	}
}

func TestFlagsOnMissingEnsemble(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.IsDone("deadbeef00", cloud.StageGeometry); err == nil {
		t.Error("IsDone on missing id did not fail")
	}
	if err := s.MarkDone("deadbeef00", cloud.StageGeometry); err == nil {
		t.Error("MarkDone on missing id did not fail")
	}
}

func TestDeleteEnsemble(t *testing.T) {
	s := openTestStore(t)
	id, err := s.SaveEnsemble(testEnsemble(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddScattering(id, 0.5, 27, 1.2, 0.8, math.NaN()); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteEnsemble(id); err != nil {
		t.Fatalf("DeleteEnsemble: %v", err)
	}
	if _, err := s.LoadEnsemble(id); err == nil {
		t.Error("ensemble still loadable after delete")
	}
}

func TestListEnsembles(t *testing.T) {
	s := openTestStore(t)

	ids, err := s.ListEnsembles()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("fresh store lists %d ensembles", len(ids))
	}

	want := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := s.SaveEnsemble(testEnsemble(t))
		if err != nil {
			t.Fatal(err)
		}
		want[id] = true
	}

	ids, err = s.ListEnsembles()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("listed %d ensembles, want 3", len(ids))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("listed unknown id %q", id)
		}
	}
}

func TestGenerateIntoStore(t *testing.T) {
	s := openTestStore(t)
	gen := cloud.Generator{Store: s, Tracker: s}

	p := cloud.Params{
		Region: geom.Vec{10, 10, 10},
		Species: []cloud.Species{
			{
				Material: "Au.nk", MaterialIdx: 1,
				Kind: geom.KindSphere, Radius: 1, Count: 8,
			},
		},
		DipoleSize: 0.5,
		Strategy:   cloud.CellToEnsemble,
		Seed:       42,
	}

	_, id, err := gen.GenerateAndStore(p)
	if err != nil {
		t.Fatalf("GenerateAndStore: %v", err)
	}

	done, err := s.IsDone(id, cloud.StageGeometry)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("geometry stage not marked after generation")
	}

	got, err := s.LoadEnsemble(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Shapes) != 8 {
		t.Errorf("loaded %d shapes, want 8", len(got.Shapes))
	}
}
