package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/io"
	"github.com/logiclorenzo/ddcloud/lattice"
	"github.com/logiclorenzo/ddcloud/stats"
	"github.com/logiclorenzo/ddcloud/store"
)

func main() {
	var (
		generate, statsID, exampleConfig string
		dbPath, outDir                   string
	)
	vars := map[string]*string{
		"Generate":      &generate,
		"Stats":         &statsID,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&generate, "Generate", "",
		"Configuration file for [Generate] mode.",
	)
	flag.StringVar(
		&statsID, "Stats", "",
		"Ensemble id to compute pair distributions for.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Ensemble'.",
	)
	flag.StringVar(
		&dbPath, "DB", "ensembles.db",
		"Path to the ensemble database. Created if it does not exist.",
	)
	flag.StringVar(
		&outDir, "Out", ".",
		"Directory that shape and distribution files are written to.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Generate":
		p, err := io.ReadEnsembleConfig(generate)
		if err != nil {
			log.Fatal(err.Error())
		}
		generateMain(p, dbPath, outDir)
	case "Stats":
		statsMain(statsID, dbPath, outDir)
	case "ExampleConfig":
		switch exampleConfig {
		case "Ensemble":
			fmt.Println(io.ExampleEnsembleFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Ensemble'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but ddcloud "+
				"only accepts one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func generateMain(p *cloud.Params, dbPath, outDir string) {
	s, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer s.Close()

	gen := cloud.Generator{Store: s, Tracker: s}
	e, id, err := gen.GenerateAndStore(*p)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf(
		"Generated ensemble %s: %d particles, volume fraction %.4f",
		id, len(e.Shapes), e.VolumeFraction(),
	)

	l, err := lattice.Discretize(e, p.DipoleSize)
	if err != nil {
		log.Fatal(err.Error())
	}

	fname := path.Join(outDir, fmt.Sprintf("shape_%s.dat", id))
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer f.Close()

	comment := fmt.Sprintf("ddcloud ensemble %s", id)
	if err := io.WriteShapeFile(f, l, comment); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote %s: %d dipoles on a %dx%dx%d lattice",
		fname, l.Occupied(), l.Dims[0], l.Dims[1], l.Dims[2])
}

func statsMain(id, dbPath, outDir string) {
	s, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer s.Close()

	e, err := s.LoadEnsemble(id)
	if err != nil {
		log.Fatal(err.Error())
	}

	dists := stats.Distributions(e)
	if len(dists) == 0 {
		log.Fatalf("Ensemble %s has no particle pairs.", id)
	}

	for label, d := range dists {
		err := io.WriteHistCSVFile(outDir, label, d.Counts, d.Edges)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Wrote %s", path.Join(outDir, label+"_dist.csv"))
	}
}
