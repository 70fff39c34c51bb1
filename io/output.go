package io

import (
	"bufio"
	"encoding/csv"
	"fmt"
	goio "io"
	"os"
	"path"
	"strconv"

	"github.com/logiclorenzo/ddcloud/lattice"
)

// WriteShapeFile serializes a lattice in the DDSCAT shape.dat format: a
// comment line, the occupied dipole count, the target frame vectors and
// lattice spacings, and one JA IX IY IZ ICOMP(x,y,z) row per occupied cell.
func WriteShapeFile(w goio.Writer, l *lattice.Lattice, comment string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", comment)
	fmt.Fprintf(bw, "%d = NAT\n", l.Occupied())
	fmt.Fprintf(bw, "1.000000  0.000000  0.000000 = A_1 vector\n")
	fmt.Fprintf(bw, "0.000000  1.000000  0.000000 = A_2 vector\n")
	fmt.Fprintf(bw, "1.000000  1.000000  1.000000 = "+
		"lattice spacings (d_x,d_y,d_z)/d\n")
	fmt.Fprintf(bw, "0.000000  0.000000  0.000000 = lattice offset x0(1-3) "+
		"= (x_TF,y_TF,z_TF)/d for dipole 0 0 0\n")
	fmt.Fprintf(bw, "JA  IX  IY  IZ ICOMP(x,y,z)\n")

	ja := 1
	for idx, comp := range l.Comp {
		if comp == lattice.Vacuum {
			continue
		}
		x, y, z := l.Coords(idx)
		fmt.Fprintf(bw, "%d %d %d %d %d %d %d\n", ja, x, y, z,
			comp, comp, comp)
		ja++
	}
	return bw.Flush()
}

// WriteHistCSV writes a histogram as three CSV rows: bin counts, lower bin
// edges, and upper bin edges.
func WriteHistCSV(w goio.Writer, counts []int, edges []float64) error {
	if len(edges) != len(counts)+1 {
		return fmt.Errorf(
			"Histogram has %d edges for %d bins.", len(edges), len(counts),
		)
	}
	cw := csv.NewWriter(w)

	row := make([]string, len(counts))
	for i, c := range counts {
		row[i] = strconv.Itoa(c)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	for i := range row {
		row[i] = strconv.FormatFloat(edges[i], 'g', -1, 64)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	for i := range row {
		row[i] = strconv.FormatFloat(edges[i+1], 'g', -1, 64)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistCSVFile writes a histogram CSV under dir, creating the
// directory if needed. The file is named <label>_dist.csv.
func WriteHistCSVFile(dir, label string, counts []int, edges []float64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(path.Join(dir, label+"_dist.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteHistCSV(f, counts, edges)
}
