package main

import (
	"encoding/csv"
	"os"
	"path"
	"strconv"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
)

// Plots a pair distribution written by the Stats mode. Usage:
//     go run plot_hist.go angle_dist.csv
func main() {
	fname := os.Args[1]

	counts, lows, highs := readHist(fname)

	xs := make([]float64, 2*len(counts))
	ys := make([]float64, 2*len(counts))
	for i := range counts {
		xs[2*i], xs[2*i+1] = lows[i], highs[i]
		ys[2*i], ys[2*i+1] = counts[i], counts[i]
	}

	label := strings.TrimSuffix(path.Base(fname), "_dist.csv")

	plt.Reset()
	plt.Plot(xs, ys, "b", plt.LW(2))
	plt.Title(label)
	plt.XLabel("Pair separation")
	plt.YLabel("Count")
	plt.Show()
}

func readHist(fname string) (counts, lows, highs []float64) {
	f, err := os.Open(fname)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		panic(err)
	}
	if len(rows) != 3 {
		panic("Distribution files must have exactly three rows.")
	}

	return parseRow(rows[0]), parseRow(rows[1]), parseRow(rows[2])
}

func parseRow(row []string) []float64 {
	xs := make([]float64, len(row))
	for i := range row {
		x, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			panic(err)
		}
		xs[i] = x
	}
	return xs
}
