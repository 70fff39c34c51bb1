package io

import (
	"fmt"

	"github.com/phil-mansfield/table"
)

// NKTable holds a material's optical constants: the complex refractive
// index (n, k) sampled on a wavelength grid. Rows must be sorted by
// wavelength, which is how the solver distributions ship their tables.
type NKTable struct {
	Lambda, N, K []float64
}

// ReadNKTable reads a three column (wavelength, n, k) optical constants
// file.
func ReadNKTable(fname string) (*NKTable, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, err
	}
	t := &NKTable{Lambda: cols[0], N: cols[1], K: cols[2]}
	if len(t.Lambda) == 0 {
		return nil, fmt.Errorf("Material table '%s' is empty.", fname)
	}
	for i := 1; i < len(t.Lambda); i++ {
		if t.Lambda[i] <= t.Lambda[i-1] {
			return nil, fmt.Errorf(
				"Material table '%s' is not sorted by wavelength at row %d.",
				fname, i,
			)
		}
	}
	return t, nil
}

// IndexAt linearly interpolates the refractive index at the given
// wavelength. Wavelengths outside the tabulated range are an error rather
// than an extrapolation.
func (t *NKTable) IndexAt(lambda float64) (n, k float64, err error) {
	first, last := t.Lambda[0], t.Lambda[len(t.Lambda)-1]
	if lambda < first || lambda > last {
		return 0, 0, fmt.Errorf(
			"Wavelength %g outside the tabulated range [%g, %g].",
			lambda, first, last,
		)
	}
	if len(t.Lambda) == 1 {
		return t.N[0], t.K[0], nil
	}
	i := 1
	for t.Lambda[i] < lambda {
		i++
	}
	frac := (lambda - t.Lambda[i-1]) / (t.Lambda[i] - t.Lambda[i-1])
	n = t.N[i-1] + frac*(t.N[i]-t.N[i-1])
	k = t.K[i-1] + frac*(t.K[i]-t.K[i-1])
	return n, k, nil
}
