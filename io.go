/*
Copyright © 2024 the pbemap authors.
This file is part of pbemap.

pbemap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pbemap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pbemap.  If not, see <http://www.gnu.org/licenses/>.
*/

package pbemap

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// Metadata describes the discretization used to produce a result table.
type Metadata struct {
	X0, X1  float64 // domain bounds
	N       int     // number of bins
	Version string  // pbemap version
}

// MetadataFor returns the metadata describing mesh m.
func MetadataFor(m *Mesh) Metadata {
	return Metadata{X0: m.X0, X1: m.X1, N: m.N, Version: Version}
}

// WriteResults writes results to w as a NetCDF file. The table is stored
// in the variable "results" with dimensions (point, field), where the
// fields are [a, b, c, existence, eigenvalue]. The accepted seed index of
// each point is stored in the variable "seed".
func WriteResults(w cdf.ReaderWriterAt, results []Result, meta Metadata) error {
	if len(results) == 0 {
		return fmt.Errorf("pbemap: writing results: no results to write")
	}
	h := cdf.NewHeader([]string{"point", "field"}, []int{len(results), NumFields})
	h.AddAttribute("", "title", "PBE steady state existence and stability")
	h.AddAttribute("", "version", meta.Version)
	h.AddAttribute("", "x0", []float64{meta.X0})
	h.AddAttribute("", "x1", []float64{meta.X1})
	h.AddAttribute("", "N", []int32{int32(meta.N)})

	h.AddVariable("results", []string{"point", "field"}, []float64{0})
	h.AddAttribute("results", "description", "Grid point parameters, steady state existence flag, and leading Jacobian eigenvalue")
	h.AddAttribute("results", "columns", strings.Join(Fields[:], " "))

	h.AddVariable("seed", []string{"point"}, []int32{0})
	h.AddAttribute("seed", "description", "Index of the Newton seed that produced the steady state, or -1")
	h.Define()

	for _, err := range h.Check() {
		return fmt.Errorf("pbemap: creating results netcdf header: %v", err)
	}
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("pbemap: creating results netcdf file: %v", err)
	}

	table := make([]float64, 0, len(results)*NumFields)
	seeds := make([]int32, len(results))
	for i, r := range results {
		row := r.Row()
		table = append(table, row[:]...)
		seeds[i] = int32(r.Seed)
	}
	if _, err := f.Writer("results", []int{0, 0}, []int{len(results), NumFields}).Write(table); err != nil {
		return fmt.Errorf("pbemap: writing results table: %v", err)
	}
	if _, err := f.Writer("seed", []int{0}, []int{len(results)}).Write(seeds); err != nil {
		return fmt.Errorf("pbemap: writing seed indices: %v", err)
	}
	return nil
}

// ReadResults reads a result table written by WriteResults.
func ReadResults(r cdf.ReaderWriterAt) ([]Result, Metadata, error) {
	var meta Metadata
	f, err := cdf.Open(r)
	if err != nil {
		return nil, meta, fmt.Errorf("pbemap: opening results netcdf file: %v", err)
	}
	lengths := f.Header.Lengths("results")
	if len(lengths) != 2 || lengths[1] != NumFields {
		return nil, meta, fmt.Errorf("pbemap: results variable has shape %v; want [n %d]", lengths, NumFields)
	}
	n := lengths[0]

	if v, ok := f.Header.GetAttribute("", "x0").([]float64); ok && len(v) == 1 {
		meta.X0 = v[0]
	}
	if v, ok := f.Header.GetAttribute("", "x1").([]float64); ok && len(v) == 1 {
		meta.X1 = v[0]
	}
	if v, ok := f.Header.GetAttribute("", "N").([]int32); ok && len(v) == 1 {
		meta.N = int(v[0])
	}
	if v, ok := f.Header.GetAttribute("", "version").(string); ok {
		meta.Version = v
	}

	rr := f.Reader("results", nil, nil)
	buf := rr.Zero(n * NumFields)
	if _, err := rr.Read(buf); err != nil {
		return nil, meta, fmt.Errorf("pbemap: reading results table: %v", err)
	}
	table := buf.([]float64)

	sr := f.Reader("seed", nil, nil)
	sbuf := sr.Zero(n)
	if _, err := sr.Read(sbuf); err != nil {
		return nil, meta, fmt.Errorf("pbemap: reading seed indices: %v", err)
	}
	seeds := sbuf.([]int32)

	results := make([]Result, n)
	for i := range results {
		row := table[i*NumFields : (i+1)*NumFields]
		results[i] = Result{
			Index:      i,
			Params:     Params{A: row[0], B: row[1], C: row[2]},
			Exists:     row[3] == 1,
			Eigenvalue: row[4],
			Seed:       int(seeds[i]),
		}
	}
	return results, meta, nil
}

// WriteResultsFile writes results to a new NetCDF file at path. If writing
// fails, the partially written file is removed.
func WriteResultsFile(path string, results []Result, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pbemap: creating output file: %v", err)
	}
	if err := WriteResults(f, results, meta); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("pbemap: closing output file: %v", err)
	}
	return nil
}

// ReadResultsFile reads a result table from the NetCDF file at path.
func ReadResultsFile(path string) ([]Result, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("pbemap: opening results file: %v", err)
	}
	defer f.Close()
	return ReadResults(f)
}

// Summary holds counts of grid point outcomes.
type Summary struct {
	Points   int // total grid points
	Exists   int // points with a positive steady state
	Stable   int // points with a stable steady state
	Unstable int // points with an unstable steady state
	Marginal int // points with a leading eigenvalue of exactly zero
	Failed   int // points with a steady state but no eigenvalue
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{Points: len(results)}
	for _, r := range results {
		if !r.Exists {
			continue
		}
		s.Exists++
		if r.Eigenvalue != r.Eigenvalue { // NaN
			s.Failed++
			continue
		}
		switch r.Stability() {
		case Stable:
			s.Stable++
		case Unstable:
			s.Unstable++
		default:
			s.Marginal++
		}
	}
	return s
}
