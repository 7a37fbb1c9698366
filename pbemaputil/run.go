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

package pbemaputil

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pbemap"
)

// Sweep calculates the steady state existence and stability map over grid
// and writes the results to outputFile. A summary is written to w.
func Sweep(ctx context.Context, w io.Writer, mesh *pbemap.Mesh, kernels pbemap.Kernels, grid pbemap.Grid,
	newton pbemap.Newton, workers int, outputFile string, log logrus.FieldLogger) error {

	basis, err := newBasis(mesh, kernels)
	if err != nil {
		return err
	}
	s := &pbemap.Sweeper{
		Basis:   basis,
		Solver:  &pbemap.Solver{Newton: newton, Log: log},
		Workers: workers,
		Log:     log,
	}
	results, err := s.Run(ctx, grid)
	if err != nil {
		return fmt.Errorf("pbemap: sweep failed: %w", err)
	}
	if err := pbemap.WriteResultsFile(outputFile, results, pbemap.MetadataFor(mesh)); err != nil {
		return err
	}
	log.WithField("file", outputFile).Info("wrote results")
	printSummary(w, pbemap.Summarize(results))
	return nil
}

// newBasis assembles the operator matrices, converting panics in
// user-specified kernels into errors.
func newBasis(mesh *pbemap.Mesh, kernels pbemap.Kernels) (b *pbemap.Basis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pbemap: assembling operator: %v", r)
		}
	}()
	return pbemap.NewBasis(mesh, kernels)
}

// Point finds the steady state for parameters p and prints its existence
// and stability to w. If spectrum is true, all Jacobian eigenvalues are
// printed as well.
func Point(ctx context.Context, w io.Writer, mesh *pbemap.Mesh, kernels pbemap.Kernels, newton pbemap.Newton,
	p pbemap.Params, spectrum bool, log logrus.FieldLogger) error {

	basis, err := newBasis(mesh, kernels)
	if err != nil {
		return err
	}
	sys := basis.System(p)
	solver := &pbemap.Solver{Newton: newton, Log: log}
	sol, err := solver.Solve(ctx, sys)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "parameters: %v\n", p)
	for _, o := range sol.Outcomes {
		status := "accepted"
		if o.Err != nil {
			status = o.Err.Error()
		}
		log.WithFields(logrus.Fields{
			"seed":       o.Seed,
			"iterations": o.Iterations,
			"norm":       o.Norm,
		}).Debug(status)
	}
	if !sol.Exists {
		fmt.Fprintf(w, "existence: 0 (no admissible steady state from %d seeds)\n", len(sol.Outcomes))
		return nil
	}
	fmt.Fprintf(w, "existence: 1 (seed %d)\n", sol.Seed)

	vals, err := pbemap.Spectrum(sys, sol.State)
	if err != nil {
		return err
	}
	lambda := real(vals[0])
	fmt.Fprintf(w, "eigenvalue: %g (%v)\n", lambda, pbemap.Classify(lambda))
	if spectrum {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "i\treal\timag")
		for i, v := range vals {
			fmt.Fprintf(tw, "%d\t%g\t%g\n", i, real(v), imag(v))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Inspect prints a summary of the result file at path to w.
func Inspect(w io.Writer, path string) error {
	results, meta, err := pbemap.ReadResultsFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "file: %s\n", path)
	fmt.Fprintf(w, "pbemap version: %s\n", meta.Version)
	fmt.Fprintf(w, "mesh: [%g, %g], %d bins\n", meta.X0, meta.X1, meta.N)
	printSummary(w, pbemap.Summarize(results))
	return nil
}

func printSummary(w io.Writer, s pbemap.Summary) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "grid points:\t%d\n", s.Points)
	fmt.Fprintf(tw, "steady state exists:\t%d\n", s.Exists)
	fmt.Fprintf(tw, "stable:\t%d\n", s.Stable)
	fmt.Fprintf(tw, "unstable:\t%d\n", s.Unstable)
	if s.Marginal > 0 {
		fmt.Fprintf(tw, "marginal:\t%d\n", s.Marginal)
	}
	if s.Failed > 0 {
		fmt.Fprintf(tw, "eigenvalue failed:\t%d\n", s.Failed)
	}
	tw.Flush()
}

// PrintConfig writes the current configuration to w in TOML format.
func PrintConfig(w io.Writer, cfg *viper.Viper) error {
	if err := toml.NewEncoder(w).Encode(configSettings(cfg)); err != nil {
		return fmt.Errorf("pbemap: encoding configuration: %v", err)
	}
	return nil
}
