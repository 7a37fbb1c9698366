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
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Axis is a sequence of N evenly spaced parameter values over [Min, Max).
type Axis struct {
	Min, Max float64
	N        int
}

// Validate checks that the axis is well formed.
func (a Axis) Validate() error {
	if a.N < 1 {
		return configError("axis: number of points must be >= 1 but is %d", a.N)
	}
	if math.IsNaN(a.Min) || math.IsNaN(a.Max) || math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) {
		return configError("axis: bounds must be finite; min=%g, max=%g", a.Min, a.Max)
	}
	if !(a.Max > a.Min) {
		return configError("axis: max must be greater than min; min=%g, max=%g", a.Min, a.Max)
	}
	return nil
}

// Values returns the axis values Min + i(Max-Min)/N for i = 0..N-1.
func (a Axis) Values() []float64 {
	return floats.Span(make([]float64, a.N+1), a.Min, a.Max)[:a.N]
}

// Grid is the Cartesian product of the renewal (A), growth (B) and
// removal (C) parameter axes.
type Grid struct {
	A, B, C Axis
}

// Validate checks all three axes.
func (g Grid) Validate() error {
	for _, ax := range []struct {
		name string
		a    Axis
	}{{"a", g.A}, {"b", g.B}, {"c", g.C}} {
		if err := ax.a.Validate(); err != nil {
			return fmt.Errorf("%s %w", ax.name, err)
		}
	}
	return nil
}

// Len returns the number of grid points.
func (g Grid) Len() int { return g.A.N * g.B.N * g.C.N }

// Task returns grid point i. Points are enumerated with the A index
// varying slowest and the C index varying fastest.
func (g Grid) Task(i int) Task {
	ia := i / (g.B.N * g.C.N)
	ib := (i / g.C.N) % g.B.N
	ic := i % g.C.N
	return Task{
		Index: i,
		Params: Params{
			A: g.A.Values()[ia],
			B: g.B.Values()[ib],
			C: g.C.Values()[ic],
		},
	}
}

// Tasks returns all of the grid points in enumeration order.
func (g Grid) Tasks() []Task {
	av, bv, cv := g.A.Values(), g.B.Values(), g.C.Values()
	tasks := make([]Task, 0, g.Len())
	for _, a := range av {
		for _, b := range bv {
			for _, c := range cv {
				tasks = append(tasks, Task{Index: len(tasks), Params: Params{A: a, B: b, C: c}})
			}
		}
	}
	return tasks
}

// Task is a single grid point evaluation.
type Task struct {
	Index int // position in the grid enumeration
	Params
}

// Result is the outcome of evaluating a single grid point.
type Result struct {
	Index int
	Params

	// Exists is true if a positive steady state was found.
	Exists bool

	// Eigenvalue is the leading real part of the Jacobian spectrum at the
	// steady state. It is zero by convention if Exists is false, so it
	// must not be interpreted without checking Exists.
	Eigenvalue float64

	// Seed is the index of the seed that produced the steady state,
	// or -1.
	Seed int
}

// Stability returns the stability class of the steady state. It is only
// meaningful if r.Exists is true.
func (r Result) Stability() Stability { return Classify(r.Eigenvalue) }

// Row returns the result as [a, b, c, existence, eigenvalue].
func (r Result) Row() [NumFields]float64 {
	var exists float64
	if r.Exists {
		exists = 1
	}
	return [NumFields]float64{r.A, r.B, r.C, exists, r.Eigenvalue}
}

// NumFields is the number of columns in a result table row.
const NumFields = 5

// Fields are the names of the result table columns.
var Fields = [NumFields]string{"a", "b", "c", "existence", "eigenvalue"}

// Sweeper calculates steady state existence and stability over a
// parameter grid.
type Sweeper struct {
	Basis  *Basis
	Solver *Solver

	// Workers is the number of grid points evaluated concurrently.
	// If <= 0, runtime.GOMAXPROCS(0) is used.
	Workers int

	// Log receives progress messages. If nil, the standard logger is used.
	Log logrus.FieldLogger
}

func (s *Sweeper) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s *Sweeper) workers() int {
	if s.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return s.Workers
}

// Evaluate finds the steady state and its stability for a single grid
// point. The returned error is non-nil only if ctx is canceled.
func (s *Sweeper) Evaluate(ctx context.Context, t Task) (Result, error) {
	sys := s.Basis.System(t.Params)
	sol, err := s.Solver.Solve(ctx, sys)
	if err != nil {
		return Result{}, err
	}
	r := Result{Index: t.Index, Params: t.Params, Seed: sol.Seed}
	if !sol.Exists {
		return r, nil
	}
	r.Exists = true
	r.Eigenvalue, err = LeadingEigenvalue(sys, sol.State)
	if err != nil {
		s.log().WithFields(logrus.Fields{
			"index":  t.Index,
			"params": t.Params.String(),
		}).Warn(err)
	}
	return r, nil
}

// Run evaluates every point in g and returns the results in grid
// enumeration order. If any evaluation fails unrecoverably, the sweep is
// aborted and no results are returned.
func (s *Sweeper) Run(ctx context.Context, g Grid) ([]Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if s.Basis == nil || s.Solver == nil {
		return nil, configError("sweep: basis and solver must be set")
	}
	if err := s.Solver.Newton.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	s.log().WithFields(logrus.Fields{
		"points":  g.Len(),
		"bins":    s.Basis.N(),
		"workers": s.workers(),
	}).Info("starting sweep")

	results, err := sweep(ctx, g.Tasks(), s.workers(), s.log(), s.Evaluate)
	if err != nil {
		return nil, err
	}
	s.log().WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("sweep complete")
	return results, nil
}

// sweep runs eval on each task using a pool of workers and stores each
// result at its task index.
func sweep(parent context.Context, tasks []Task, workers int, log logrus.FieldLogger,
	eval func(context.Context, Task) (Result, error)) ([]Result, error) {

	results := make([]Result, len(tasks))
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workers)

	var done, found int64
	reportEvery := int64(len(tasks)/10 + 1)

	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		t := t
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("pbemap: grid point %d %v: worker panic: %v", t.Index, t.Params, r)
				}
			}()
			res, evalErr := eval(ctx, t)
			if evalErr != nil {
				return fmt.Errorf("pbemap: grid point %d %v: %w", t.Index, t.Params, evalErr)
			}
			res.Index = t.Index
			results[t.Index] = res

			if res.Exists {
				atomic.AddInt64(&found, 1)
			}
			if n := atomic.AddInt64(&done, 1); n%reportEvery == 0 || n == int64(len(tasks)) {
				log.WithFields(logrus.Fields{
					"done":   n,
					"total":  len(tasks),
					"exists": atomic.LoadInt64(&found),
				}).Info("sweep progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
