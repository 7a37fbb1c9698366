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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// NumSeeds is the number of seed vectors in the default seed schedule.
const NumSeeds = 10

// SeedSchedule is an ordered list of initial guesses for the Newton
// iteration.
type SeedSchedule [][]float64

// DefaultSeeds returns the default schedule of NumSeeds seeds of length n.
// Seeds 0-4 are constant vectors with value 10(k+1); seeds 5-9 are ramps
// 10(k-4)·i for bin index i.
func DefaultSeeds(n int) SeedSchedule {
	seeds := make(SeedSchedule, NumSeeds)
	for k := range seeds {
		s := make([]float64, n)
		if k < 5 {
			floats.AddConst(10*float64(k+1), s)
		} else {
			for i := range s {
				s[i] = 10 * float64(k-4) * float64(i)
			}
		}
		seeds[k] = s
	}
	return seeds
}

// SolverState is the state of the seed-retry state machine.
type SolverState int

// The solver starts in SeedAttempt and ends in either Converged or
// Exhausted.
const (
	SeedAttempt SolverState = iota
	Converged
	Exhausted
)

func (s SolverState) String() string {
	switch s {
	case SeedAttempt:
		return "SeedAttempt"
	case Converged:
		return "Converged"
	case Exhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("SolverState(%d)", int(s))
	}
}

// seedMachine tracks progress through a seed schedule.
type seedMachine struct {
	state  SolverState
	seed   int
	nSeeds int
}

func newSeedMachine(nSeeds int) *seedMachine {
	m := &seedMachine{nSeeds: nSeeds}
	if nSeeds == 0 {
		m.state = Exhausted
	}
	return m
}

// advance moves the machine forward after the current seed has been
// attempted.
func (m *seedMachine) advance(accepted bool) {
	if m.state != SeedAttempt {
		return
	}
	if accepted {
		m.state = Converged
		return
	}
	m.seed++
	if m.seed >= m.nSeeds {
		m.state = Exhausted
	}
}

// SeedOutcome records the result of a single Newton attempt.
type SeedOutcome struct {
	Seed       int     // index into the seed schedule
	Iterations int     // Newton iterations performed
	Norm       float64 // Euclidean norm of the final iterate
	Err        error   // nil if the candidate was accepted
}

// Solution is the result of a steady-state search.
type Solution struct {
	// Exists is true if an admissible steady state was found.
	Exists bool

	// State is the accepted steady state, or nil if none was found.
	State []float64

	// Seed is the index of the seed that produced State, or -1.
	Seed int

	// Outcomes holds a record for each seed that was attempted.
	Outcomes []SeedOutcome

	// Final is the final state of the solver, either Converged or Exhausted.
	Final SolverState
}

// Admissible returns nil if y is an acceptable steady state: strictly
// positive in every component and with Euclidean norm greater than one.
func Admissible(y []float64) error {
	if norm := floats.Norm(y, 2); !(norm > 1) {
		return fmt.Errorf("%w: ‖y‖₂=%g is not > 1", ErrInadmissible, norm)
	}
	for i, v := range y {
		if !(v > 0) {
			return fmt.Errorf("%w: y[%d]=%g is not > 0", ErrInadmissible, i, v)
		}
	}
	return nil
}

// Solver searches for positive steady states by running a Newton
// iteration from each seed in turn until an admissible state is found.
type Solver struct {
	Newton Newton

	// Seeds returns the seed schedule for a system with n unknowns.
	// If nil, DefaultSeeds is used.
	Seeds func(n int) SeedSchedule

	// Log receives per-seed diagnostics. If nil, the standard logger
	// is used.
	Log logrus.FieldLogger
}

// NewSolver returns a solver with the default Newton settings and seed
// schedule.
func NewSolver() *Solver {
	return &Solver{Newton: DefaultNewton()}
}

func (s *Solver) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Solve searches for an admissible steady state of sys. Failures of
// individual seeds are recorded in the returned Solution; an error is only
// returned if ctx is canceled.
func (s *Solver) Solve(ctx context.Context, sys *System) (*Solution, error) {
	seedsFunc := s.Seeds
	if seedsFunc == nil {
		seedsFunc = DefaultSeeds
	}
	seeds := seedsFunc(sys.N())

	sol := &Solution{Seed: -1}
	m := newSeedMachine(len(seeds))
	for m.state == SeedAttempt {
		y, it, err := s.attempt(ctx, sys, seeds[m.seed])
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil {
			err = Admissible(y)
		}
		sol.Outcomes = append(sol.Outcomes, SeedOutcome{
			Seed:       m.seed,
			Iterations: it,
			Norm:       floats.Norm(y, 2),
			Err:        err,
		})
		if err != nil {
			s.log().WithFields(logrus.Fields{
				"params":     sys.Params.String(),
				"seed":       m.seed,
				"iterations": it,
			}).Debugf("seed rejected: %v", err)
		} else {
			sol.Exists = true
			sol.State = y
			sol.Seed = m.seed
		}
		m.advance(err == nil)
	}
	sol.Final = m.state
	return sol, nil
}

// attempt runs the Newton iteration from a single seed, converting any
// panic in the numerical routines into an error.
func (s *Solver) attempt(ctx context.Context, sys *System, seed []float64) (y []float64, it int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: newton panic: %v", ErrNotConverged, r)
		}
	}()
	return s.Newton.Solve(ctx, sys, seed)
}
