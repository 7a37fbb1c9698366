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
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
)

func TestNewtonValidate(t *testing.T) {
	if err := DefaultNewton().Validate(); err != nil {
		t.Fatal(err)
	}
	for _, nt := range []Newton{
		{Tolerance: 0, MaxIterations: 10},
		{Tolerance: 1e-8, MaxIterations: 0},
		{Tolerance: 1e-8, MaxIterations: 10, Timeout: -time.Second},
	} {
		if err := nt.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%+v: have %v, want ErrConfig", nt, err)
		}
	}
}

func TestNewtonLinear(t *testing.T) {
	// With a = 0 the linear operator is lower triangular with a negative
	// diagonal, so the only root is y = 0.
	sys := newTestBasis(t, 10, linearKernels()).System(Params{A: 0, B: 1, C: 1})
	y0 := DefaultSeeds(10)[2]
	y, it, err := DefaultNewton().Solve(context.Background(), sys, y0)
	if err != nil {
		t.Fatal(err)
	}
	if it < 1 {
		t.Errorf("%d iterations", it)
	}
	if norm := floats.Norm(y, 2); norm > 1e-8 {
		t.Errorf("‖y‖ = %g, want 0", norm)
	}
	if y0[0] != 30 {
		t.Error("seed was modified")
	}
}

func TestNewtonResidual(t *testing.T) {
	sys := newTestBasis(t, 20, DefaultKernels()).System(Params{A: 1, B: 0.5, C: 1})
	for i, seed := range DefaultSeeds(20) {
		y, _, err := DefaultNewton().Solve(context.Background(), sys, seed)
		if err != nil {
			continue
		}
		f := sys.RHS(nil, y)
		if r := floats.Norm(f, 2); r > residualTolerance*(1+floats.Norm(y, 2)) {
			t.Errorf("seed %d: converged with residual %g", i, r)
		}
	}
}

func TestNewtonCanceled(t *testing.T) {
	sys := newTestBasis(t, 10, DefaultKernels()).System(Params{A: 1, B: 0.5, C: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DefaultNewton().Solve(ctx, sys, DefaultSeeds(10)[0])
	if !errors.Is(err, context.Canceled) {
		t.Errorf("have %v, want context.Canceled", err)
	}
}

func TestNewtonMaxIterations(t *testing.T) {
	sys := newTestBasis(t, 10, linearKernels()).System(Params{A: 0, B: 1, C: 1})
	nt := Newton{Tolerance: 1e-8, MaxIterations: 1}
	// A linear system is solved in one step up to rounding, which is not
	// enough to pass the step tolerance.
	_, it, err := nt.Solve(context.Background(), sys, DefaultSeeds(10)[0])
	if err != nil && !errors.Is(err, ErrNotConverged) {
		t.Errorf("have %v, want nil or ErrNotConverged", err)
	}
	if it != 1 {
		t.Errorf("%d iterations, want 1", it)
	}
}

func TestNewtonSeedLength(t *testing.T) {
	sys := newTestBasis(t, 10, DefaultKernels()).System(Params{A: 1, B: 0.5, C: 1})
	if _, _, err := DefaultNewton().Solve(context.Background(), sys, make([]float64, 3)); err == nil {
		t.Error("expected an error for a short seed")
	}
}
