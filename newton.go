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
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// armijo is the sufficient-decrease factor for the line search.
	armijo = 1e-4

	// maxHalvings is the number of times the Newton step may be halved
	// before the line search is considered to have stalled.
	maxHalvings = 30

	// residualTolerance bounds ‖F(y)‖₂/(1+‖y‖₂) at an accepted root.
	residualTolerance = 1e-6
)

// Newton holds the settings for the damped Newton iteration used to find
// roots of a System.
type Newton struct {
	// Tolerance is the relative step tolerance: the iteration has
	// converged when ‖Δy‖₂ <= Tolerance·(‖y‖₂ + Tolerance).
	Tolerance float64

	// MaxIterations is the maximum number of Newton steps per seed.
	MaxIterations int

	// Timeout is the maximum wall-clock time per seed. Zero means no limit.
	Timeout time.Duration
}

// DefaultNewton returns the default Newton settings.
func DefaultNewton() Newton {
	return Newton{
		Tolerance:     1e-8,
		MaxIterations: 100,
	}
}

// Validate checks the Newton settings.
func (nt Newton) Validate() error {
	if !(nt.Tolerance > 0) {
		return configError("newton: tolerance must be > 0 but is %g", nt.Tolerance)
	}
	if nt.MaxIterations < 1 {
		return configError("newton: maximum iterations must be >= 1 but is %d", nt.MaxIterations)
	}
	if nt.Timeout < 0 {
		return configError("newton: timeout must not be negative but is %v", nt.Timeout)
	}
	return nil
}

// Solve searches for a root of sys starting from y0, using the exact
// Jacobian. It returns the root and the number of iterations performed.
// y0 is not modified. An error is returned if the iteration fails, in
// which case the returned state is the last iterate.
func (nt Newton) Solve(ctx context.Context, sys *System, y0 []float64) ([]float64, int, error) {
	n := sys.N()
	if len(y0) != n {
		return nil, 0, fmt.Errorf("pbemap: seed length %d != system size %d", len(y0), n)
	}
	var deadline time.Time
	if nt.Timeout > 0 {
		deadline = time.Now().Add(nt.Timeout)
	}

	y := make([]float64, n)
	copy(y, y0)
	f := sys.RHS(nil, y)
	fNorm := floats.Norm(f, 2)
	if !finite(fNorm) {
		return y, 0, ErrNotFinite
	}
	if fNorm == 0 {
		return y, 0, nil
	}

	yTrial := make([]float64, n)
	fTrial := make([]float64, n)
	jac := mat.NewDense(n, n, nil)
	negF := mat.NewVecDense(n, nil)
	step := mat.NewVecDense(n, nil)
	var lu mat.LU

	for it := 1; it <= nt.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return y, it - 1, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return y, it - 1, fmt.Errorf("%w: exceeded time budget of %v", ErrNotConverged, nt.Timeout)
		}

		sys.Jacobian(jac, y)
		lu.Factorize(jac)
		for i, v := range f {
			negF.SetVec(i, -v)
		}
		if err := lu.SolveVecTo(step, false, negF); err != nil {
			var c mat.Condition
			if !errors.As(err, &c) || math.IsInf(float64(c), 1) || math.IsNaN(float64(c)) {
				return y, it, fmt.Errorf("%w: %v", ErrSingular, err)
			}
		}
		dy := step.RawVector().Data
		if !finite(floats.Norm(dy, 2)) {
			return y, it, ErrSingular
		}

		// Backtracking line search on ‖F‖₂.
		lambda := 1.0
		var fTrialNorm float64
		accepted := false
		for h := 0; h < maxHalvings; h++ {
			floats.AddScaledTo(yTrial, y, lambda, dy)
			sys.RHS(fTrial, yTrial)
			fTrialNorm = floats.Norm(fTrial, 2)
			if finite(fTrialNorm) && fTrialNorm <= (1-armijo*lambda)*fNorm {
				accepted = true
				break
			}
			lambda /= 2
		}
		if !accepted {
			if fNorm <= residualTolerance*(1+floats.Norm(y, 2)) {
				// No further progress is possible at this precision.
				return y, it, nil
			}
			return y, it, fmt.Errorf("%w: line search stalled with ‖F‖=%g", ErrNotConverged, fNorm)
		}

		y, yTrial = yTrial, y
		f, fTrial = fTrial, f
		fNorm = fTrialNorm

		yNorm := floats.Norm(y, 2)
		if fNorm == 0 || (lambda*floats.Norm(dy, 2) <= nt.Tolerance*(yNorm+nt.Tolerance) &&
			fNorm <= residualTolerance*(1+yNorm)) {
			return y, it, nil
		}
	}
	return y, nt.MaxIterations, fmt.Errorf("%w: reached %d iterations with ‖F‖=%g",
		ErrNotConverged, nt.MaxIterations, fNorm)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
