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

// Package pbemap computes existence and linear-stability maps for steady
// states of a size-structured population balance equation (PBE) with
// aggregation, fragmentation, growth, renewal and removal of flocs.
//
// The continuous operator is discretized with an upwind finite-volume scheme
// on a uniform mesh (see NewMesh and NewBasis). For each parameter triple the
// resulting nonlinear system is searched for a positive steady state with a
// damped Newton iteration started from a fixed schedule of seed vectors
// (see Solver), and the stability of any steady state that is found is
// determined from the leading eigenvalue of the exact Jacobian
// (see LeadingEigenvalue). Sweeper runs these calculations concurrently over
// a Cartesian grid of parameters.
//
// The Jacobian includes the exact derivative of the coagulation gain,
// (Ain[m,k] + Ain[m,m-k-1])·y[m-k-1], rather than the approximation
// 2·(Ain ⊙ T(y)) that is often used for this model, so leading eigenvalues
// differ from results computed with that approximation.
package pbemap

import (
	"errors"
	"fmt"
)

// Version gives the version number.
const Version = "0.3.0"

// Errors returned by the package. Errors other than ErrConfig are only used
// to describe why an individual Newton seed was rejected; they are recorded
// but never abort a sweep.
var (
	// ErrConfig indicates an invalid mesh, kernel, or sweep configuration.
	ErrConfig = errors.New("pbemap: invalid configuration")

	// ErrSingular indicates that the Jacobian could not be factorized.
	ErrSingular = errors.New("pbemap: singular Jacobian")

	// ErrNotConverged indicates that the Newton iteration did not reach the
	// requested tolerance within its iteration or time budget.
	ErrNotConverged = errors.New("pbemap: Newton iteration did not converge")

	// ErrNotFinite indicates that a NaN or Inf was encountered.
	ErrNotFinite = errors.New("pbemap: non-finite value")

	// ErrInadmissible indicates a converged state that is not strictly
	// positive or whose Euclidean norm is not greater than one.
	ErrInadmissible = errors.New("pbemap: inadmissible steady state")
)

// Params holds the scalar model parameters. A scales the renewal (birth)
// rate, B the growth rate, and C the removal rate.
type Params struct {
	A, B, C float64
}

func (p Params) String() string {
	return fmt.Sprintf("(a=%g, b=%g, c=%g)", p.A, p.B, p.C)
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
