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
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Stability is the local stability class of a steady state.
type Stability int

// Stability classes, determined by the sign of the leading eigenvalue.
const (
	Stable Stability = iota
	Marginal
	Unstable
)

func (s Stability) String() string {
	switch s {
	case Stable:
		return "stable"
	case Marginal:
		return "marginal"
	case Unstable:
		return "unstable"
	default:
		return fmt.Sprintf("Stability(%d)", int(s))
	}
}

// Classify returns the stability class for leading eigenvalue lambda.
// No tolerance is applied; values near zero are left to the caller.
func Classify(lambda float64) Stability {
	switch {
	case lambda < 0:
		return Stable
	case lambda > 0:
		return Unstable
	default:
		return Marginal
	}
}

// Spectrum returns the eigenvalues of the Jacobian of sys at y, sorted by
// decreasing real part.
func Spectrum(sys *System, y []float64) ([]complex128, error) {
	jac := sys.Jacobian(nil, y)
	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return nil, fmt.Errorf("pbemap: eigendecomposition of Jacobian did not converge for %v", sys.Params)
	}
	vals := eig.Values(nil)
	sort.SliceStable(vals, func(i, j int) bool {
		return real(vals[i]) > real(vals[j])
	})
	return vals, nil
}

// LeadingEigenvalue returns the largest real part among the eigenvalues of
// the Jacobian of sys at steady state y. A negative value means that y is
// locally asymptotically stable and a positive value that it is unstable.
func LeadingEigenvalue(sys *System, y []float64) (float64, error) {
	vals, err := Spectrum(sys, y)
	if err != nil {
		return math.NaN(), err
	}
	return real(vals[0]), nil
}
