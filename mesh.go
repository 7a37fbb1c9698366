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
	"math"

	"gonum.org/v1/gonum/floats"
)

// Mesh is a uniform partition of the bounded floc size domain [X0, X1]
// into N bins.
type Mesh struct {
	X0, X1 float64 // domain bounds
	N      int     // number of bins
	Dx     float64 // bin width

	// Nu holds the N+1 bin boundaries, Nu[i] = X0 + i*Dx.
	Nu []float64
}

// NewMesh creates a uniform mesh with n bins spanning [x0, x1].
func NewMesh(x0, x1 float64, n int) (*Mesh, error) {
	if n < 1 {
		return nil, configError("mesh: number of bins must be at least 1 but is %d", n)
	}
	if math.IsNaN(x0) || math.IsNaN(x1) || math.IsInf(x0, 0) || math.IsInf(x1, 0) {
		return nil, configError("mesh: domain bounds must be finite; x0=%g, x1=%g", x0, x1)
	}
	if !(x1 > x0) {
		return nil, configError("mesh: x1 must be greater than x0; x0=%g, x1=%g", x0, x1)
	}
	m := &Mesh{
		X0: x0,
		X1: x1,
		N:  n,
		Dx: (x1 - x0) / float64(n),
		Nu: floats.Span(make([]float64, n+1), x0, x1),
	}
	return m, nil
}

// Edges returns the right-hand boundary of each bin, Nu[1:N+1]. All of the
// rate kernels are sampled at these points. The returned slice must not be
// modified.
func (m *Mesh) Edges() []float64 {
	return m.Nu[1:]
}

