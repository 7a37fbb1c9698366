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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// System is the discretized evolution equation dy/dt = F(y) for a single
// parameter triple. The nonlinear part of F comes from the shared Basis and
// the linear part from An.
type System struct {
	Basis  *Basis
	Params Params

	// An is the linear operator for Params, see Basis.Operator.
	An *mat.Dense
}

// N returns the number of unknowns.
func (s *System) N() int { return s.Basis.N() }

// shift returns a copy of y shifted by one index: o[0] = 0 and
// o[i] = y[i-1].
func shift(y []float64) []float64 {
	o := make([]float64, len(y))
	copy(o[1:], y[:len(y)-1])
	return o
}

// ShiftedToeplitz returns the strictly lower-triangular Toeplitz matrix
// T[m,n] = y[m-n-1] (m > n) that expresses binary coagulation as a discrete
// convolution, so that the coagulation gain is (Ain ⊙ T)·y.
func ShiftedToeplitz(y []float64) *mat.Dense {
	n := len(y)
	t := mat.NewDense(n, n, nil)
	sh := shift(y)
	for m := 1; m < n; m++ {
		for k := 0; k < m; k++ {
			t.Set(m, k, sh[m-k])
		}
	}
	return t
}

// RHS evaluates the right hand side of the evolution equation,
//  F(y) = [Ain ⊙ T(y) - diag(Aout·y) + An]·y,
// and stores the result in dst. If dst is nil a new slice is allocated.
// dst must not share memory with y.
func (s *System) RHS(dst, y []float64) []float64 {
	n := s.N()
	if len(y) != n {
		panic(mat.ErrShape)
	}
	if dst == nil {
		dst = make([]float64, n)
	} else if len(dst) != n {
		panic(mat.ErrShape)
	}
	mat.NewVecDense(n, dst).MulVec(s.An, mat.NewVecDense(n, y))

	sh := shift(y)
	for m := 0; m < n; m++ {
		loss := y[m] * floats.Dot(s.Basis.Aout.RawRowView(m), y)
		var gain float64
		ain := s.Basis.Ain.RawRowView(m)
		for k := 0; k < m; k++ {
			gain += ain[k] * sh[m-k] * y[k]
		}
		dst[m] += gain - loss
	}
	return dst
}

// Jacobian evaluates the exact Jacobian of RHS at y,
//  J(y) = An - diag(y)·Aout - diag(Aout·y) + C(y),
// where C[m,k] = (Ain[m,k] + Ain[m,m-k-1])·y[m-k-1] for m > k is the
// derivative of the coagulation gain. The result is stored in dst, which
// is allocated if nil.
func (s *System) Jacobian(dst *mat.Dense, y []float64) *mat.Dense {
	n := s.N()
	if len(y) != n {
		panic(mat.ErrShape)
	}
	if dst == nil {
		dst = mat.NewDense(n, n, nil)
	} else if r, c := dst.Dims(); r != n || c != n {
		panic(mat.ErrShape)
	}
	dst.Copy(s.An)

	sh := shift(y)
	for m := 0; m < n; m++ {
		row := dst.RawRowView(m)
		aout := s.Basis.Aout.RawRowView(m)
		floats.AddScaled(row, -y[m], aout)
		row[m] -= floats.Dot(aout, y)

		ain := s.Basis.Ain.RawRowView(m)
		for k := 0; k < m; k++ {
			row[k] += (ain[k] + ain[m-k-1]) * sh[m-k]
		}
	}
	return dst
}
