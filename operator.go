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
	"gonum.org/v1/gonum/mat"
)

// Basis holds the parameter-independent matrices of the discretized
// operator. A Basis is built once per mesh and is never modified afterwards,
// so it can be shared by any number of concurrent calculations.
type Basis struct {
	Mesh *Mesh

	Ain  *mat.Dense     // aggregation in, strictly lower triangular
	Aout *mat.Dense     // aggregation out, upper anti-triangular band
	Fin  *mat.Dense     // fragmentation in, strictly upper triangular
	Fout *mat.DiagDense // fragmentation out

	Growth  *mat.Dense     // upwind growth (transport) operator at b = 1
	Renewal *mat.Dense     // renewal operator at a = 1; only row 0 is nonzero
	Removal *mat.DiagDense // removal operator at c = 1

	// fixed is the parameter-independent part of the linear operator,
	// Fin - Fout.
	fixed *mat.Dense
}

// NewBasis assembles the operator matrices for mesh m and kernels k.
func NewBasis(m *Mesh, k Kernels) (*Basis, error) {
	if m == nil {
		return nil, configError("basis: nil mesh")
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	n := m.N
	dx := m.Dx
	nu := m.Nu

	b := &Basis{
		Mesh:    m,
		Ain:     mat.NewDense(n, n, nil),
		Aout:    mat.NewDense(n, n, nil),
		Fin:     mat.NewDense(n, n, nil),
		Growth:  mat.NewDense(n, n, nil),
		Renewal: mat.NewDense(n, n, nil),
	}

	for mm := 0; mm < n; mm++ {
		for nn := 0; nn < n; nn++ {
			if mm > nn {
				b.Ain.Set(mm, nn, 0.5*dx*k.Aggregation(nu[mm], nu[nn+1]))
			}
			if mm+nn < n-1 {
				b.Aout.Set(mm, nn, dx*k.Aggregation(nu[mm+1], nu[nn+1]))
			}
			if nn > mm {
				b.Fin.Set(mm, nn, dx*k.FragmentDensity(nu[mm+1], nu[nn+1])*k.Fragmentation(nu[nn+1]))
			}
		}
	}

	edges := m.Edges()
	fout := make([]float64, n)
	removal := make([]float64, n)
	for i, x := range edges {
		fout[i] = 0.5 * k.Fragmentation(x)
		removal[i] = -k.Removal(x, 1)
		b.Renewal.Set(0, i, k.Renewal(x, 1))
	}
	b.Fout = mat.NewDiagDense(n, fout)
	b.Removal = mat.NewDiagDense(n, removal)

	// Upwind advection; flocs growing past the last bin leave the domain.
	for j := 0; j < n-1; j++ {
		g := k.Growth(nu[j+1], 1) / dx
		b.Growth.Set(j, j, -g)
		b.Growth.Set(j+1, j, g)
	}
	b.Growth.Set(n-1, n-1, -k.Growth(nu[n], 1)/dx)

	b.fixed = mat.NewDense(n, n, nil)
	b.fixed.Sub(b.Fin, b.Fout)
	return b, nil
}

// N returns the number of bins.
func (b *Basis) N() int { return b.Mesh.N }

// Operator returns the linear part of the discretized operator,
//  An = a*Renewal + b*Growth + c*Removal - Fout + Fin,
// formed as a linear combination of the basis matrices.
func (b *Basis) Operator(p Params) *mat.Dense {
	n := b.N()
	an := mat.NewDense(n, n, nil)
	an.Scale(p.A, b.Renewal)
	an.Add(an, b.fixed)

	var tmp mat.Dense
	tmp.Scale(p.B, b.Growth)
	an.Add(an, &tmp)
	tmp.Reset()
	tmp.Scale(p.C, b.Removal)
	an.Add(an, &tmp)
	return an
}

// System returns the discretized evolution equation for parameters p.
func (b *Basis) System(p Params) *System {
	return &System{
		Basis:  b,
		Params: p,
		An:     b.Operator(p),
	}
}
