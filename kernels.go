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

import "math"

// Rate is a size-dependent rate scaled by a scalar model parameter p.
// Rates used to build a Basis must be linear in p, because the basis
// samples them at p = 1 and rescales the resulting matrices.
type Rate func(x, p float64) float64

// Kernels holds the rate functions that define the model.
type Kernels struct {
	// Aggregation is the rate at which flocs of sizes x and y coalesce.
	Aggregation func(x, y float64) float64

	// FragmentDensity is the post-fragmentation density: the probability
	// density of a fragment of size y produced by a parent of size x.
	FragmentDensity func(y, x float64) float64

	// Fragmentation is the rate at which flocs of size x break up.
	Fragmentation func(x float64) float64

	Growth  Rate // growth rate, scaled by B
	Renewal Rate // renewal (birth) rate, scaled by A
	Removal Rate // removal (death) rate, scaled by C
}

// DefaultKernels returns the kernels used for the existence and stability
// maps in Mirzaev & Bortz (2015, arXiv:1507.07127).
func DefaultKernels() Kernels {
	return Kernels{
		Aggregation:     Aggregation,
		FragmentDensity: FragmentDensity,
		Fragmentation:   Fragmentation,
		Growth:          Growth,
		Renewal:         Renewal,
		Removal:         Removal,
	}
}

// Validate checks that all of the kernels are specified.
func (k Kernels) Validate() error {
	switch {
	case k.Aggregation == nil:
		return configError("kernels: missing aggregation rate")
	case k.FragmentDensity == nil:
		return configError("kernels: missing post-fragmentation density")
	case k.Fragmentation == nil:
		return configError("kernels: missing fragmentation rate")
	case k.Growth == nil:
		return configError("kernels: missing growth rate")
	case k.Renewal == nil:
		return configError("kernels: missing renewal rate")
	case k.Removal == nil:
		return configError("kernels: missing removal rate")
	}
	return nil
}

// Aggregation is the volume-additive coalescence kernel
// (x^(1/3) + y^(1/3))^3.
func Aggregation(x, y float64) float64 {
	s := math.Cbrt(x) + math.Cbrt(y)
	return s * s * s
}

// FragmentDensity is the post-fragmentation density 6y(x-y)/x^3
// for 0 <= y <= x, and zero otherwise.
func FragmentDensity(y, x float64) float64 {
	if y < 0 || y > x {
		return 0
	}
	return 6 * y * (x - y) / (x * x * x)
}

// FragmentDensities evaluates FragmentDensity for each fragment size in ys
// and the parent size x.
func FragmentDensities(ys []float64, x float64) []float64 {
	o := make([]float64, len(ys))
	for i, y := range ys {
		o[i] = FragmentDensity(y, x)
	}
	return o
}

// Fragmentation is the fragmentation rate kf(x) = x.
func Fragmentation(x float64) float64 { return x }

// Growth is the growth rate g(x; b) = b(x+1).
func Growth(x, b float64) float64 { return b * (x + 1) }

// Renewal is the renewal rate q(x; a) = a(x+1).
func Renewal(x, a float64) float64 { return a * (x + 1) }

// Removal is the removal rate rem(x; c) = cx.
func Removal(x, c float64) float64 { return c * x }
