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

package pbemaputil

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/pbemap"
	"github.com/spf13/cast"
)

// kernelFunctions are the functions available in kernel expressions.
var kernelFunctions = map[string]govaluate.ExpressionFunction{
	"cbrt": unary(math.Cbrt),
	"sqrt": unary(math.Sqrt),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow takes 2 arguments but got %d", len(args))
		}
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToFloat64E(args[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(x, y), nil
	},
}

func unary(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("function takes 1 argument but got %d", len(args))
		}
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

// kernelExpression is a rate kernel given as an arithmetic expression of
// the named variables.
type kernelExpression struct {
	name string
	expr *govaluate.EvaluableExpression
	vars []string
}

func newKernelExpression(name, expression string, vars ...string) (*kernelExpression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, kernelFunctions)
	if err != nil {
		return nil, fmt.Errorf("parsing kernel configuration: %s=%q: %v", name, expression, err)
	}
	allowed := make(map[string]bool)
	for _, v := range vars {
		allowed[v] = true
	}
	for _, v := range expr.Vars() {
		if !allowed[v] {
			return nil, fmt.Errorf("parsing kernel configuration: %s=%q: unknown variable %q; allowed variables are %s",
				name, expression, v, strings.Join(vars, ", "))
		}
	}
	return &kernelExpression{name: name, expr: expr, vars: vars}, nil
}

// eval evaluates the expression. Evaluation errors cause a panic, which
// newBasis converts into an error.
func (k *kernelExpression) eval(vals ...float64) float64 {
	params := make(map[string]interface{}, len(k.vars))
	for i, v := range k.vars {
		params[v] = vals[i]
	}
	r, err := k.expr.Evaluate(params)
	if err != nil {
		panic(fmt.Errorf("evaluating %s: %v", k.name, err))
	}
	f, err := cast.ToFloat64E(r)
	if err != nil {
		panic(fmt.Errorf("evaluating %s: %v", k.name, err))
	}
	return f
}

// check evaluates the expression once at a representative point.
func (k *kernelExpression) check() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing kernel configuration: %v", r)
		}
	}()
	vals := make([]float64, len(k.vars))
	for i := range vals {
		vals[i] = 0.5
	}
	k.eval(vals...)
	return nil
}

// KernelsConfig returns the rate kernels given by the Kernels.*
// configuration variables. Kernels that are not specified take their
// default values. Aggregation is a function of the floc sizes x and y,
// FragmentDensity of the fragment size y and parent size x, Fragmentation
// of x, and Growth, Renewal, and Removal of x and the scaling parameter p.
// The last three must be linear in p.
func KernelsConfig(cfg *viper.Viper) (pbemap.Kernels, error) {
	k := pbemap.DefaultKernels()
	for _, d := range []struct {
		name string
		vars []string
		set  func(*kernelExpression)
	}{
		{"Kernels.Aggregation", []string{"x", "y"}, func(e *kernelExpression) {
			k.Aggregation = func(x, y float64) float64 { return e.eval(x, y) }
		}},
		{"Kernels.FragmentDensity", []string{"y", "x"}, func(e *kernelExpression) {
			k.FragmentDensity = func(y, x float64) float64 {
				if y < 0 || y > x {
					return 0
				}
				return e.eval(y, x)
			}
		}},
		{"Kernels.Fragmentation", []string{"x"}, func(e *kernelExpression) {
			k.Fragmentation = func(x float64) float64 { return e.eval(x) }
		}},
		{"Kernels.Growth", []string{"x", "p"}, func(e *kernelExpression) {
			k.Growth = func(x, p float64) float64 { return e.eval(x, p) }
		}},
		{"Kernels.Renewal", []string{"x", "p"}, func(e *kernelExpression) {
			k.Renewal = func(x, p float64) float64 { return e.eval(x, p) }
		}},
		{"Kernels.Removal", []string{"x", "p"}, func(e *kernelExpression) {
			k.Removal = func(x, p float64) float64 { return e.eval(x, p) }
		}},
	} {
		s := strings.TrimSpace(cast.ToString(cfg.Get(d.name)))
		if s == "" {
			continue
		}
		e, err := newKernelExpression(d.name, s, d.vars...)
		if err != nil {
			return k, err
		}
		if err := e.check(); err != nil {
			return k, err
		}
		d.set(e)
	}
	return k, nil
}
