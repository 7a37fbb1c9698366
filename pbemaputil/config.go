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
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pbemap"
	"github.com/spf13/cast"
)

// MeshConfig creates the discretization mesh from the Mesh.* configuration
// variables.
func MeshConfig(cfg *viper.Viper) (*pbemap.Mesh, error) {
	x0, err := cast.ToFloat64E(cfg.Get("Mesh.X0"))
	if err != nil {
		return nil, fmt.Errorf("parsing mesh configuration: Mesh.X0: %v", err)
	}
	x1, err := cast.ToFloat64E(cfg.Get("Mesh.X1"))
	if err != nil {
		return nil, fmt.Errorf("parsing mesh configuration: Mesh.X1: %v", err)
	}
	n, err := cast.ToIntE(cfg.Get("Mesh.N"))
	if err != nil {
		return nil, fmt.Errorf("parsing mesh configuration: Mesh.N: %v", err)
	}
	return pbemap.NewMesh(x0, x1, n)
}

// GridConfig creates the parameter grid from the Sweep.* configuration
// variables.
func GridConfig(cfg *viper.Viper) (pbemap.Grid, error) {
	var g pbemap.Grid
	for _, ax := range []struct {
		name string
		a    *pbemap.Axis
	}{{"A", &g.A}, {"B", &g.B}, {"C", &g.C}} {
		var err error
		name := "Sweep." + ax.name + "Min"
		if ax.a.Min, err = cast.ToFloat64E(cfg.Get(name)); err != nil {
			return g, fmt.Errorf("parsing sweep configuration: %s: %v", name, err)
		}
		name = "Sweep." + ax.name + "Max"
		if ax.a.Max, err = cast.ToFloat64E(cfg.Get(name)); err != nil {
			return g, fmt.Errorf("parsing sweep configuration: %s: %v", name, err)
		}
		name = "Sweep." + ax.name + "Num"
		if ax.a.N, err = cast.ToIntE(cfg.Get(name)); err != nil {
			return g, fmt.Errorf("parsing sweep configuration: %s: %v", name, err)
		}
	}
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("parsing sweep configuration: %w", err)
	}
	return g, nil
}

// NewtonConfig creates the Newton solver settings from the Newton.*
// configuration variables.
func NewtonConfig(cfg *viper.Viper) (pbemap.Newton, error) {
	var nt pbemap.Newton
	var err error
	if nt.Tolerance, err = cast.ToFloat64E(cfg.Get("Newton.Tolerance")); err != nil {
		return nt, fmt.Errorf("parsing newton configuration: Newton.Tolerance: %v", err)
	}
	if nt.MaxIterations, err = cast.ToIntE(cfg.Get("Newton.MaxIterations")); err != nil {
		return nt, fmt.Errorf("parsing newton configuration: Newton.MaxIterations: %v", err)
	}
	if nt.Timeout, err = cast.ToDurationE(cfg.Get("Newton.SeedTimeout")); err != nil {
		return nt, fmt.Errorf("parsing newton configuration: Newton.SeedTimeout: %v", err)
	}
	if err := nt.Validate(); err != nil {
		return nt, fmt.Errorf("parsing newton configuration: %w", err)
	}
	return nt, nil
}

// PointConfig returns the parameter triple given by the Point.*
// configuration variables.
func PointConfig(cfg *viper.Viper) (pbemap.Params, error) {
	var p pbemap.Params
	for _, v := range []struct {
		name string
		dst  *float64
	}{{"Point.A", &p.A}, {"Point.B", &p.B}, {"Point.C", &p.C}} {
		f, err := cast.ToFloat64E(cfg.Get(v.name))
		if err != nil {
			return p, fmt.Errorf("parsing point configuration: %s: %v", v.name, err)
		}
		*v.dst = f
	}
	return p, nil
}

// workersConfig returns the number of concurrent workers. Values <= 0 mean
// that the number of available CPUs is used.
func workersConfig(cfg *viper.Viper) (int, error) {
	n, err := cast.ToIntE(cfg.Get("Workers"))
	if err != nil {
		return 0, fmt.Errorf("parsing configuration: Workers: %v", err)
	}
	return n, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="pbe_region.ncf")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("pbemap: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// setLogLevel sets the level of the standard logger from the LogLevel
// configuration variable.
func setLogLevel(cfg *viper.Viper) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(cfg.GetString("LogLevel")))
	if err != nil {
		return fmt.Errorf("pbemap: LogLevel: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// configSettings returns the current value of every configuration option,
// nested by the dot-separated components of the option name.
func configSettings(cfg *viper.Viper) map[string]interface{} {
	o := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" || option.name == "spectrum" {
			continue
		}
		var v interface{}
		switch option.defaultVal.(type) {
		case float64:
			v = cast.ToFloat64(cfg.Get(option.name))
		case int:
			v = cast.ToInt(cfg.Get(option.name))
		case bool:
			v = cast.ToBool(cfg.Get(option.name))
		default:
			v = cast.ToString(cfg.Get(option.name))
		}
		parts := strings.Split(option.name, ".")
		m := o
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]interface{})
			if !ok {
				sub = make(map[string]interface{})
				m[p] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = v
	}
	return o
}
