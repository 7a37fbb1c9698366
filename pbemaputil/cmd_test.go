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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/pbemap"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	Root.SetOut(&buf)
	Root.SetArgs(args)
	err := Root.Execute()
	Root.SetOut(nil)
	require.NoError(t, err)
	return buf.String()
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	require.Equal(t, "pbemap v"+pbemap.Version+"\n", out)
}

func TestPoint(t *testing.T) {
	Cfg.Set("LogLevel", "error")
	Cfg.Set("Mesh.N", 12)
	Cfg.Set("spectrum", true)
	defer Cfg.Set("spectrum", false)
	out := execute(t, "point")
	require.Contains(t, out, "parameters: (a=1, b=0.5, c=1)")
	require.Contains(t, out, "existence: ")
}

func TestSweepInspect(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "sweep.ncf")
	Cfg.Set("LogLevel", "error")
	Cfg.Set("Mesh.N", 8)
	Cfg.Set("Sweep.ANum", 2)
	Cfg.Set("Sweep.BNum", 2)
	Cfg.Set("Sweep.CNum", 2)
	Cfg.Set("Workers", 2)
	Cfg.Set("OutputFile", outFile)

	out := execute(t, "sweep")
	require.Contains(t, out, "grid points:")

	results, meta, err := pbemap.ReadResultsFile(outFile)
	require.NoError(t, err)
	require.Len(t, results, 8)
	require.Equal(t, 8, meta.N)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		if !r.Exists {
			require.Equal(t, 0.0, r.Eigenvalue)
			require.Equal(t, -1, r.Seed)
		}
	}

	out = execute(t, "inspect", outFile)
	require.Contains(t, out, "mesh: [0, 1], 8 bins")
	require.Regexp(t, `grid points:\s+8\n`, out)
}

func TestPrintConfig(t *testing.T) {
	Cfg.Set("Mesh.N", 25)
	out := execute(t, "config")

	var c struct {
		LogLevel string
		Mesh     struct {
			X0, X1 float64
			N      int
		}
		Newton struct {
			Tolerance     float64
			MaxIterations int
			SeedTimeout   string
		}
		Sweep struct {
			ANum int
		}
	}
	_, err := toml.Decode(out, &c)
	require.NoError(t, err)
	require.Equal(t, 25, c.Mesh.N)
	require.Equal(t, 1.0, c.Mesh.X1)
	require.Equal(t, 100, c.Newton.MaxIterations)
	require.Equal(t, "0s", c.Newton.SeedTimeout)
}
