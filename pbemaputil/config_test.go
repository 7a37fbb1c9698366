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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pbemap"
	"github.com/stretchr/testify/require"
)

func testConfig() *viper.Viper {
	cfg := viper.New()
	cfg.Set("Mesh.X0", 0.0)
	cfg.Set("Mesh.X1", "2")
	cfg.Set("Mesh.N", 40)
	cfg.Set("Sweep.AMin", 0.0)
	cfg.Set("Sweep.AMax", 1.0)
	cfg.Set("Sweep.ANum", 2)
	cfg.Set("Sweep.BMin", "0.5")
	cfg.Set("Sweep.BMax", 1.5)
	cfg.Set("Sweep.BNum", "3")
	cfg.Set("Sweep.CMin", 1.0)
	cfg.Set("Sweep.CMax", 2.0)
	cfg.Set("Sweep.CNum", 4)
	cfg.Set("Newton.Tolerance", 1e-9)
	cfg.Set("Newton.MaxIterations", 50)
	cfg.Set("Newton.SeedTimeout", "2s")
	cfg.Set("Point.A", 1.0)
	cfg.Set("Point.B", "0.5")
	cfg.Set("Point.C", 1)
	return cfg
}

func TestMeshConfig(t *testing.T) {
	m, err := MeshConfig(testConfig())
	require.NoError(t, err)
	require.Equal(t, 40, m.N)
	require.InDelta(t, 0.05, m.Dx, 1e-15)

	cfg := testConfig()
	cfg.Set("Mesh.N", 0)
	_, err = MeshConfig(cfg)
	require.True(t, errors.Is(err, pbemap.ErrConfig), "error: %v", err)

	cfg = testConfig()
	cfg.Set("Mesh.X1", "not a number")
	_, err = MeshConfig(cfg)
	require.Error(t, err)
}

func TestGridConfig(t *testing.T) {
	g, err := GridConfig(testConfig())
	require.NoError(t, err)
	require.Equal(t, pbemap.Axis{Min: 0.5, Max: 1.5, N: 3}, g.B)
	require.Equal(t, 24, g.Len())

	cfg := testConfig()
	cfg.Set("Sweep.CMax", 0.5)
	_, err = GridConfig(cfg)
	require.True(t, errors.Is(err, pbemap.ErrConfig), "error: %v", err)
}

func TestNewtonConfig(t *testing.T) {
	nt, err := NewtonConfig(testConfig())
	require.NoError(t, err)
	require.Equal(t, pbemap.Newton{Tolerance: 1e-9, MaxIterations: 50, Timeout: 2 * time.Second}, nt)

	cfg := testConfig()
	cfg.Set("Newton.MaxIterations", -1)
	_, err = NewtonConfig(cfg)
	require.True(t, errors.Is(err, pbemap.ErrConfig), "error: %v", err)
}

func TestPointConfig(t *testing.T) {
	p, err := PointConfig(testConfig())
	require.NoError(t, err)
	require.Equal(t, pbemap.Params{A: 1, B: 0.5, C: 1}, p)
}

func TestCheckOutputFile(t *testing.T) {
	_, err := checkOutputFile("")
	require.Error(t, err)

	dir := t.TempDir()
	os.Setenv("PBEMAP_TEST_DIR", dir)
	defer os.Unsetenv("PBEMAP_TEST_DIR")
	f, err := checkOutputFile("$PBEMAP_TEST_DIR/out.ncf")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "out.ncf"), f)

	_, err = checkOutputFile(filepath.Join(dir, "missing", "out.ncf"))
	require.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	cfg := viper.New()
	cfg.Set("LogLevel", "loud")
	require.Error(t, setLogLevel(cfg))
	cfg.Set("LogLevel", "warn")
	require.NoError(t, setLogLevel(cfg))
}

func TestConfigFile(t *testing.T) {
	cfg := viper.New()
	cfg.SetConfigFile("../configExample.toml")
	require.NoError(t, cfg.ReadInConfig())

	m, err := MeshConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 100, m.N)

	g, err := GridConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 1000, g.Len())

	nt, err := NewtonConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, pbemap.DefaultNewton(), nt)

	p, err := PointConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, pbemap.Params{A: 1, B: 0.5, C: 1}, p)
}
