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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func testResults() []Result {
	return []Result{
		{Index: 0, Params: Params{A: 0, B: 0, C: 0}, Seed: -1},
		{Index: 1, Params: Params{A: 0, B: 0, C: 0.5}, Exists: true, Eigenvalue: -1.25, Seed: 3},
		{Index: 2, Params: Params{A: 0, B: 0.5, C: 0}, Exists: true, Eigenvalue: 0.75, Seed: 0},
		{Index: 3, Params: Params{A: 0, B: 0.5, C: 0.5}, Exists: true, Eigenvalue: math.NaN(), Seed: 9},
	}
}

func TestResultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.ncf")
	want := testResults()
	meta := Metadata{X0: 0, X1: 1, N: 100, Version: Version}
	if err := WriteResultsFile(path, want, meta); err != nil {
		t.Fatal(err)
	}
	have, haveMeta, err := ReadResultsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(meta, haveMeta); diff != "" {
		t.Errorf("metadata mismatch (-want +have):\n%s", diff)
	}
	if diff := cmp.Diff(want, have, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("results mismatch (-want +have):\n%s", diff)
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ncf")
	if err := WriteResultsFile(path, nil, Metadata{}); err == nil {
		t.Error("expected an error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed write left %s on disk: %v", path, err)
	}
}

func TestWriteResultsSinglePoint(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "single.ncf"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := []Result{{Params: Params{A: 1, B: 0.5, C: 1}, Exists: true, Eigenvalue: -0.949, Seed: 0}}
	if err := WriteResults(f, want, Metadata{X0: 0, X1: 1, N: 100, Version: Version}); err != nil {
		t.Fatal(err)
	}
	have, _, err := ReadResults(f)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("results mismatch (-want +have):\n%s", diff)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testResults())
	want := Summary{Points: 4, Exists: 3, Stable: 1, Unstable: 1, Failed: 1}
	if s != want {
		t.Errorf("have %+v, want %+v", s, want)
	}
}

func TestMetadataFor(t *testing.T) {
	m, err := NewMesh(0, 2, 50)
	if err != nil {
		t.Fatal(err)
	}
	if meta := MetadataFor(m); meta != (Metadata{X0: 0, X1: 2, N: 50, Version: Version}) {
		t.Errorf("metadata %+v", meta)
	}
}
