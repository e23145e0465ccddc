// intfinder: a scatter-gather tool for running Integron Finder on large
// replicon sequence files.
// Copyright (c) 2021 the Integron-Finder pipeline contributors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package integron

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIntegronsTableRoundTrip(t *testing.T) {
	elements := []Element{
		{
			Integron:      "integron_01",
			Replicon:      "acba.007.p01.13",
			Element:       "attc_001",
			Begin:         17825,
			End:           17884,
			Strand:        -1,
			Evalue:        1e-9,
			TypeElt:       EltAttC,
			Annotation:    EltAttC,
			Model:         "attc_4",
			Type:          TypeCALIN,
			Distance2attC: math.NaN(),
		},
		{
			Integron:      "integron_01",
			Replicon:      "acba.007.p01.13",
			Element:       "ACBA.007.P01_13_20",
			Begin:         19721,
			End:           20254,
			Strand:        1,
			Evalue:        1.9e-25,
			TypeElt:       EltProtein,
			Annotation:    "intI",
			Model:         "intersection_tyr_intI",
			Type:          TypeComplete,
			Distance2attC: 469,
		},
	}
	filename := filepath.Join(t.TempDir(), "acba.007.p01.13"+IntegronsExt)
	if err := WriteIntegrons(filename, elements); err != nil {
		t.Fatal(err)
	}
	parsed, err := ReadIntegrons(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != len(elements) {
		t.Fatalf("expected %v elements, got %v", len(elements), len(parsed))
	}
	if !math.IsNaN(parsed[0].Distance2attC) {
		t.Error("NA distance not round-tripped as NaN")
	}
	parsed[0].Distance2attC = math.NaN()
	elements[0].Distance2attC = math.NaN()
	if parsed[1] != elements[1] {
		t.Errorf("element not round-tripped: %+v", parsed[1])
	}
	if parsed[0].Evalue != 1e-9 || parsed[0].Strand != -1 {
		t.Errorf("element not round-tripped: %+v", parsed[0])
	}
}

func TestEmptyIntegronsTable(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "plasmid_A"+IntegronsExt)
	if err := WriteIntegrons(filename, nil); err != nil {
		t.Fatal(err)
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(contents), noIntegronMessage) {
		t.Error("empty table does not carry the no-integron marker")
	}
	elements, err := ReadIntegrons(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) != 0 {
		t.Errorf("expected no elements, got %v", len(elements))
	}
}

func TestReadIntegronsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadIntegrons(filepath.Join(dir, "missing.integrons")); err == nil {
		t.Error("expected an error for a missing table")
	}
	bad := filepath.Join(dir, "bad.integrons")
	if err := os.WriteFile(bad, []byte("not\ta\ttable\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadIntegrons(bad); err == nil {
		t.Error("expected an error for a table with a bad header")
	}
}

func TestReadResultDir(t *testing.T) {
	chunk := Chunk{Replicon: "plasmid_A", Ordinal: 1, Offset: 2500}
	out := t.TempDir()
	dir := filepath.Join(out, ResultDirName(chunk.Name()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	elements := []Element{{
		Integron:      "integron_01",
		Replicon:      chunk.Name(),
		Element:       "attc_001",
		Begin:         100,
		End:           160,
		Strand:        -1,
		Evalue:        1e-8,
		TypeElt:       EltAttC,
		Annotation:    EltAttC,
		Model:         "attc_4",
		Type:          TypeCALIN,
		Distance2attC: math.NaN(),
	}}
	if err := WriteIntegrons(filepath.Join(dir, chunk.Name()+IntegronsExt), elements); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, chunk.Name()+".gbk"), []byte("LOCUS"), 0666); err != nil {
		t.Fatal(err)
	}

	result, err := ReadResultDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.Chunk.Replicon != "plasmid_A" || result.Chunk.Ordinal != 1 || result.Chunk.Offset != 2500 {
		t.Errorf("chunk identity not recovered: %+v", result.Chunk)
	}
	if len(result.Elements) != 1 {
		t.Errorf("expected 1 element, got %v", len(result.Elements))
	}
	if result.GenBank == "" {
		t.Error("GenBank artifact not recorded")
	}
	if result.Diagram != "" {
		t.Error("diagram artifact recorded although absent")
	}

	if _, err := ReadResultDir(filepath.Join(out, "not-a-results-dir")); err == nil {
		t.Error("expected an error for a directory without the results prefix")
	}
}
