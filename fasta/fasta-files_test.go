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

package fasta

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "replicon.fst")
	if err := os.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestRead(t *testing.T) {
	filename := writeTestFile(t, ">plasmid_A circular\nacgt\nACGTN\n\n>plasmid_B\nTTTT\n")
	records, err := Read(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %v", len(records))
	}
	if records[0].ID != "plasmid_A" || records[0].Description != "circular" {
		t.Errorf("unexpected first header: %v %v", records[0].ID, records[0].Description)
	}
	if string(records[0].Seq) != "ACGTACGTN" {
		t.Errorf("unexpected first sequence: %v", string(records[0].Seq))
	}
	if records[1].ID != "plasmid_B" || string(records[1].Seq) != "TTTT" {
		t.Errorf("unexpected second record: %v %v", records[1].ID, string(records[1].Seq))
	}
}

func TestReadErrors(t *testing.T) {
	for _, c := range []struct {
		name     string
		contents string
	}{
		{"empty file", ""},
		{"missing header", "ACGT\n"},
		{"no sequence", ">plasmid_A\n"},
		{"no sequence before next record", ">plasmid_A\n>plasmid_B\nACGT\n"},
		{"invalid character", ">plasmid_A\nACGT7ACGT\n"},
		{"empty header", "> \nACGT\n"},
	} {
		filename := writeTestFile(t, c.contents)
		_, err := Read(filename)
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("%v: expected an InputError, got %v", c.name, err)
		}
	}
	var inputErr *InputError
	if _, err := Read(filepath.Join(t.TempDir(), "nonexistent.fst")); !errors.As(err, &inputErr) {
		t.Errorf("nonexistent file: expected an InputError, got %v", err)
	}
}

func TestReadReplicon(t *testing.T) {
	filename := writeTestFile(t, ">plasmid_A\nACGT\n")
	record, err := ReadReplicon(filename)
	if err != nil {
		t.Fatal(err)
	}
	if record.ID != "plasmid_A" {
		t.Errorf("unexpected record: %v", record.ID)
	}
	filename = writeTestFile(t, ">plasmid_A\nACGT\n>plasmid_B\nACGT\n")
	var inputErr *InputError
	if _, err := ReadReplicon(filename); !errors.As(err, &inputErr) {
		t.Errorf("expected an InputError for a multi-record file, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	seq := bytes.Repeat([]byte("ACGTN"), 50)
	filename := filepath.Join(t.TempDir(), "out.fst")
	record := Record{ID: "plasmid_A", Description: "test sequence", Seq: seq}
	if err := Write(filename, record); err != nil {
		t.Fatal(err)
	}
	records, err := Read(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %v", len(records))
	}
	if records[0].ID != record.ID || records[0].Description != record.Description {
		t.Errorf("header not round-tripped: %v %v", records[0].ID, records[0].Description)
	}
	if !bytes.Equal(records[0].Seq, seq) {
		t.Error("sequence not round-tripped")
	}

	contents, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	for i, line := range strings.Split(strings.TrimRight(string(contents), "\n"), "\n") {
		if i == 0 {
			continue
		}
		if len(line) > LineWidth {
			t.Errorf("sequence line %v longer than %v bases", i, LineWidth)
		}
	}
}

func TestNameFromPath(t *testing.T) {
	for path, name := range map[string]string{
		"/data/Replicons/acba.007.p01.13.fst": "acba.007.p01.13",
		"plasmid_A.fasta":                     "plasmid_A",
		"plasmid_A":                           "plasmid_A",
	} {
		if got := NameFromPath(path); got != name {
			t.Errorf("NameFromPath(%v) = %v, expected %v", path, got, name)
		}
	}
}
