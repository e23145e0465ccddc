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

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "results")
	if !checkCreate("", path) {
		t.Errorf("expected %v to be creatable", path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%v left behind after the writability check", path)
	}
	if !checkCreate("", dir) {
		t.Errorf("expected existing path %v to pass", dir)
	}
	if checkCreate("", "") {
		t.Error("expected an empty filename to fail")
	}
	if checkCreate("", "--log-path") {
		t.Error("expected a flag-shaped filename to fail")
	}
}

func TestCheckExist(t *testing.T) {
	file := filepath.Join(t.TempDir(), "replicon.fst")
	if err := os.WriteFile(file, []byte(">p\nACGT\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if !checkExist("", file) {
		t.Errorf("expected %v to exist", file)
	}
	if checkExist("", file+".missing") {
		t.Error("expected a missing file to fail")
	}
	if checkExist("", "") {
		t.Error("expected an empty filename to fail")
	}
}
