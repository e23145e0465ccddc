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

// Package detect wraps the external Integron Finder tool: it resolves
// the tool chain at configuration time, invokes the tool on one chunk
// file, and captures the tool's output as a chunk result.
package detect

import (
	"fmt"
	"os/exec"

	"github.com/caarlos0/env/v10"
)

// Executables holds the resolved absolute paths of the external tool
// chain. The detection tool itself does the biological work; cmsearch,
// hmmsearch and prodigal are passed through to it so that a run never
// depends on whatever happens to be first on the system path.
//
// Defaults are taken from the environment, falling back to plain
// command names resolved against PATH.
type Executables struct {
	Tool      string `env:"INTFINDER_TOOL" envDefault:"integron_finder"`
	Cmsearch  string `env:"INTFINDER_CMSEARCH" envDefault:"cmsearch"`
	Hmmsearch string `env:"INTFINDER_HMMSEARCH" envDefault:"hmmsearch"`
	Prodigal  string `env:"INTFINDER_PRODIGAL" envDefault:"prodigal"`
	ModelDir  string `env:"INTFINDER_MODEL_DIR"`
}

// ResolveExecutables builds an Executables from the environment and
// resolves every command to an absolute path. A command that cannot be
// resolved is a configuration-time error, so that a chunk analysis
// never fails halfway through a run for a missing binary.
func ResolveExecutables() (*Executables, error) {
	exes := &Executables{}
	if err := env.Parse(exes); err != nil {
		return nil, fmt.Errorf("%v, while reading tool configuration from the environment", err)
	}
	if err := exes.Resolve(); err != nil {
		return nil, err
	}
	return exes, nil
}

// Resolve replaces every command by its absolute path.
func (exes *Executables) Resolve() error {
	for _, entry := range []struct {
		name string
		path *string
	}{
		{"detection tool", &exes.Tool},
		{"cmsearch", &exes.Cmsearch},
		{"hmmsearch", &exes.Hmmsearch},
		{"prodigal", &exes.Prodigal},
	} {
		path, err := exec.LookPath(*entry.path)
		if err != nil {
			return fmt.Errorf("cannot resolve %v %v: %v", entry.name, *entry.path, err)
		}
		*entry.path = path
	}
	return nil
}
