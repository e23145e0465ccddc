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
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/g1o/Integron-Finder/integron"
	"github.com/g1o/Integron-Finder/internal"
)

// MergeHelp is the help string for this command.
const MergeHelp = "\nmerge parameters:\n" +
	"intfinder merge /path/to/output/ replicon-name [flags] chunk-results-dir...\n" +
	"[--expected-chunks nr]\n" +
	"[--allow-missing]\n" +
	"[--nr-of-threads nr]\n" +
	"[--log-path path]\n" +
	"A chunk-results-dir is either one Results_Integron_Finder_<chunk>\n" +
	"directory, or a directory containing several of them.\n"

// Merge implements the intfinder merge command.
func Merge() error {
	var (
		expectedChunks, nrOfThreads int
		allowMissing                bool
		logPath                     string
	)

	var flags flag.FlagSet

	flags.IntVar(&expectedChunks, "expected-chunks", 0, "number of chunks the replicon was split into")
	flags.BoolVar(&allowMissing, "allow-missing", false, "produce an incomplete result when chunk results are missing")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, MergeHelp)
		os.Exit(1)
	}

	output := getFilename(os.Args[2], MergeHelp)
	replicon := os.Args[3]

	flags.SetOutput(io.Discard)
	if err := flags.Parse(os.Args[4:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, MergeHelp)
		os.Exit(x)
	}
	inputs := flags.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "No chunk results directories given.")
		fmt.Fprint(os.Stderr, MergeHelp)
		os.Exit(1)
	}

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	for _, input := range inputs {
		if !checkExist("", input) {
			sanityChecksFailed = true
		}
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if expectedChunks < 0 {
		log.Println("Error: Invalid expected-chunks: ", expectedChunks)
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, MergeHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " merge ", output, " ", replicon)
	if expectedChunks > 0 {
		fmt.Fprint(&command, " --expected-chunks ", expectedChunks)
	}
	if allowMissing {
		fmt.Fprint(&command, " --allow-missing")
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}
	fmt.Fprint(&command, " ", strings.Join(inputs, " "))

	// executing command

	log.Println("Executing command:\n", command.String())

	resultDirs, err := gatherResultDirs(inputs)
	if err != nil {
		return err
	}

	results := make([]*integron.ChunkResult, len(resultDirs))
	errs := make([]error, len(resultDirs))
	parallel.Range(0, len(resultDirs), 0, func(low, high int) {
		for i := low; i < high; i++ {
			results[i], errs[i] = integron.ReadResultDir(resultDirs[i])
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	merged, err := integron.Merge(replicon, results, integron.MergeOptions{
		ExpectedChunks: expectedChunks,
		AllowMissing:   allowMissing,
	})
	if err != nil {
		return err
	}

	fullOutput, err := internal.FullPathname(output)
	if err != nil {
		return err
	}
	if err := integron.WriteMergedResult(fullOutput, merged); err != nil {
		return err
	}
	log.Print(merged.Summary())
	return nil
}

// gatherResultDirs expands the given paths into the individual
// Results_Integron_Finder_<chunk> directories they denote.
func gatherResultDirs(inputs []string) ([]string, error) {
	var resultDirs []string
	for _, input := range inputs {
		full, err := internal.FullPathname(input)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(filepath.Base(full), integron.ResultDirPrefix) {
			resultDirs = append(resultDirs, full)
			continue
		}
		entries, err := internal.Directory(full)
		if err != nil {
			return nil, fmt.Errorf("%v, while attempting to fetch chunk results in %v", err, input)
		}
		found := false
		for _, entry := range entries {
			if strings.HasPrefix(entry, integron.ResultDirPrefix) {
				resultDirs = append(resultDirs, filepath.Join(full, entry))
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("no %v<chunk> directories found in %v", integron.ResultDirPrefix, input)
		}
	}
	return resultDirs, nil
}
