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
	"log"
	"os"

	"github.com/g1o/Integron-Finder/integron"
	"github.com/g1o/Integron-Finder/internal"
)

// SplitHelp is the help string for this command.
const SplitHelp = "\nsplit parameters:\n" +
	"intfinder split replicon-file /path/to/output/\n" +
	"[--chunk-size nr]\n" +
	"[--chunk-count nr]\n" +
	"[--overlap nr]\n" +
	"[--output-prefix name]\n" +
	"[--log-path path]\n"

// Split implements the intfinder split command.
func Split() error {
	var (
		chunkSize, chunkCount, overlap int
		outputPrefix                   string
		logPath                        string
	)

	var flags flag.FlagSet

	flags.IntVar(&chunkSize, "chunk-size", 0, "number of bases per chunk")
	flags.IntVar(&chunkCount, "chunk-count", 0, "number of chunks to produce")
	flags.IntVar(&overlap, "overlap", 0, "number of bases shared by adjacent chunks")
	flags.StringVar(&outputPrefix, "output-prefix", "", "replicon name encoded in the chunk filenames")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, SplitHelp)

	input := getFilename(os.Args[2], SplitHelp)
	output := getFilename(os.Args[3], SplitHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}

	if chunkSize > 0 && chunkCount > 0 {
		log.Println("Error: Cannot use --chunk-size and --chunk-count in the same split command.")
		sanityChecksFailed = true
	}
	if chunkSize == 0 && chunkCount == 0 {
		chunkCount = 4
	}
	if chunkSize < 0 || chunkCount < 0 || overlap < 0 {
		log.Println("Error: Invalid chunk parameters.")
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, SplitHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " split ", input, " ", output)
	if chunkSize > 0 {
		fmt.Fprint(&command, " --chunk-size ", chunkSize)
	}
	if chunkCount > 0 {
		fmt.Fprint(&command, " --chunk-count ", chunkCount)
	}
	if overlap > 0 {
		fmt.Fprint(&command, " --overlap ", overlap)
	}
	if outputPrefix != "" {
		fmt.Fprint(&command, " --output-prefix ", outputPrefix)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	fullInput, err := internal.FullPathname(input)
	if err != nil {
		return err
	}
	fullOutput, err := internal.FullPathname(output)
	if err != nil {
		return err
	}

	chunks, err := integron.SplitReplicon(fullInput, fullOutput, integron.SplitOptions{
		ChunkSize:  chunkSize,
		ChunkCount: chunkCount,
		Overlap:    overlap,
		Prefix:     outputPrefix,
	})
	if err != nil {
		return err
	}
	log.Printf("Split %v into %v chunk(s) in %v.\n", input, len(chunks), output)
	return nil
}
