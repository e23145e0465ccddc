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
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/g1o/Integron-Finder/detect"
	"github.com/g1o/Integron-Finder/internal"
)

// DetectHelp is the help string for this command.
const DetectHelp = "\ndetect parameters:\n" +
	"intfinder detect chunk-file /path/to/results/\n" +
	"[--output-format [table | gbk]]\n" +
	"[--diagram]\n" +
	"[--cpu nr]\n" +
	"[--evalue-attc nr]\n" +
	"[--max-attc-size nr]\n" +
	"[--min-attc-size nr]\n" +
	"[--local-max]\n" +
	"[--no-proteins]\n" +
	"[--log-path path]\n"

// Detect implements the intfinder detect command.
func Detect() error {
	var (
		outputFormat         string
		diagram              bool
		cpu                  int
		evalueAttc           float64
		maxAttcSize          int
		minAttcSize          int
		localMax, noProteins bool
		logPath              string
	)

	var flags flag.FlagSet

	flags.StringVar(&outputFormat, "output-format", detect.FormatTable, "format of the per-chunk findings, one of table or gbk")
	flags.BoolVar(&diagram, "diagram", false, "also render a diagram of the findings")
	flags.IntVar(&cpu, "cpu", 0, "number of cpus passed to the detection tool")
	flags.Float64Var(&evalueAttc, "evalue-attc", 0, "evalue threshold for attC sites")
	flags.IntVar(&maxAttcSize, "max-attc-size", 0, "maximum attC site size")
	flags.IntVar(&minAttcSize, "min-attc-size", 0, "minimum attC site size")
	flags.BoolVar(&localMax, "local-max", false, "run the detection tool in local-max mode")
	flags.BoolVar(&noProteins, "no-proteins", false, "skip gene calling and integrase search")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, DetectHelp)

	input := getFilename(os.Args[2], DetectHelp)
	output := getFilename(os.Args[3], DetectHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}

	opts := detect.Options{
		OutputFormat: outputFormat,
		Diagram:      diagram,
		CPU:          cpu,
		EvalueAttc:   evalueAttc,
		MaxAttcSize:  maxAttcSize,
		MinAttcSize:  minAttcSize,
		LocalMax:     localMax,
		NoProteins:   noProteins,
	}
	if err := opts.Check(); err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}

	exes, err := detect.ResolveExecutables()
	if err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, DetectHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " detect ", input, " ", output)
	fmt.Fprint(&command, " --output-format ", outputFormat)
	if diagram {
		fmt.Fprint(&command, " --diagram")
	}
	if cpu > 0 {
		fmt.Fprint(&command, " --cpu ", cpu)
	}
	if evalueAttc > 0 {
		fmt.Fprint(&command, " --evalue-attc ", evalueAttc)
	}
	if maxAttcSize > 0 {
		fmt.Fprint(&command, " --max-attc-size ", maxAttcSize)
	}
	if minAttcSize > 0 {
		fmt.Fprint(&command, " --min-attc-size ", minAttcSize)
	}
	if localMax {
		fmt.Fprint(&command, " --local-max")
	}
	if noProteins {
		fmt.Fprint(&command, " --no-proteins")
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

	detector, err := detect.NewToolDetector(exes, opts)
	if err != nil {
		return err
	}
	result, err := detector.Detect(context.Background(), fullInput, fullOutput)
	if err != nil {
		return err
	}
	log.Printf("Analyzed chunk %v: %v finding(s).\n", result.Chunk.Name(), len(result.Elements))
	return nil
}
