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
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"

	"github.com/g1o/Integron-Finder/detect"
	"github.com/g1o/Integron-Finder/fasta"
	"github.com/g1o/Integron-Finder/integron"
	"github.com/g1o/Integron-Finder/internal"
)

// RunHelp is the help string for this command.
const RunHelp = "\nrun parameters:\n" +
	"intfinder run replicon-file /path/to/output/\n" +
	"[--chunk-size nr]\n" +
	"[--chunk-count nr]\n" +
	"[--overlap nr]\n" +
	"[--output-format [table | gbk]]\n" +
	"[--diagram]\n" +
	"[--cpu nr]\n" +
	"[--evalue-attc nr]\n" +
	"[--max-attc-size nr]\n" +
	"[--min-attc-size nr]\n" +
	"[--local-max]\n" +
	"[--no-proteins]\n" +
	"[--allow-missing]\n" +
	"[--keep-intermediates]\n" +
	"[--nr-of-threads nr]\n" +
	"[--log-path path]\n"

// Run implements the intfinder run command: split the replicon into
// chunks, fan the chunks out to parallel detect subprocesses, await
// all of them, and merge the per-chunk results into one consolidated
// result named after the replicon.
func Run() error {
	var (
		chunkSize, chunkCount, overlap int
		outputFormat                   string
		diagram                        bool
		cpu                            int
		evalueAttc                     float64
		maxAttcSize, minAttcSize       int
		localMax, noProteins           bool
		allowMissing                   bool
		keepIntermediates              bool
		nrOfThreads                    int
		logPath                        string
	)

	var flags flag.FlagSet

	flags.IntVar(&chunkSize, "chunk-size", 0, "number of bases per chunk")
	flags.IntVar(&chunkCount, "chunk-count", 0, "number of chunks to produce")
	flags.IntVar(&overlap, "overlap", 0, "number of bases shared by adjacent chunks")
	flags.StringVar(&outputFormat, "output-format", detect.FormatTable, "format of the per-chunk findings, one of table or gbk")
	flags.BoolVar(&diagram, "diagram", false, "also render a diagram of the findings")
	flags.IntVar(&cpu, "cpu", 0, "number of cpus passed to the detection tool")
	flags.Float64Var(&evalueAttc, "evalue-attc", 0, "evalue threshold for attC sites")
	flags.IntVar(&maxAttcSize, "max-attc-size", 0, "maximum attC site size")
	flags.IntVar(&minAttcSize, "min-attc-size", 0, "minimum attC site size")
	flags.BoolVar(&localMax, "local-max", false, "run the detection tool in local-max mode")
	flags.BoolVar(&noProteins, "no-proteins", false, "skip gene calling and integrase search")
	flags.BoolVar(&allowMissing, "allow-missing", false, "merge a degraded result when chunk analyses fail")
	flags.BoolVar(&keepIntermediates, "keep-intermediates", false, "keep the chunk files and per-chunk results")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of parallel chunk analyses")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, RunHelp)

	input := getFilename(os.Args[2], RunHelp)
	output := getFilename(os.Args[3], RunHelp)

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
		log.Println("Error: Cannot use --chunk-size and --chunk-count in the same run command.")
		sanityChecksFailed = true
	}
	if chunkSize == 0 && chunkCount == 0 {
		chunkCount = runtime.GOMAXPROCS(0)
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}

	// Resolving the tool chain up front turns a missing binary into a
	// configuration error instead of a mid-run surprise.
	if _, err := detect.ResolveExecutables(); err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, RunHelp)
		os.Exit(1)
	}

	// building command lines for the detect stage and the output command line

	var command bytes.Buffer
	var detectArgs []string
	fmt.Fprint(&command, os.Args[0], " run ", input, " ", output)

	if chunkSize > 0 {
		fmt.Fprint(&command, " --chunk-size ", chunkSize)
	}
	if chunkCount > 0 {
		fmt.Fprint(&command, " --chunk-count ", chunkCount)
	}
	if overlap > 0 {
		fmt.Fprint(&command, " --overlap ", overlap)
	}
	fmt.Fprint(&command, " --output-format ", outputFormat)
	detectArgs = append(detectArgs, "--output-format", outputFormat)
	if diagram {
		fmt.Fprint(&command, " --diagram")
		detectArgs = append(detectArgs, "--diagram")
	}
	if cpu > 0 {
		fmt.Fprint(&command, " --cpu ", cpu)
		detectArgs = append(detectArgs, "--cpu", strconv.Itoa(cpu))
	}
	if evalueAttc > 0 {
		fmt.Fprint(&command, " --evalue-attc ", evalueAttc)
		detectArgs = append(detectArgs, "--evalue-attc", strconv.FormatFloat(evalueAttc, 'g', -1, 64))
	}
	if maxAttcSize > 0 {
		fmt.Fprint(&command, " --max-attc-size ", maxAttcSize)
		detectArgs = append(detectArgs, "--max-attc-size", strconv.Itoa(maxAttcSize))
	}
	if minAttcSize > 0 {
		fmt.Fprint(&command, " --min-attc-size ", minAttcSize)
		detectArgs = append(detectArgs, "--min-attc-size", strconv.Itoa(minAttcSize))
	}
	if localMax {
		fmt.Fprint(&command, " --local-max")
		detectArgs = append(detectArgs, "--local-max")
	}
	if noProteins {
		fmt.Fprint(&command, " --no-proteins")
		detectArgs = append(detectArgs, "--no-proteins")
	}
	if allowMissing {
		fmt.Fprint(&command, " --allow-missing")
	}
	if keepIntermediates {
		fmt.Fprint(&command, " --keep-intermediates")
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
		detectArgs = append(detectArgs, "--log-path", logPath)
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
	replicon := fasta.NameFromPath(fullInput)
	workDir := filepath.Join(fullOutput, fmt.Sprintf("intfinder-chunks-%v", uuid.New()))

	// split

	log.Println("Splitting...")
	chunks, err := integron.SplitReplicon(fullInput, workDir, integron.SplitOptions{
		ChunkSize:  chunkSize,
		ChunkCount: chunkCount,
		Overlap:    overlap,
	})
	if err != nil {
		return err
	}
	log.Printf("Split %v into %v chunk(s).\n", replicon, len(chunks))

	// detect, one subprocess per chunk

	log.Println("Analyzing...")
	chunkErrs := make([]error, len(chunks))
	parallel.Range(0, len(chunks), 0, func(low, high int) {
		for i := low; i < high; i++ {
			args := append([]string{"detect", chunks[i].Path, workDir}, detectArgs...)
			detectCmd := exec.Command(os.Args[0], args...)
			detectCmd.Stderr = os.Stderr
			chunkErrs[i] = detectCmd.Run()
		}
	})
	var failed []int
	for i, err := range chunkErrs {
		if err != nil {
			failed = append(failed, i)
			log.Printf("Error: analysis of chunk %v failed: %v.\n", chunks[i].Name(), err)
		}
	}

	// merge

	log.Println("Merging...")
	var results []*integron.ChunkResult
	for i, chunk := range chunks {
		if chunkErrs[i] != nil {
			continue
		}
		result, err := integron.ReadResultDir(filepath.Join(workDir, integron.ResultDirName(chunk.Name())))
		if err != nil {
			return err
		}
		results = append(results, result)
	}
	merged, err := integron.Merge(replicon, results, integron.MergeOptions{
		ExpectedChunks: len(chunks),
		AllowMissing:   allowMissing,
	})
	if err != nil {
		return err
	}
	if err := integron.WriteMergedResult(fullOutput, merged); err != nil {
		return err
	}
	log.Print(merged.Summary())

	// Intermediates are kept when chunk analyses failed, so that the
	// failing chunks can be re-run or inspected.
	if !keepIntermediates && len(failed) == 0 {
		if err := os.RemoveAll(workDir); err != nil {
			return err
		}
	}
	return nil
}
