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

package detect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/g1o/Integron-Finder/integron"
	"github.com/g1o/Integron-Finder/internal"
)

// Output formats for the detection tool.
const (
	FormatTable   = "table"
	FormatGenBank = "gbk"
)

// Options is the fixed option set translated into the detection tool's
// invocation surface. The zero value requests a plain findings table
// with the tool's default sensitivity.
type Options struct {
	OutputFormat string
	Diagram      bool
	CPU          int
	EvalueAttc   float64
	MaxAttcSize  int
	MinAttcSize  int
	LocalMax     bool
	NoProteins   bool
}

// Check validates the option set.
func (opts *Options) Check() error {
	switch opts.OutputFormat {
	case "", FormatTable, FormatGenBank:
	default:
		return fmt.Errorf("invalid output format %v", opts.OutputFormat)
	}
	if opts.CPU < 0 {
		return fmt.Errorf("invalid cpu count %v", opts.CPU)
	}
	if opts.EvalueAttc < 0 {
		return fmt.Errorf("invalid attC evalue threshold %v", opts.EvalueAttc)
	}
	return nil
}

// AnalysisError reports that the external tool invocation for one
// chunk failed. It carries the chunk identity so that a failed chunk
// can be reported without aborting or corrupting sibling analyses.
type AnalysisError struct {
	Chunk    string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("analysis of chunk %v failed: %v", e.Chunk, e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// A Detector analyzes one chunk file and produces its result set. Any
// implementation satisfies the pipeline's analyze stage; ToolDetector
// is the process-based one.
type Detector interface {
	Detect(ctx context.Context, chunkPath, outputPath string) (*integron.ChunkResult, error)
}

// ToolDetector invokes the external detection tool as a subprocess,
// one invocation per chunk. Invocations share no mutable state, which
// is what makes parallel fan-out over chunks safe.
type ToolDetector struct {
	Exes *Executables
	Opts Options
}

// NewToolDetector validates the options against the resolved tool
// chain and returns a ready detector.
func NewToolDetector(exes *Executables, opts Options) (*ToolDetector, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &ToolDetector{Exes: exes, Opts: opts}, nil
}

// command translates the option set into the detection tool's command
// line for one chunk.
func (d *ToolDetector) command(ctx context.Context, chunkPath, outputPath string) *exec.Cmd {
	argv := []string{
		"--outdir", outputPath,
		"--cmsearch", d.Exes.Cmsearch,
		"--hmmsearch", d.Exes.Hmmsearch,
		"--prodigal", d.Exes.Prodigal,
	}
	if d.Exes.ModelDir != "" {
		argv = append(argv, "--path-models", d.Exes.ModelDir)
	}
	if d.Opts.CPU > 0 {
		argv = append(argv, "--cpu", strconv.Itoa(d.Opts.CPU))
	}
	if d.Opts.OutputFormat == FormatGenBank {
		argv = append(argv, "--gbk")
	}
	if d.Opts.Diagram {
		argv = append(argv, "--pdf")
	}
	if d.Opts.EvalueAttc > 0 {
		argv = append(argv, "--evalue-attc", strconv.FormatFloat(d.Opts.EvalueAttc, 'g', -1, 64))
	}
	if d.Opts.MaxAttcSize > 0 {
		argv = append(argv, "--max-attc-size", strconv.Itoa(d.Opts.MaxAttcSize))
	}
	if d.Opts.MinAttcSize > 0 {
		argv = append(argv, "--min-attc-size", strconv.Itoa(d.Opts.MinAttcSize))
	}
	if d.Opts.LocalMax {
		argv = append(argv, "--local-max")
	}
	if d.Opts.NoProteins {
		argv = append(argv, "--no-proteins")
	}
	argv = append(argv, chunkPath)
	return exec.CommandContext(ctx, d.Exes.Tool, argv...)
}

// Detect runs the detection tool on one chunk file and parses the
// results directory it writes under outputPath. It blocks until the
// tool terminates. A non-zero exit status yields an AnalysisError
// carrying the chunk identity and the tool's stderr tail.
func (d *ToolDetector) Detect(ctx context.Context, chunkPath, outputPath string) (*integron.ChunkResult, error) {
	chunk, err := integron.ParseChunkName(chunkPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputPath, 0700); err != nil {
		return nil, err
	}
	cmd := d.command(ctx, chunkPath, outputPath)
	if exitCode, stderr, err := internal.RunCommand(cmd); err != nil {
		return nil, &AnalysisError{
			Chunk:    chunk.Name(),
			ExitCode: exitCode,
			Stderr:   stderr,
			Err:      err,
		}
	}
	resultDir := filepath.Join(outputPath, integron.ResultDirName(chunk.Name()))
	result, err := integron.ReadResultDir(resultDir)
	if err != nil {
		return nil, &AnalysisError{Chunk: chunk.Name(), Err: err}
	}
	return result, nil
}
