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

// Package integron implements the split and merge stages of the
// scatter-gather pipeline around the external Integron Finder tool:
// replicon files are cut into chunks for parallel analysis, and the
// per-chunk findings are merged back into one result per replicon.
package integron

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/g1o/Integron-Finder/intervals"
)

// Integron types as reported by the detection tool.
const (
	TypeComplete = "complete"
	TypeCALIN    = "CALIN"
	TypeIn0      = "In0"
)

// Element kinds (the type_elt column of the findings table).
const (
	EltAttC     = "attC"
	EltProtein  = "protein"
	EltAttI     = "attI"
	EltPromoter = "Promoter"
)

// ChunkExt is the file extension used for chunk sequence files.
const ChunkExt = ".fst"

// Chunk describes one contiguous sub-region of a replicon, written as
// its own sequence file for analysis. The chunk file name encodes the
// parent replicon, the ordinal, and the 0-based offset of the chunk's
// first base in the replicon, so that merging never needs to re-read
// the replicon itself.
type Chunk struct {
	Replicon string
	Ordinal  int
	Offset   int
	Length   int
	Path     string
}

// Name returns the canonical name of the chunk, without extension.
func (c *Chunk) Name() string {
	return fmt.Sprintf("%s_chunk_%04d_%d", c.Replicon, c.Ordinal, c.Offset)
}

// Span returns the replicon positions covered by the chunk.
func (c *Chunk) Span() intervals.Interval {
	return intervals.Interval{Start: c.Offset, End: c.Offset + c.Length}
}

var chunkNameRegexp = regexp.MustCompile(`^(.+)_chunk_(\d+)_(\d+)$`)

// ParseChunkName recovers the chunk metadata encoded in a chunk file
// name or path. The length of the chunk is not part of the name and is
// left 0; it is only known to the splitter and to readers of the chunk
// file itself.
func ParseChunkName(path string) (*Chunk, error) {
	name := filepath.Base(path)
	// Replicon names may contain dots, so only known sequence file
	// extensions are stripped.
	switch ext := filepath.Ext(name); ext {
	case ChunkExt, ".fasta", ".fa", ".fna":
		name = name[:len(name)-len(ext)]
	}
	m := chunkNameRegexp.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%v is not a chunk name of the form <replicon>_chunk_<ordinal>_<offset>", path)
	}
	ordinal, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing chunk ordinal in %v", err, path)
	}
	offset, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing chunk offset in %v", err, path)
	}
	return &Chunk{
		Replicon: m[1],
		Ordinal:  ordinal,
		Offset:   offset,
		Path:     path,
	}, nil
}

// Element is one row of the detection tool's findings table: a single
// integron-associated feature (attC site, integrase or other protein,
// attI site, promoter) with its supporting evidence. Positions are
// 1-based and inclusive; they are chunk-local in a ChunkResult and
// replicon-global after merging.
type Element struct {
	Integron      string
	Replicon      string
	Element       string
	Begin, End    int
	Strand        int
	Evalue        float64
	TypeElt       string
	Annotation    string
	Model         string
	Type          string
	Distance2attC float64 // NaN when not applicable
}

// Span returns the replicon positions covered by the element as a
// 0-based half-open interval.
func (e *Element) Span() intervals.Interval {
	return intervals.Interval{Start: e.Begin - 1, End: e.End}
}

// ChunkResult is the parsed outcome of analyzing one chunk: the
// findings, plus the optional artifacts the tool was asked to produce.
// A ChunkResult with no elements is a successful empty result, never
// an error.
type ChunkResult struct {
	Chunk    Chunk
	Elements []Element
	GenBank  string
	Diagram  string
}
