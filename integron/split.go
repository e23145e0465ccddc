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
	"fmt"
	"os"
	"path/filepath"

	"github.com/g1o/Integron-Finder/fasta"
)

// SplitOptions control how a replicon is cut into chunks. Exactly one
// of ChunkSize or ChunkCount must be positive. Overlap is the number
// of bases shared by two adjacent chunks; the merger resolves findings
// duplicated in the shared region. Prefix overrides the replicon name
// encoded in the chunk filenames, which is otherwise derived from the
// input filename.
type SplitOptions struct {
	ChunkSize  int
	ChunkCount int
	Overlap    int
	Prefix     string
}

func (opts SplitOptions) check() error {
	if opts.ChunkSize > 0 && opts.ChunkCount > 0 {
		return fmt.Errorf("chunk size (%v) and chunk count (%v) cannot both be given", opts.ChunkSize, opts.ChunkCount)
	}
	if opts.ChunkSize <= 0 && opts.ChunkCount <= 0 {
		return fmt.Errorf("either a chunk size or a chunk count must be given")
	}
	if opts.Overlap < 0 {
		return fmt.Errorf("invalid chunk overlap %v", opts.Overlap)
	}
	return nil
}

// chunkSpans computes the deterministic chunk boundaries for a
// sequence of the given length. The spans cover the full sequence,
// adjacent spans share exactly overlap bases, and a sequence no longer
// than one chunk yields a single span.
func chunkSpans(length, chunkSize, overlap int) ([][2]int, error) {
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %v must be smaller than the chunk size %v", overlap, chunkSize)
	}
	if length <= chunkSize {
		return [][2]int{{0, length}}, nil
	}
	step := chunkSize - overlap
	var spans [][2]int
	for offset := 0; ; offset += step {
		end := offset + chunkSize
		if end >= length {
			spans = append(spans, [2]int{offset, length})
			return spans, nil
		}
		spans = append(spans, [2]int{offset, end})
	}
}

// SplitReplicon cuts one replicon sequence file into chunk files under
// outputPath. The chunks are written in FASTA format and named
// <replicon>_chunk_<ordinal>_<offset>.fst; repeated runs with the same
// input and options produce byte-identical chunks. A replicon shorter
// than one chunk yields exactly one chunk holding the whole sequence.
func SplitReplicon(input, outputPath string, opts SplitOptions) ([]Chunk, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	record, err := fasta.ReadReplicon(input)
	if err != nil {
		return nil, err
	}
	replicon := opts.Prefix
	if replicon == "" {
		replicon = fasta.NameFromPath(input)
	}

	chunkSize := opts.ChunkSize
	if opts.ChunkCount > 0 {
		chunkSize = (len(record.Seq) + opts.ChunkCount - 1) / opts.ChunkCount
		if chunkSize <= opts.Overlap {
			chunkSize = opts.Overlap + 1
		}
	}
	spans, err := chunkSpans(len(record.Seq), chunkSize, opts.Overlap)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputPath, 0700); err != nil {
		return nil, err
	}
	chunks := make([]Chunk, len(spans))
	for i, span := range spans {
		chunk := Chunk{
			Replicon: replicon,
			Ordinal:  i,
			Offset:   span[0],
			Length:   span[1] - span[0],
		}
		chunk.Path = filepath.Join(outputPath, chunk.Name()+ChunkExt)
		chunkRecord := fasta.Record{
			ID:          chunk.Name(),
			Description: fmt.Sprintf("%s bases %d..%d", record.ID, span[0]+1, span[1]),
			Seq:         record.Seq[span[0]:span[1]],
		}
		if err := fasta.Write(chunk.Path, chunkRecord); err != nil {
			return nil, fmt.Errorf("%v, while writing chunk %v of %v", err, i, input)
		}
		chunks[i] = chunk
	}
	return chunks, nil
}
