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

// Package fasta reads and writes replicon sequences in FASTA format.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LineWidth is the number of bases per sequence line in FASTA output.
const LineWidth = 60

// Record is a single named sequence from a FASTA file. Records are
// never modified after parsing.
type Record struct {
	ID          string
	Description string
	Seq         []byte
}

// InputError reports a replicon file that cannot be used as pipeline
// input: unreadable, not in FASTA format, or without sequence data.
type InputError struct {
	Filename string
	Reason   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid replicon file %v: %v", e.Filename, e.Reason)
}

var iupacUpperTable = map[byte]byte{
	'A': 'A', 'a': 'A',
	'C': 'C', 'c': 'C',
	'G': 'G', 'g': 'G',
	'T': 'T', 't': 'T',
	'U': 'T', 'u': 'T',
	'N': 'N', 'n': 'N',
	'R': 'R', 'r': 'R',
	'Y': 'Y', 'y': 'Y',
	'M': 'M', 'm': 'M',
	'K': 'K', 'k': 'K',
	'W': 'W', 'w': 'W',
	'S': 'S', 's': 'S',
	'B': 'B', 'b': 'B',
	'D': 'D', 'd': 'D',
	'H': 'H', 'h': 'H',
	'V': 'V', 'v': 'V',
}

func recordFromHeader(b []byte) (id, description string) {
	header := strings.TrimSpace(string(b[1:]))
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		return header[:i], strings.TrimSpace(header[i+1:])
	}
	return header, ""
}

// Read parses all records of a FASTA file. Bases are upper-cased, and
// IUPAC ambiguity codes are accepted as is. It returns an InputError
// if the file is empty, does not start with a FASTA header, contains
// characters that are not nucleotide codes, or contains a record
// without sequence data.
func Read(filename string) ([]Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &InputError{filename, err.Error()}
	}
	defer f.Close()

	var records []Record
	var current *Record

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if current != nil && len(current.Seq) == 0 {
				return nil, &InputError{filename, fmt.Sprintf("record %v has no sequence", current.ID)}
			}
			id, description := recordFromHeader(line)
			if id == "" {
				return nil, &InputError{filename, "record with empty header"}
			}
			records = append(records, Record{ID: id, Description: description})
			current = &records[len(records)-1]
			continue
		}
		if current == nil {
			return nil, &InputError{filename, "missing first header"}
		}
		for _, c := range line {
			b, ok := iupacUpperTable[c]
			if !ok {
				return nil, &InputError{filename, fmt.Sprintf("invalid character %q in record %v", c, current.ID)}
			}
			current.Seq = append(current.Seq, b)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{filename, err.Error()}
	}
	if len(records) == 0 {
		return nil, &InputError{filename, "empty file"}
	}
	if len(current.Seq) == 0 {
		return nil, &InputError{filename, fmt.Sprintf("record %v has no sequence", current.ID)}
	}
	return records, nil
}

// ReadReplicon parses a FASTA file that is expected to hold exactly
// one replicon. Additional records are an InputError, since chunk
// bookkeeping relies on a single sequence per input file.
func ReadReplicon(filename string) (Record, error) {
	records, err := Read(filename)
	if err != nil {
		return Record{}, err
	}
	if len(records) > 1 {
		return Record{}, &InputError{filename, fmt.Sprintf("expected a single replicon, found %v records", len(records))}
	}
	return records[0], nil
}

// Write writes records to a FASTA file, wrapping sequence lines at
// LineWidth bases.
func Write(filename string, records ...Record) (funcErr error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	w := bufio.NewWriter(f)
	for _, record := range records {
		if record.Description != "" {
			fmt.Fprintf(w, ">%s %s\n", record.ID, record.Description)
		} else {
			fmt.Fprintf(w, ">%s\n", record.ID)
		}
		for start := 0; start < len(record.Seq); start += LineWidth {
			end := start + LineWidth
			if end > len(record.Seq) {
				end = len(record.Seq)
			}
			w.Write(record.Seq[start:end])
			w.WriteByte('\n')
		}
	}
	return w.Flush()
}

// NameFromPath derives the simplified replicon name from a sequence
// file path, by stripping the directory and the file extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && !strings.HasPrefix(base, ".") {
		base = base[:len(base)-len(ext)]
	}
	return base
}
