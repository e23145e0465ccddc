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
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ResultDirPrefix is the prefix of the results directory the detection
// tool writes for each analyzed sequence.
const ResultDirPrefix = "Results_Integron_Finder_"

// IntegronsExt is the extension of the findings table.
const IntegronsExt = ".integrons"

// noIntegronMessage marks a findings table of a successful analysis
// that found nothing. It must stay distinguishable from a missing or
// unreadable table.
const noIntegronMessage = "# No Integron found"

var tableColumns = []string{
	"ID_integron", "ID_replicon", "element",
	"pos_beg", "pos_end", "strand",
	"evalue", "type_elt", "annotation",
	"model", "type", "distance_2attC",
}

// ResultDirName returns the name of the results directory for the
// given sequence name.
func ResultDirName(name string) string {
	return ResultDirPrefix + name
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NA"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteIntegrons writes a findings table in the detection tool's
// tab-separated format. An empty element list produces a table with a
// header and the no-integron marker.
func WriteIntegrons(filename string, elements []Element) (funcErr error) {
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
	fmt.Fprintln(w, strings.Join(tableColumns, "\t"))
	if len(elements) == 0 {
		fmt.Fprintln(w, noIntegronMessage)
		return w.Flush()
	}
	for _, e := range elements {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Integron, e.Replicon, e.Element,
			e.Begin, e.End, e.Strand,
			formatFloat(e.Evalue), e.TypeElt, e.Annotation,
			e.Model, e.Type, formatFloat(e.Distance2attC))
	}
	return w.Flush()
}

// ReadIntegrons parses a findings table written by the detection tool
// or by WriteIntegrons.
func ReadIntegrons(filename string) ([]Element, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("empty findings table %v", filename)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\n"), "\t")
	if len(header) < len(tableColumns) {
		return nil, fmt.Errorf("badly formatted findings table %v - invalid header", filename)
	}
	column := make(map[string]int, len(header))
	for i, name := range header {
		column[name] = i
	}
	for _, name := range tableColumns {
		if _, ok := column[name]; !ok {
			return nil, fmt.Errorf("badly formatted findings table %v - missing column %v", filename, name)
		}
	}

	var elements []Element
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < len(header) {
			return nil, fmt.Errorf("badly formatted findings table %v - invalid number of fields", filename)
		}
		get := func(name string) string { return fields[column[name]] }
		begin, err := strconv.Atoi(get("pos_beg"))
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing pos_beg in %v", err, filename)
		}
		end, err := strconv.Atoi(get("pos_end"))
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing pos_end in %v", err, filename)
		}
		strand, err := strconv.Atoi(get("strand"))
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing strand in %v", err, filename)
		}
		evalue, err := parseFloat(get("evalue"))
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing evalue in %v", err, filename)
		}
		distance, err := parseFloat(get("distance_2attC"))
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing distance_2attC in %v", err, filename)
		}
		elements = append(elements, Element{
			Integron:      get("ID_integron"),
			Replicon:      get("ID_replicon"),
			Element:       get("element"),
			Begin:         begin,
			End:           end,
			Strand:        strand,
			Evalue:        evalue,
			TypeElt:       get("type_elt"),
			Annotation:    get("annotation"),
			Model:         get("model"),
			Type:          get("type"),
			Distance2attC: distance,
		})
	}
	return elements, scanner.Err()
}

// ReadResultDir parses the results directory of one chunk analysis
// into a ChunkResult. The directory name carries the chunk identity;
// the findings table carries the chunk-local findings. Optional
// GenBank and diagram artifacts are recorded when present.
func ReadResultDir(dir string) (*ChunkResult, error) {
	base := filepath.Base(filepath.Clean(dir))
	if !strings.HasPrefix(base, ResultDirPrefix) {
		return nil, fmt.Errorf("%v is not a %v<chunk> results directory", dir, ResultDirPrefix)
	}
	name := strings.TrimPrefix(base, ResultDirPrefix)
	chunk, err := ParseChunkName(name)
	if err != nil {
		return nil, fmt.Errorf("%v, while reading results directory %v", err, dir)
	}
	elements, err := ReadIntegrons(filepath.Join(dir, name+IntegronsExt))
	if err != nil {
		return nil, fmt.Errorf("%v, while reading results directory %v", err, dir)
	}
	result := &ChunkResult{Chunk: *chunk, Elements: elements}
	if gbk := filepath.Join(dir, name+".gbk"); fileExists(gbk) {
		result.GenBank = gbk
	}
	if pdf := filepath.Join(dir, name+".pdf"); fileExists(pdf) {
		result.Diagram = pdf
	}
	return result, nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}
