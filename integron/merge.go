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
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/willf/bitset"

	"github.com/g1o/Integron-Finder/intervals"
)

// MergeOptions control the gather stage. ExpectedChunks is the number
// of chunks the replicon was split into; when 0, the highest ordinal
// seen among the results is trusted instead. AllowMissing turns a
// missing chunk result from a MergeError into an incomplete merged
// result.
type MergeOptions struct {
	ExpectedChunks int
	AllowMissing   bool
}

// MergeError reports that the set of chunk results for a replicon is
// incomplete or inconsistent, and no override was configured.
type MergeError struct {
	Replicon      string
	MissingChunks []int
	Reason        string
}

func (e *MergeError) Error() string {
	if len(e.MissingChunks) > 0 {
		return fmt.Sprintf("cannot merge results for replicon %v: missing results for chunk(s) %v", e.Replicon, formatOrdinals(e.MissingChunks))
	}
	return fmt.Sprintf("cannot merge results for replicon %v: %v", e.Replicon, e.Reason)
}

func formatOrdinals(ordinals []int) string {
	strs := make([]string, len(ordinals))
	for i, o := range ordinals {
		strs[i] = fmt.Sprint(o)
	}
	return strings.Join(strs, ",")
}

// MergedResult is the consolidated per-replicon outcome: all findings
// in replicon-global coordinates, renumbered in ascending position.
// Incomplete is set when the merge proceeded despite missing chunk
// results.
type MergedResult struct {
	Replicon      string
	Elements      []Element
	Integrons     int
	Incomplete    bool
	MissingChunks []int
}

// candidate is one integron reported by one chunk, placed in global
// coordinates. It is the unit of boundary reconciliation.
type candidate struct {
	ordinal  int
	span     intervals.Interval
	typ      string
	elements []Element
}

func (c *candidate) bestEvalue() float64 {
	best := math.Inf(1)
	for i := range c.elements {
		if e := c.elements[i].Evalue; !math.IsNaN(e) && e < best {
			best = e
		}
	}
	return best
}

// beats implements the reconciliation tie-break: more supporting
// elements wins, then the lower best evalue, then the earlier chunk.
func (c *candidate) beats(other *candidate) bool {
	if len(c.elements) != len(other.elements) {
		return len(c.elements) > len(other.elements)
	}
	ce, oe := c.bestEvalue(), other.bestEvalue()
	if ce != oe {
		return ce < oe
	}
	return c.ordinal < other.ordinal
}

// Merge combines the chunk results of one replicon into a single
// consolidated result. See the package documentation for the contract:
// completeness is validated first, chunk-local positions are translated
// to replicon-global ones, findings spanning a chunk boundary (or
// duplicated in an overlap region) are reconciled into a single
// finding, and all findings are renumbered in ascending position.
func Merge(replicon string, results []*ChunkResult, opts MergeOptions) (*MergedResult, error) {
	if len(results) == 0 && opts.ExpectedChunks == 0 {
		return nil, &MergeError{Replicon: replicon, Reason: "no chunk results given"}
	}

	expected := opts.ExpectedChunks
	for _, result := range results {
		if result.Chunk.Replicon != replicon {
			return nil, &MergeError{
				Replicon: replicon,
				Reason:   fmt.Sprintf("chunk %v belongs to replicon %v", result.Chunk.Name(), result.Chunk.Replicon),
			}
		}
		if result.Chunk.Ordinal >= expected {
			expected = result.Chunk.Ordinal + 1
		}
	}

	seen := bitset.New(uint(expected))
	for _, result := range results {
		ordinal := uint(result.Chunk.Ordinal)
		if seen.Test(ordinal) {
			return nil, &MergeError{
				Replicon: replicon,
				Reason:   fmt.Sprintf("duplicate results for chunk %v", result.Chunk.Ordinal),
			}
		}
		seen.Set(ordinal)
	}
	var missing []int
	for i := 0; i < expected; i++ {
		if !seen.Test(uint(i)) {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 && !opts.AllowMissing {
		return nil, &MergeError{Replicon: replicon, MissingChunks: missing}
	}

	candidates := collectCandidates(replicon, results)
	merged := reconcile(candidates)
	elements := renumber(replicon, merged)

	return &MergedResult{
		Replicon:      replicon,
		Elements:      elements,
		Integrons:     len(merged),
		Incomplete:    len(missing) > 0,
		MissingChunks: missing,
	}, nil
}

// collectCandidates translates every finding to global coordinates and
// groups the elements of each chunk back into the integrons the tool
// reported.
func collectCandidates(replicon string, results []*ChunkResult) []*candidate {
	var candidates []*candidate
	for _, result := range results {
		byIntegron := make(map[string]*candidate)
		var order []*candidate
		for _, e := range result.Elements {
			e.Begin += result.Chunk.Offset
			e.End += result.Chunk.Offset
			e.Replicon = replicon
			c, ok := byIntegron[e.Integron]
			if !ok {
				c = &candidate{
					ordinal: result.Chunk.Ordinal,
					span:    e.Span(),
					typ:     e.Type,
				}
				byIntegron[e.Integron] = c
				order = append(order, c)
			}
			// Elements of one integron need not be contiguous, so the
			// candidate span is the plain hull of the element spans.
			if span := e.Span(); span.Start < c.span.Start {
				c.span.Start = span.Start
			}
			if span := e.Span(); span.End > c.span.End {
				c.span.End = span.End
			}
			c.elements = append(c.elements, e)
		}
		candidates = append(candidates, order...)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].span.Start != candidates[j].span.Start {
			return candidates[i].span.Start < candidates[j].span.Start
		}
		return candidates[i].ordinal < candidates[j].ordinal
	})
	return candidates
}

// spansMeet reports whether two spans overlap or touch. A finding cut
// exactly at a chunk boundary shows up as two abutting half-open
// spans, which must still be treated as one finding.
func spansMeet(a, b intervals.Interval) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// reconcile collapses candidates from different chunks whose spans
// overlap or touch into a single finding. Candidates from the same
// chunk are never collapsed: distinct integrons within one chunk are
// trusted as reported by the tool.
func reconcile(candidates []*candidate) []*candidate {
	var merged []*candidate
	for _, c := range candidates {
		combined := false
		for i := len(merged) - 1; i >= 0; i-- {
			prev := merged[i]
			if c.span.Start > prev.span.End {
				break
			}
			if prev.ordinal == c.ordinal {
				continue
			}
			combine(prev, c)
			combined = true
			break
		}
		if !combined {
			merged = append(merged, c)
		}
	}
	return merged
}

// combine folds loser-or-winner candidate c into prev. The candidate
// with the stronger evidence decides the integron type; elements
// duplicated in the overlap region, or truncated at the boundary, are
// kept once, preferring the stronger evalue and then the earlier
// chunk.
func combine(prev, c *candidate) {
	if c.beats(prev) {
		prev.typ = c.typ
		prev.ordinal = c.ordinal
	}
	prev.span.Extend(c.span)
	for _, e := range c.elements {
		if i := duplicateIndex(prev.elements, &e); i >= 0 {
			if betterElement(&e, &prev.elements[i]) {
				prev.elements[i] = e
			}
			continue
		}
		prev.elements = append(prev.elements, e)
	}
}

func duplicateIndex(elements []Element, e *Element) int {
	for i := range elements {
		d := &elements[i]
		if d.TypeElt == e.TypeElt && d.Annotation == e.Annotation && spansMeet(d.Span(), e.Span()) {
			return i
		}
	}
	return -1
}

func betterElement(e, d *Element) bool {
	if e.Evalue != d.Evalue {
		return e.Evalue < d.Evalue
	}
	return false
}

// renumber assigns stable global identifiers in ascending replicon
// position: integron_01, integron_02, ... for findings, attc_001,
// attc_002, ... for attC sites. Distances between consecutive attC
// sites are recomputed from the global coordinates.
func renumber(replicon string, merged []*candidate) []Element {
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].span.Start < merged[j].span.Start
	})
	var elements []Element
	attcCount := 0
	for i, c := range merged {
		id := fmt.Sprintf("integron_%02d", i+1)
		sort.SliceStable(c.elements, func(i, j int) bool {
			return c.elements[i].Begin < c.elements[j].Begin
		})
		prevAttcEnd := -1
		for _, e := range c.elements {
			e.Integron = id
			e.Replicon = replicon
			e.Type = c.typ
			if e.TypeElt == EltAttC {
				attcCount++
				e.Element = fmt.Sprintf("attc_%03d", attcCount)
				if prevAttcEnd < 0 {
					e.Distance2attC = math.NaN()
				} else {
					e.Distance2attC = float64(e.Begin - prevAttcEnd)
				}
				prevAttcEnd = e.End
			}
			elements = append(elements, e)
		}
	}
	return elements
}

// Summary returns the human-readable per-replicon report, in the
// format the detection tool prints for a single sequence.
func (m *MergedResult) Summary() string {
	attc := map[string]int{}
	integronType := map[string]string{}
	for i := range m.Elements {
		e := &m.Elements[i]
		integronType[e.Integron] = e.Type
		if e.TypeElt == EltAttC {
			attc[e.Integron]++
		}
	}
	typeCounts := map[string]int{TypeComplete: 0, TypeCALIN: 0, TypeIn0: 0}
	typeAttc := map[string]int{TypeComplete: 0, TypeCALIN: 0, TypeIn0: 0}
	for id, typ := range integronType {
		typeCounts[typ]++
		typeAttc[typ] += attc[id]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "In replicon %s, there are:\n", m.Replicon)
	fmt.Fprintf(&b, "- %d complete integron(s) found with a total %d attC site(s)\n", typeCounts[TypeComplete], typeAttc[TypeComplete])
	fmt.Fprintf(&b, "- %d CALIN element(s) found with a total of %d attC site(s)\n", typeCounts[TypeCALIN], typeAttc[TypeCALIN])
	fmt.Fprintf(&b, "- %d In0 element(s) found with a total of %d attC site\n", typeCounts[TypeIn0], typeAttc[TypeIn0])
	if m.Incomplete {
		fmt.Fprintf(&b, "Result is incomplete: no results for chunk(s) %s\n", formatOrdinals(m.MissingChunks))
	}
	return b.String()
}

// WriteMergedResult writes the consolidated result under outputPath,
// named after the replicon only: a findings table and a summary inside
// Results_Integron_Finder_<replicon>/.
func WriteMergedResult(outputPath string, m *MergedResult) error {
	dir := filepath.Join(outputPath, ResultDirName(m.Replicon))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := WriteIntegrons(filepath.Join(dir, m.Replicon+IntegronsExt), m.Elements); err != nil {
		return fmt.Errorf("%v, while writing merged findings for %v", err, m.Replicon)
	}
	summary := m.Summary()
	if err := os.WriteFile(filepath.Join(dir, m.Replicon+".summary"), []byte(summary), 0666); err != nil {
		return fmt.Errorf("%v, while writing summary for %v", err, m.Replicon)
	}
	return nil
}
