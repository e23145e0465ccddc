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

// Package intervals provides operations on genomic position ranges,
// used for chunk coverage checks and for reconciling findings that
// overlap across chunk boundaries.
package intervals

import (
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"
)

// Interval is a 0-based, half-open range of positions on a replicon.
type Interval struct {
	Start, End int
}

// Len returns the number of positions covered by the interval.
func (interval Interval) Len() int {
	return interval.End - interval.Start
}

// Overlaps tells whether two intervals share at least one position.
func (interval Interval) Overlaps(other Interval) bool {
	return interval.Start < other.End && other.Start < interval.End
}

// SortByStart sorts a slice of Interval by Start position.
func SortByStart(intervals []Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
}

type stableIntervalSorter []Interval

func (s stableIntervalSorter) SequentialSort(i, j int) {
	SortByStart(s[i:j])
}

func (s stableIntervalSorter) NewTemp() psort.StableSorter {
	return stableIntervalSorter(make([]Interval, len(s)))
}

func (s stableIntervalSorter) Len() int {
	return len(s)
}

func (s stableIntervalSorter) Less(i, j int) bool {
	return s[i].Start < s[j].Start
}

func (s stableIntervalSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableIntervalSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelSortByStart sorts a slice of Interval by Start position using
// a parallel stable sort.
func ParallelSortByStart(intervals []Interval) {
	psort.StableSort(stableIntervalSorter(intervals))
}

// Extend makes interval1 larger if it overlaps with or directly abuts
// interval2, by storing max(interval1.End, interval2.End) in
// interval1.End; otherwise, interval1 remains unchanged.
// Returns true if interval1 was extended, false otherwise.
// interval2.Start >= interval1.Start must be true before
// calling Extend.
func (interval1 *Interval) Extend(interval2 Interval) bool {
	if interval2.Start > interval1.End {
		return false
	}
	if interval2.End > interval1.End {
		interval1.End = interval2.End
	}
	return true
}

// Flatten merges overlapping or abutting intervals into larger
// intervals. intervals must be sorted by Start before calling Flatten.
// The resulting slice is sorted by Start, and no two intervals in the
// result overlap with each other. The result shares memory with the
// intervals argument.
func Flatten(intervals []Interval) []Interval {
	for i, n := 0, len(intervals)-1; i < n; i++ {
		if intervals[i].Extend(intervals[i+1]) {
			n++
			for j := i + 1; j < n; j++ {
				if !intervals[i].Extend(intervals[j]) {
					i++
					intervals[i] = intervals[j]
				}
			}
			return intervals[:i+1]
		}
	}
	return intervals
}

const parallelFlattenGrainSize = 0x1000

// ParallelFlatten merges overlapping or abutting intervals into larger
// intervals, using a parallel algorithm. intervals must be sorted by
// Start before calling ParallelFlatten. The result shares memory with
// the intervals argument.
func ParallelFlatten(intervals []Interval) []Interval {
	if len(intervals) < parallelFlattenGrainSize {
		return Flatten(intervals)
	}
	half := len(intervals) >> 1
	left, right := intervals[:half], intervals[half:]
	parallel.Do(
		func() { left = ParallelFlatten(left) },
		func() { right = ParallelFlatten(right) },
	)
	for len(right) > 0 && left[len(left)-1].Extend(right[0]) {
		right = right[1:]
	}
	return append(left, right...)
}

// Covers tells whether the intervals cover the range [start, end)
// without gaps. intervals must be sorted by Start.
func Covers(intervals []Interval, start, end int) bool {
	for _, interval := range intervals {
		if interval.Start > start {
			return false
		}
		if interval.End >= end {
			return true
		}
		if interval.End > start {
			start = interval.End
		}
	}
	return start >= end
}

// Overlap determines whether the given start/end range overlaps with
// any of the given intervals. intervals must be Flattened and sorted
// by Start.
func Overlap(intervals []Interval, start, end int) bool {
	for left, right := 0, len(intervals)-1; left <= right; {
		mid := (left + right) / 2
		if intervals[mid].Start >= end {
			right = mid - 1
		} else if intervals[mid].End <= start {
			left = mid + 1
		} else {
			return true
		}
	}
	return false
}
