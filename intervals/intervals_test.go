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

package intervals

import (
	"math/rand"
	"testing"
)

func intervalsEqual(intervals1, intervals2 []Interval) bool {
	if len(intervals1) != len(intervals2) {
		return false
	}
	for i, interval1 := range intervals1 {
		if interval1 != intervals2[i] {
			return false
		}
	}
	return true
}

func makeLargeIntervalsSlice() (result []Interval) {
	result = make([]Interval, 0x30000)
	result[0].Start = 0
	result[0].End = 3
	for i := 1; i < len(result); i++ {
		if rand.Intn(100) < 20 {
			result[i].Start = result[i-1].End - 1
		} else {
			result[i].Start = result[i-1].End + 1
		}
		result[i].End = result[i].Start + 3
	}
	return result
}

func TestFlatten(t *testing.T) {
	if Flatten(nil) != nil {
		t.Error("empty Flatten failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {3, 4}}), []Interval{{2, 4}}) {
		t.Error("Flatten 1 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {4, 5}}), []Interval{{2, 3}, {4, 5}}) {
		t.Error("Flatten 2 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 4}, {3, 5}, {4, 6}}), []Interval{{2, 6}}) {
		t.Error("Flatten 3 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 4}, {3, 5}, {4, 6}, {7, 9}}), []Interval{{2, 6}, {7, 9}}) {
		t.Error("Flatten 4 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {3, 4}, {5, 6}, {6, 7}}), []Interval{{2, 4}, {5, 7}}) {
		t.Error("Flatten 5 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {2, 5}, {2, 4}, {2, 3}, {2, 6}, {2, 7}}), []Interval{{2, 7}}) {
		t.Error("Flatten 6 failed")
	}
}

func TestParallelFlatten(t *testing.T) {
	intervals := makeLargeIntervalsSlice()
	ParallelSortByStart(intervals)
	intervals = ParallelFlatten(intervals)
	if intervals[0].Start > intervals[0].End {
		t.Error("ParallelFlatten 1 failed")
	}
	for i := 1; i < len(intervals); i++ {
		interval := intervals[i]
		if interval.Start > interval.End {
			t.Error("ParallelFlatten 2 failed")
		}
		if intervals[i-1].End >= interval.Start {
			t.Error("ParallelFlatten 3 failed")
		}
	}
}

func TestOverlaps(t *testing.T) {
	if !(Interval{2, 5}).Overlaps(Interval{4, 6}) {
		t.Error("Overlaps 1 failed")
	}
	if (Interval{2, 5}).Overlaps(Interval{5, 6}) {
		t.Error("Overlaps 2 failed")
	}
	if !(Interval{2, 5}).Overlaps(Interval{0, 3}) {
		t.Error("Overlaps 3 failed")
	}
}

func TestOverlap(t *testing.T) {
	intervals := []Interval{{2, 4}, {6, 9}, {12, 20}}
	if !Overlap(intervals, 3, 5) {
		t.Error("Overlap 1 failed")
	}
	if Overlap(intervals, 4, 6) {
		t.Error("Overlap 2 failed")
	}
	if !Overlap(intervals, 0, 100) {
		t.Error("Overlap 3 failed")
	}
	if Overlap(intervals, 20, 25) {
		t.Error("Overlap 4 failed")
	}
}

func TestCovers(t *testing.T) {
	if !Covers([]Interval{{0, 10}}, 0, 10) {
		t.Error("Covers 1 failed")
	}
	if Covers([]Interval{{0, 4}, {5, 10}}, 0, 10) {
		t.Error("Covers 2 failed")
	}
	if !Covers([]Interval{{0, 6}, {5, 10}}, 0, 10) {
		t.Error("Covers 3 failed")
	}
	if Covers([]Interval{{1, 10}}, 0, 10) {
		t.Error("Covers 4 failed")
	}
	if !Covers([]Interval{{0, 10}}, 2, 8) {
		t.Error("Covers 5 failed")
	}
}
