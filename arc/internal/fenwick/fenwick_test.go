// Copyright 2024, The Obscura Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package fenwick

import "testing"

func naivePrefixSum(counts []uint32, i int) uint32 {
	var sum uint32
	for _, c := range counts[:i] {
		sum += c
	}
	return sum
}

func TestPrefixSumMatchesNaive(t *testing.T) {
	counts := []uint32{128, 1, 5, 0, 200, 1, 1, 9}
	tbl := NewFromCounts(counts)
	for i := 0; i <= len(counts); i++ {
		got := tbl.PrefixSum(i)
		want := naivePrefixSum(counts, i)
		if got != want {
			t.Errorf("PrefixSum(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestAddUpdatesPrefixSums(t *testing.T) {
	counts := make([]uint32, 16)
	for i := range counts {
		counts[i] = 1
	}
	tbl := NewFromCounts(counts)
	tbl.Add(3, 10)
	counts[3] += 10
	for i := 0; i <= len(counts); i++ {
		if got, want := tbl.PrefixSum(i), naivePrefixSum(counts, i); got != want {
			t.Errorf("PrefixSum(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestSetOverwrites(t *testing.T) {
	counts := []uint32{1, 1, 1, 1}
	tbl := NewFromCounts(counts)
	tbl.Set(2, 50)
	if got, want := tbl.Get(2), uint32(50); got != want {
		t.Errorf("Get(2) = %d, want %d", got, want)
	}
	tbl.Set(2, 1)
	if got, want := tbl.Get(2), uint32(1); got != want {
		t.Errorf("Get(2) after shrink = %d, want %d", got, want)
	}
}

func TestRankQueryIsInverseOfPrefixSum(t *testing.T) {
	counts := []uint32{3, 1, 4, 1, 5, 9, 2, 6}
	tbl := NewFromCounts(counts)
	total := tbl.Total()

	for v := uint32(0); v < total; v++ {
		idx := tbl.RankQuery(v)
		if got := tbl.PrefixSum(idx + 1); got <= v {
			t.Fatalf("RankQuery(%d) = %d, but PrefixSum(%d) = %d <= %d", v, idx, idx+1, got, v)
		}
		if idx > 0 {
			if got := tbl.PrefixSum(idx); got > v {
				t.Fatalf("RankQuery(%d) = %d, but PrefixSum(%d) = %d > %d", v, idx, idx, got, v)
			}
		}
	}
}

func TestScaleKeepsCountsPositive(t *testing.T) {
	counts := make([]uint32, 258)
	for i := range counts {
		counts[i] = 1 << 20
	}
	tbl := NewFromCounts(counts)
	tbl.Scale(1 << 14)
	for i := 0; i < 258; i++ {
		if tbl.Get(i) == 0 {
			t.Fatalf("Get(%d) = 0 after Scale, want >= 1", i)
		}
	}
	if tbl.Total() > 1<<30-1 {
		t.Fatalf("Total() = %d after Scale, exceeds MaxFrequency", tbl.Total())
	}
}

func TestResetRebuildsTable(t *testing.T) {
	tbl := NewFromCounts([]uint32{1, 1, 1})
	tbl.Add(0, 100)
	tbl.Reset([]uint32{2, 2, 2, 2})
	if got, want := tbl.Size(), 4; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	if got, want := tbl.Total(), uint32(8); got != want {
		t.Fatalf("Total() = %d, want %d", got, want)
	}
}
