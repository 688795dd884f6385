package versionscheme

import (
	"math"
	"slices"
)

// ExtractNumbers returns the maximal digit runs of s, left to right.
// Runs that do not fit into uint64 saturate at math.MaxUint64.
func ExtractNumbers(s string) []uint64 {
	var numbers []uint64

	inRun := false
	var cur uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			if inRun {
				numbers = append(numbers, cur)
				inRun = false
			}
			continue
		}

		if !inRun {
			inRun = true
			cur = 0
		}

		d := uint64(c - '0')
		if cur > (math.MaxUint64-d)/10 {
			cur = math.MaxUint64
			continue
		}
		cur = cur*10 + d
	}

	if inRun {
		numbers = append(numbers, cur)
	}

	return numbers
}

// Compare orders two tags of the same shape newest first.
// It returns -1 when a is newer than b, 1 when a is older and 0 when
// both carry the same numbers. Components are compared left to right;
// a missing trailing component counts as zero.
//
// The result is meaningless for tags of different shapes, filter first.
func Compare(a, b string) int {
	return compareNumbers(ExtractNumbers(a), ExtractNumbers(b))
}

func compareNumbers(a, b []uint64) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}

		switch {
		case x > y:
			return -1
		case x < y:
			return 1
		}
	}

	return 0
}

// SortDescending sorts tags newest first. Equal versions keep their input order.
func SortDescending(tags []Tag) {
	type keyed struct {
		tag     Tag
		numbers []uint64
	}

	items := make([]keyed, len(tags))
	for i, t := range tags {
		items[i] = keyed{tag: t, numbers: ExtractNumbers(t.Name)}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return compareNumbers(a.numbers, b.numbers)
	})

	for i := range items {
		tags[i] = items[i].tag
	}
}
