// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canonical

import (
	"strconv"
	"strings"
)

// ParseVersion parses a dot-delimited integer tuple ("4.10" -> [4 10]).
// The second return is false when any component fails to parse; the caller
// treats such versions as the lowest possible (nil tuple).
func ParseVersion(s string) ([]int, bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	tuple := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		tuple = append(tuple, n)
	}
	return tuple, true
}

// CompareVersions compares two version tuples numerically, component by
// component; a missing component counts as zero ("4.1" == "4.1.0").
// Returns -1, 0, or 1.
func CompareVersions(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
