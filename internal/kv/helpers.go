package kv

import (
	"sort"
	"strconv"
)

// #region slice-helpers

// sliceRange mimics Redis LRANGE/ZRANGE semantics: negative indices count
// from the end, -1 means "last element".
func sliceRange[T any](s []T, start, stop int) []T {
	n := len(s)
	if n == 0 {
		return nil
	}
	if start < 0 {
		start = n + start
	}
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil
	}
	out := make([]T, stop-start+1)
	copy(out, s[start:stop+1])
	return out
}

func sliceRangeZ(s []ZMember, start, stop int) []ZMember {
	return sliceRange(s, start, stop)
}

func sortZMembersDesc(members []ZMember) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Score > members[j].Score
	})
}

// #endregion slice-helpers

// #region numeric-helpers

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatFloat64(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// #endregion numeric-helpers
