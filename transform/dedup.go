package transform

import "sort"

// dedupeLatest keeps exactly one row per natural key: rows are grouped by
// key, each group is ranked by the newer comparator, and the head survives.
// This replaces the SQL rank-and-filter window with the same tie-break rule
// (snapshot load time descending). First-seen key order is preserved so the
// output is deterministic.
func dedupeLatest[T any](rows []T, key func(T) string, newer func(a, b T) bool) []T {
	groups := make(map[string][]T, len(rows))
	var order []string

	for _, row := range rows {
		k := key(row)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}

	out := make([]T, 0, len(groups))
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool { return newer(group[i], group[j]) })
		out = append(out, group[0])
	}
	return out
}
