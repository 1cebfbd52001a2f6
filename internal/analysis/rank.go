package analysis

import "sort"

// GroupSummary ties a Summary to the group it was computed for.
type GroupSummary struct {
	Group string
	Summary
}

// RankByCrisisShare sorts groups by descending crisis share, then by
// descending crisis count, then by name so the order is stable.
func RankByCrisisShare(groups []GroupSummary) []GroupSummary {
	out := append([]GroupSummary(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CrisisShare != out[j].CrisisShare {
			return out[i].CrisisShare > out[j].CrisisShare
		}
		if out[i].CrisisCount != out[j].CrisisCount {
			return out[i].CrisisCount > out[j].CrisisCount
		}
		return out[i].Group < out[j].Group
	})
	return out
}
