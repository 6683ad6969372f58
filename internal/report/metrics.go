package report

import "fieldtrack.org/internal/track"

// entryGroup is one grouping bucket: the key value plus the indexes of the
// entries sharing it, in source order.
type entryGroup struct {
	key  string
	idxs []int
}

// groupEntries partitions entries by the extractor's key. Groups appear in
// first-seen order of their key, which is the documented rank tie-break.
func groupEntries(entries []track.TimeEntry, key func(track.TimeEntry) string) []entryGroup {
	index := make(map[string]int, len(entries))
	groups := make([]entryGroup, 0, len(entries))
	for i, e := range entries {
		k := key(e)
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, entryGroup{key: k})
		}
		groups[gi].idxs = append(groups[gi].idxs, i)
	}
	return groups
}

// sumHours totals the cached durations of the given entry indexes.
func sumHours(hours []float64, idxs []int) float64 {
	var total float64
	for _, i := range idxs {
		total += hours[i]
	}
	return total
}

// distinctUsers counts distinct entry owners within a group.
func distinctUsers(entries []track.TimeEntry, idxs []int) int {
	seen := make(map[string]struct{}, len(idxs))
	for _, i := range idxs {
		seen[entries[i].UserID] = struct{}{}
	}
	return len(seen)
}

// distinctValues collects distinct extractor values within a group in
// first-seen order.
func distinctValues(entries []track.TimeEntry, idxs []int, extract func(track.TimeEntry) string) []string {
	seen := make(map[string]struct{}, len(idxs))
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		v := extract(entries[i])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// percentage returns the share of part in total as 0..100, or 0 when the
// grand total is 0.
func percentage(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// perUser divides a group total by its active-user count, 0 when no users.
func perUser(total float64, users int) float64 {
	if users <= 0 {
		return 0
	}
	return total / float64(users)
}
