package aggregate

import (
	"sort"

	"github.com/okian/labx/internal/domain/lead"
)

// Recent returns up to n records, newest first. Records with equal
// timestamps keep their insertion order. The input is not reordered.
func Recent(records []lead.Record, n int) []lead.Record {
	if n <= 0 || len(records) == 0 {
		return []lead.Record{}
	}
	sorted := append([]lead.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
