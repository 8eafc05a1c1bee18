package status

import (
	"cmp"
	"slices"
	"time"

	"github.com/handiism/musicq/internal/model"
)

// Snapshot is a point-in-time copy of the board. Lists are ordered by
// submission and never nil.
type Snapshot struct {
	Pending   []model.WorkItem `json:"pending"`
	Active    []model.WorkItem `json:"active"`
	Completed []model.WorkItem `json:"completed"`
	Failed    []model.WorkItem `json:"failed"`
	TakenAt   time.Time        `json:"taken_at"`
}

// Counts holds the size of each bucket.
type Counts struct {
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Total returns the number of items across all buckets.
func (c Counts) Total() int {
	return c.Pending + c.Active + c.Completed + c.Failed
}

// Counts returns the size of each bucket.
func (s Snapshot) Counts() Counts {
	return Counts{
		Pending:   len(s.Pending),
		Active:    len(s.Active),
		Completed: len(s.Completed),
		Failed:    len(s.Failed),
	}
}

// Items returns the snapshot without its timestamp, for comparing two
// snapshots structurally.
func (s Snapshot) Items() Snapshot {
	s.TakenAt = time.Time{}
	return s
}

// Find returns the item with the given id from any bucket.
func (s Snapshot) Find(id string) (model.WorkItem, bool) {
	for _, bucket := range [][]model.WorkItem{s.Pending, s.Active, s.Completed, s.Failed} {
		for _, item := range bucket {
			if item.ID == id {
				return item, true
			}
		}
	}
	return model.WorkItem{}, false
}

// LastCompleted returns up to n most recently finished completed items,
// oldest first.
func (s Snapshot) LastCompleted(n int) []model.WorkItem {
	return lastFinished(s.Completed, n)
}

// LastFailed returns up to n most recently finished failed items, oldest
// first.
func (s Snapshot) LastFailed(n int) []model.WorkItem {
	return lastFinished(s.Failed, n)
}

func lastFinished(items []model.WorkItem, n int) []model.WorkItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b model.WorkItem) int {
		return cmp.Compare(a.FinishSeq, b.FinishSeq)
	})
	if n <= 0 || len(sorted) <= n {
		return sorted
	}
	return sorted[len(sorted)-n:]
}
