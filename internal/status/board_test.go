package status

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/handiism/musicq/internal/model"
)

func newItem(n uint64) model.WorkItem {
	return model.NewWorkItem(fmt.Sprintf("item-%d", n), n, fmt.Sprintf("https://youtu.be/%d", n))
}

func TestBoard_RegisterDuplicate(t *testing.T) {
	var defects []error
	b := NewBoard(func(err error) { defects = append(defects, err) })

	if err := b.Register(newItem(1)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := b.Register(newItem(1))
	if model.KindOf(err) != model.KindDuplicateID {
		t.Errorf("duplicate Register error kind = %q, want %q", model.KindOf(err), model.KindDuplicateID)
	}
	if len(defects) != 1 {
		t.Errorf("onDefect called %d times, want 1", len(defects))
	}
	if got := len(b.Snapshot().Pending); got != 1 {
		t.Errorf("registered items = %d, want 1", got)
	}
}

func TestBoard_RegisterRejectsNonPending(t *testing.T) {
	b := NewBoard(nil)
	item := newItem(1)
	item.State = model.StateActive

	if err := b.Register(item); !model.IsInternal(err) {
		t.Errorf("Register(active) error = %v, want internal error", err)
	}
}

func TestBoard_TransitionUnknownID(t *testing.T) {
	b := NewBoard(nil)
	err := b.Transition("missing", model.StateActive, Details{})
	if model.KindOf(err) != model.KindUnknownID {
		t.Errorf("error kind = %q, want %q", model.KindOf(err), model.KindUnknownID)
	}
}

func TestBoard_TransitionsAreMonotonic(t *testing.T) {
	tests := []struct {
		name    string
		path    []model.State
		wantErr bool
	}{
		{"pending to active", []model.State{model.StateActive}, false},
		{"to completed", []model.State{model.StateActive, model.StateCompleted}, false},
		{"to failed", []model.State{model.StateActive, model.StateFailed}, false},
		{"skip active", []model.State{model.StateCompleted}, true},
		{"back to pending", []model.State{model.StateActive, model.StatePending}, true},
		{"completed to active", []model.State{model.StateActive, model.StateCompleted, model.StateActive}, true},
		{"failed to completed", []model.State{model.StateActive, model.StateFailed, model.StateCompleted}, true},
		{"active twice", []model.State{model.StateActive, model.StateActive}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(nil)
			item := newItem(1)
			_ = b.Register(item)

			var err error
			for _, s := range tt.path {
				err = b.Transition(item.ID, s, Details{})
				if err != nil {
					break
				}
			}

			if tt.wantErr {
				if model.KindOf(err) != model.KindIllegalTransition {
					t.Errorf("error = %v, want illegal transition", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBoard_TransitionDetails(t *testing.T) {
	b := NewBoard(nil)
	ok, bad := newItem(1), newItem(2)
	_ = b.Register(ok)
	_ = b.Register(bad)

	_ = b.Transition(ok.ID, model.StateActive, Details{Worker: 2})
	b.Report(ok.ID, Progress{Fraction: 0.5, DisplayName: "Resolved"})
	_ = b.Transition(ok.ID, model.StateCompleted, Details{OutputPath: "/music/Resolved.mp3"})

	fetchErr := &model.FetchError{Kind: model.KindNotFound, Source: bad.SourceRef, Err: errors.New("video unavailable")}
	_ = b.Transition(bad.ID, model.StateActive, Details{Worker: 0})
	_ = b.Transition(bad.ID, model.StateFailed, Details{Err: fetchErr})

	got, _ := b.Get(ok.ID)
	if got.State != model.StateCompleted || got.OutputPath != "/music/Resolved.mp3" {
		t.Errorf("completed item = %+v", got)
	}
	if got.DisplayName != "Resolved" || got.Worker != 2 || got.Progress != 1 {
		t.Errorf("completed item metadata = %+v", got)
	}
	if got.FinishedAt.IsZero() || got.StartedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, _ = b.Get(bad.ID)
	if got.State != model.StateFailed {
		t.Fatalf("state = %s, want failed", got.State)
	}
	if got.Error != fetchErr.Error() {
		t.Errorf("Error = %q, want %q", got.Error, fetchErr.Error())
	}
	if got.ErrorKind != model.KindNotFound {
		t.Errorf("ErrorKind = %q, want %q", got.ErrorKind, model.KindNotFound)
	}
	if got.OutputPath != "" {
		t.Errorf("failed item has OutputPath %q", got.OutputPath)
	}
}

func TestBoard_ReportIgnoredWhenNotActive(t *testing.T) {
	b := NewBoard(nil)
	item := newItem(1)
	_ = b.Register(item)

	b.Report(item.ID, Progress{Fraction: 0.7, DisplayName: "Nope"})
	b.Report("missing", Progress{Fraction: 0.7})

	got, _ := b.Get(item.ID)
	if got.Progress != 0 || got.DisplayName != "" {
		t.Errorf("pending item was modified: %+v", got)
	}
}

func TestBoard_SnapshotBuckets(t *testing.T) {
	b := NewBoard(nil)
	for i := uint64(1); i <= 4; i++ {
		_ = b.Register(newItem(i))
	}
	_ = b.Transition("item-2", model.StateActive, Details{})
	_ = b.Transition("item-3", model.StateActive, Details{})
	_ = b.Transition("item-3", model.StateCompleted, Details{OutputPath: "x.mp3"})
	_ = b.Transition("item-4", model.StateActive, Details{})
	_ = b.Transition("item-4", model.StateFailed, Details{Err: errors.New("boom")})

	snap := b.Snapshot()
	want := Counts{Pending: 1, Active: 1, Completed: 1, Failed: 1}
	if snap.Counts() != want {
		t.Errorf("Counts() = %+v, want %+v", snap.Counts(), want)
	}
	if snap.Pending[0].ID != "item-1" || snap.Active[0].ID != "item-2" {
		t.Errorf("unexpected bucket contents: %+v", snap)
	}
	if snap.Failed[0].Error != "boom" {
		t.Errorf("failed error = %q, want %q", snap.Failed[0].Error, "boom")
	}
	if _, ok := snap.Find("item-3"); !ok {
		t.Error("Find(item-3) = false")
	}
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	b := NewBoard(nil)
	_ = b.Register(newItem(1))

	snap := b.Snapshot()
	snap.Pending[0].DisplayName = "mutated"

	got, _ := b.Get("item-1")
	if got.DisplayName != "" {
		t.Error("mutating a snapshot changed the board")
	}
}

func TestBoard_SnapshotIdempotent(t *testing.T) {
	b := NewBoard(nil)
	for i := uint64(1); i <= 5; i++ {
		_ = b.Register(newItem(i))
	}
	_ = b.Transition("item-1", model.StateActive, Details{})

	first := b.Snapshot()
	second := b.Snapshot()
	if !reflect.DeepEqual(first.Items(), second.Items()) {
		t.Errorf("consecutive snapshots differ:\n%+v\n%+v", first, second)
	}
}

func TestBoard_SnapshotOrderedBySubmission(t *testing.T) {
	b := NewBoard(nil)
	for _, n := range []uint64{5, 3, 1, 4, 2} {
		_ = b.Register(newItem(n))
	}

	snap := b.Snapshot()
	for i, item := range snap.Pending {
		if item.Seq != uint64(i+1) {
			t.Errorf("Pending[%d].Seq = %d, want %d", i, item.Seq, i+1)
		}
	}
}

func TestBoard_NoTornReads(t *testing.T) {
	b := NewBoard(nil)
	const n = 200
	for i := uint64(1); i <= n; i++ {
		_ = b.Register(newItem(i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= n; i++ {
			id := fmt.Sprintf("item-%d", i)
			_ = b.Transition(id, model.StateActive, Details{Worker: 1})
			_ = b.Transition(id, model.StateCompleted, Details{OutputPath: id + ".mp3"})
		}
	}()

	for r := 0; r < 50; r++ {
		snap := b.Snapshot()
		if snap.Counts().Total() != n {
			t.Fatalf("snapshot total = %d, want %d", snap.Counts().Total(), n)
		}
		for _, item := range snap.Completed {
			if item.OutputPath != item.ID+".mp3" || item.FinishedAt.IsZero() {
				t.Fatalf("torn completed item: %+v", item)
			}
		}
		for _, item := range snap.Active {
			if item.Worker != 1 || item.StartedAt.IsZero() {
				t.Fatalf("torn active item: %+v", item)
			}
		}
	}
	wg.Wait()
}

func TestBoard_LastFinishedOrder(t *testing.T) {
	b := NewBoard(nil)
	for i := uint64(1); i <= 6; i++ {
		_ = b.Register(newItem(i))
		_ = b.Transition(fmt.Sprintf("item-%d", i), model.StateActive, Details{})
	}
	// item-1 was submitted first but finishes last.
	for _, id := range []string{"item-2", "item-3", "item-4", "item-1"} {
		_ = b.Transition(id, model.StateCompleted, Details{OutputPath: id + ".mp3"})
	}
	_ = b.Transition("item-6", model.StateFailed, Details{Err: errors.New("late")})
	_ = b.Transition("item-5", model.StateFailed, Details{Err: errors.New("later")})

	snap := b.Snapshot()

	var got []string
	for _, item := range snap.LastCompleted(3) {
		got = append(got, item.ID)
	}
	if want := []string{"item-3", "item-4", "item-1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("LastCompleted(3) = %v, want %v", got, want)
	}

	got = got[:0]
	for _, item := range snap.LastFailed(3) {
		got = append(got, item.ID)
	}
	if want := []string{"item-6", "item-5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("LastFailed(3) = %v, want %v", got, want)
	}

	if snap.Completed[0].ID != "item-1" {
		t.Errorf("Completed bucket no longer ordered by submission: %s first", snap.Completed[0].ID)
	}
	if item, _ := b.Get("item-1"); item.FinishSeq != 4 {
		t.Errorf("item-1 FinishSeq = %d, want 4", item.FinishSeq)
	}
}
