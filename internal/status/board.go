package status

import (
	"sort"
	"sync"
	"time"

	"github.com/handiism/musicq/internal/model"
)

// Details carries the fields that accompany a state transition.
//
// Which fields are applied depends on the target state:
//   - Active: Worker, DisplayName, Artist
//   - Completed: OutputPath, DisplayName, Artist
//   - Failed: Err, DisplayName, Artist
//
// Empty DisplayName and Artist leave the current values alone.
type Details struct {
	Worker      int
	DisplayName string
	Artist      string
	OutputPath  string
	Err         error
}

// Progress is a non-state update for an active item.
type Progress struct {
	// Fraction is 0.0 to 1.0. Negative values leave progress unchanged.
	Fraction    float64
	DisplayName string
	Artist      string
}

// Board is the registry of every submitted WorkItem.
//
// Workers mutate it through Transition and Report; front ends read it through
// Snapshot. All methods are safe for concurrent use and every update is
// applied under a single write lock, so readers never see a half-updated
// item.
type Board struct {
	mu       sync.RWMutex
	items    map[string]*model.WorkItem
	finished uint64

	onDefect func(error)
}

// NewBoard creates an empty Board. onDefect, if non-nil, receives every
// *model.InternalError the board returns.
func NewBoard(onDefect func(error)) *Board {
	return &Board{
		items:    make(map[string]*model.WorkItem),
		onDefect: onDefect,
	}
}

// Register adds a new Pending item.
func (b *Board) Register(item model.WorkItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.items[item.ID]; exists {
		return b.defect(&model.InternalError{Kind: model.KindDuplicateID, ID: item.ID})
	}
	if item.State != model.StatePending {
		return b.defect(&model.InternalError{
			Kind:   model.KindIllegalTransition,
			ID:     item.ID,
			Detail: "register in state " + item.State.String(),
		})
	}

	stored := item
	b.items[item.ID] = &stored
	return nil
}

// Transition atomically moves an item to next and applies d.
func (b *Board) Transition(id string, next model.State, d Details) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok {
		return b.defect(&model.InternalError{Kind: model.KindUnknownID, ID: id})
	}
	if !item.State.CanTransitionTo(next) {
		return b.defect(&model.InternalError{
			Kind:   model.KindIllegalTransition,
			ID:     id,
			Detail: item.State.String() + " -> " + next.String(),
		})
	}

	// Build the new value first and swap it in whole.
	updated := *item
	updated.State = next
	if d.DisplayName != "" {
		updated.DisplayName = d.DisplayName
	}
	if d.Artist != "" {
		updated.Artist = d.Artist
	}

	now := time.Now()
	switch next {
	case model.StateActive:
		updated.Worker = d.Worker
		updated.StartedAt = now
		updated.Progress = 0
	case model.StateCompleted:
		updated.OutputPath = d.OutputPath
		updated.Progress = 1
		updated.FinishedAt = now
	case model.StateFailed:
		if d.Err != nil {
			updated.Error = d.Err.Error()
			updated.ErrorKind = model.KindOf(d.Err)
		}
		updated.FinishedAt = now
	}
	if next.IsTerminal() {
		b.finished++
		updated.FinishSeq = b.finished
	}

	*item = updated
	return nil
}

// Report updates progress and resolved metadata of an active item. Reports
// for items that are not active are ignored.
func (b *Board) Report(id string, p Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok || item.State != model.StateActive {
		return
	}
	if p.Fraction >= 0 {
		f := p.Fraction
		if f > 1 {
			f = 1
		}
		item.Progress = f
	}
	if p.DisplayName != "" {
		item.DisplayName = p.DisplayName
	}
	if p.Artist != "" {
		item.Artist = p.Artist
	}
}

// Get returns a copy of one item.
func (b *Board) Get(id string) (model.WorkItem, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	item, ok := b.items[id]
	if !ok {
		return model.WorkItem{}, false
	}
	return *item, true
}


// Snapshot returns a consistent copy of every item, bucketed by state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	all := make([]model.WorkItem, 0, len(b.items))
	for _, item := range b.items {
		all = append(all, *item)
	}
	b.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })

	snap := Snapshot{
		Pending:   []model.WorkItem{},
		Active:    []model.WorkItem{},
		Completed: []model.WorkItem{},
		Failed:    []model.WorkItem{},
		TakenAt:   time.Now(),
	}
	for _, item := range all {
		switch item.State {
		case model.StatePending:
			snap.Pending = append(snap.Pending, item)
		case model.StateActive:
			snap.Active = append(snap.Active, item)
		case model.StateCompleted:
			snap.Completed = append(snap.Completed, item)
		case model.StateFailed:
			snap.Failed = append(snap.Failed, item)
		}
	}
	return snap
}

func (b *Board) defect(err *model.InternalError) error {
	if b.onDefect != nil {
		b.onDefect(err)
	}
	return err
}
