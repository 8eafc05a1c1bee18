// Package status holds the board that tracks every submitted item by
// lifecycle state.
//
// Workers are the only writers:
//
//	board.Transition(id, model.StateActive, status.Details{Worker: 0})
//	board.Report(id, status.Progress{Fraction: 0.4, DisplayName: "Song"})
//	board.Transition(id, model.StateCompleted, status.Details{OutputPath: p})
//
// Front ends only read:
//
//	snap := board.Snapshot()
//	fmt.Println(snap.Counts())
package status
