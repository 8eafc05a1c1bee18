// Package model defines the core data structures used throughout musicq.
//
// # WorkItem
//
// WorkItem is one submitted URL tracked through its lifecycle:
//
//	item := model.NewWorkItem(id, 1, "https://youtu.be/dQw4w9WgXcQ")
//	fmt.Println(item.State)   // pending
//	fmt.Println(item.Title()) // the URL, until a title is resolved
//
// # State
//
// State transitions are monotonic:
//
//	Pending -> Active -> Completed | Failed
//
// Use State.CanTransitionTo to check a move before applying it.
//
// # Errors
//
// FetchError and TranscodeError carry an ErrorKind that ends up on a failed
// item. InternalError marks a broken invariant (duplicate or unknown id,
// illegal transition) and should never be seen in practice.
package model
