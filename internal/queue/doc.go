// Package queue provides the closeable FIFO that feeds the worker pool.
//
//	q := queue.New[model.WorkItem]()
//	q.Push(item)
//
//	item, err := q.Pop(ctx) // blocks until an item or Close
//	if errors.Is(err, queue.ErrClosed) {
//	    return // closed and drained
//	}
package queue
