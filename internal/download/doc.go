// Package download runs the background download pipeline.
//
// # Coordinator
//
// The Coordinator owns one session's queue, status board and worker pool:
//
//  1. Submit registers a URL as pending and queues it
//  2. A free worker claims it and marks it active
//  3. The worker fetches raw audio with a Fetcher
//  4. The worker encodes it with a Transcoder
//  5. The item ends completed or failed on the board
//
// # Basic Usage
//
//	coord := download.NewCoordinator(fetcher, transcoder, download.Options{
//	    Workers: 3,
//	    OnEvent: func(event download.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    },
//	})
//
//	id, err := coord.Submit("https://youtu.be/dQw4w9WgXcQ")
//
//	snap := coord.StatusSnapshot()
//	fmt.Println(snap.Counts())
//
//	err = coord.Shutdown(ctx) // waits for every queued item
//
// # Shutdown
//
// Shutdown drains the queue: everything already submitted is processed.
// Stop drops the backlog and only waits for active items. Kill interrupts
// active items as well.
//
// # Failures
//
// A fetch or transcode failure marks that item failed and the worker moves
// on to the next one. Items are never retried by the pool; resubmit the URL
// to try again.
package download
