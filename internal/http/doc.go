// Package http provides the small HTTP client musicq uses outside yt-dlp,
// mainly to pull thumbnails for cover art.
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	err := client.DownloadFile(ctx, thumbURL, "/tmp/musicq/abc.webp", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// Non-200 responses come back as *StatusError.
package http
