// Package fetch resolves source URLs into raw audio files with yt-dlp.
//
// YTDLP implements download.Fetcher:
//
//	fetcher := fetch.New(fetch.Options{
//	    WorkDir:      "/tmp/musicq",
//	    AllowedHosts: []string{"youtube.com", "youtu.be"},
//	    MaxRetries:   2,
//	    Thumbnails:   true,
//	})
//	artifact, err := fetcher.Fetch(ctx, "https://youtu.be/abc", nil)
//
// Failures are *model.FetchError with one of KindUnsupportedSource,
// KindNotFound or KindNetworkFailure. Local problems (no yt-dlp binary, an
// unusable work dir) are reported as network failures since the audio could
// not be retrieved. Only failures from a runnable yt-dlp are retried.
package fetch
