package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// runResult is what one yt-dlp invocation reports.
type runResult struct {
	Title     string
	Artist    string
	Filename  string
	Thumbnail string
	Duration  float64
	Stderr    string
}

// runner downloads sourceRef to the output template and reports byte
// progress. Tests replace it.
type runner func(ctx context.Context, sourceRef, output string, onProgress func(downloaded, total int)) (runResult, error)

// progressInterval throttles yt-dlp progress callbacks.
const progressInterval = 250 * time.Millisecond

func ytdlpRunner(format string) runner {
	return func(ctx context.Context, sourceRef, output string, onProgress func(downloaded, total int)) (runResult, error) {
		dl := ytdlp.New().
			Format(format).
			NoPlaylist().
			ForceOverwrites().
			Output(output).
			PrintJSON()

		if onProgress != nil {
			dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
				onProgress(update.DownloadedBytes, update.TotalBytes)
			})
		}

		var res runResult
		result, err := dl.Run(ctx, sourceRef)
		if result != nil {
			res.Stderr = result.Stderr
		}
		if err != nil {
			return res, err
		}

		info, err := result.GetExtractedInfo()
		if err != nil {
			return res, err
		}
		if len(info) == 0 {
			return res, errors.New("yt-dlp reported no media")
		}

		first := info[0]
		res.Title = deref(first.Title)
		res.Artist = deref(first.Uploader)
		res.Filename = deref(first.Filename)
		res.Thumbnail = deref(first.Thumbnail)
		if first.Duration != nil {
			res.Duration = *first.Duration
		}
		return res, nil
	}
}

// Install downloads a yt-dlp binary into the go-ytdlp cache when none is
// found on PATH.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
