package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/musicq/internal/audio"
	"github.com/handiism/musicq/internal/config"
	"github.com/handiism/musicq/internal/download"
	"github.com/handiism/musicq/internal/fetch"
	ioutils "github.com/handiism/musicq/internal/io"
	"github.com/handiism/musicq/internal/model"
	"github.com/handiism/musicq/internal/status"
)

// ErrToolMissing is returned by Preflight when a required binary is absent.
var ErrToolMissing = errors.New("required tool not found")

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Preflight checks that ffmpeg, ffprobe and yt-dlp can be found. With
// AutoInstallYTDLP set, a missing yt-dlp is downloaded instead.
func Preflight(ctx context.Context, settings *config.Settings) error {
	var missing []string
	for _, tool := range []string{settings.FFmpegPath, settings.FFprobePath} {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if _, err := lookPath("yt-dlp"); err != nil {
		if !settings.AutoInstallYTDLP {
			missing = append(missing, "yt-dlp")
		} else if err := fetch.Install(ctx); err != nil {
			return fmt.Errorf("install yt-dlp: %w", err)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolMissing, strings.Join(missing, ", "))
	}
	return nil
}

// NewCoordinator builds the yt-dlp fetcher and ffmpeg transcoder described
// by settings and starts a coordinator over them.
func NewCoordinator(settings *config.Settings, onEvent func(download.ProgressEvent)) *download.Coordinator {
	fetcher := fetch.New(fetch.Options{
		WorkDir:       settings.WorkDir,
		AllowedHosts:  settings.AllowedHosts,
		Format:        settings.AudioFormat,
		MaxRetries:    settings.FetchMaxRetries,
		RetryCooldown: settings.FetchRetryCooldown,
		RetryExponent: settings.FetchRetryExponent,
		Thumbnails:    settings.EmbedCoverArt,
		OnEvent:       onEvent,
	})

	return download.NewCoordinator(fetcher, newTranscoder(settings, onEvent), download.Options{
		Workers: settings.Workers,
		Target:  model.MP3At192,
		OnEvent: onEvent,
	})
}

// WritePlaylist writes a playlist of every completed item in snap to the
// downloads directory and returns its path. It returns "" when nothing
// completed.
func WritePlaylist(ctx context.Context, settings *config.Settings, snap status.Snapshot, now time.Time) (string, error) {
	if len(snap.Completed) == 0 {
		return "", nil
	}

	format, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
	if err != nil {
		return "", err
	}

	entries := make([]audio.Entry, 0, len(snap.Completed))
	for _, item := range snap.Completed {
		entries = append(entries, audio.Entry{
			Path:   item.OutputPath,
			Title:  item.Title(),
			Artist: item.Artist,
		})
	}

	name := playlistName(settings.PlaylistFileNameFormat, now)
	content := audio.NewPlaylistCreator(format, settings.M3UExtended).CreatePlaylist(name, entries)

	path := ioutils.UniquePath(settings.DownloadsPath, ioutils.SanitizeFileName(name), format.Extension(), nil)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// playlistName expands {date} and {time} in the configured file name.
func playlistName(pattern string, now time.Time) string {
	if pattern == "" {
		pattern = "musicq-{date}"
	}
	return strings.NewReplacer(
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("150405"),
	).Replace(pattern)
}

// OutputDir returns the absolute downloads directory for display.
func OutputDir(settings *config.Settings) string {
	if abs, err := filepath.Abs(settings.DownloadsPath); err == nil {
		return abs
	}
	return settings.DownloadsPath
}
