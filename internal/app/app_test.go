package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/handiism/musicq/internal/config"
	"github.com/handiism/musicq/internal/model"
	"github.com/handiism/musicq/internal/status"
)

func stubLookPath(t *testing.T, present ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(file string) (string, error) {
		for _, p := range present {
			if p == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestPreflight(t *testing.T) {
	settings := config.DefaultSettings()
	settings.AutoInstallYTDLP = false

	stubLookPath(t, "ffmpeg", "ffprobe", "yt-dlp")
	if err := Preflight(context.Background(), settings); err != nil {
		t.Errorf("all tools present: %v", err)
	}

	stubLookPath(t, "ffprobe")
	err := Preflight(context.Background(), settings)
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("err = %v, want ErrToolMissing", err)
	}
	if !strings.Contains(err.Error(), "ffmpeg") || !strings.Contains(err.Error(), "yt-dlp") {
		t.Errorf("err = %v, want both missing tools named", err)
	}
}

func TestWritePlaylist(t *testing.T) {
	settings := config.DefaultSettings()
	settings.DownloadsPath = t.TempDir()
	settings.PlaylistFormat = "m3u"
	settings.M3UExtended = true

	snap := status.Snapshot{
		Completed: []model.WorkItem{
			{DisplayName: "One", Artist: "Band", OutputPath: filepath.Join(settings.DownloadsPath, "One.mp3")},
			{SourceRef: "https://youtu.be/two", OutputPath: filepath.Join(settings.DownloadsPath, "Two.mp3")},
		},
		Failed: []model.WorkItem{{SourceRef: "https://youtu.be/bad"}},
	}
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	path, err := WritePlaylist(context.Background(), settings, snap, now)
	if err != nil {
		t.Fatalf("WritePlaylist: %v", err)
	}
	if filepath.Base(path) != "musicq-2024-05-01.m3u" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "#EXTINF:-1,Band - One\nOne.mp3\n") || !strings.Contains(content, "Two.mp3\n") {
		t.Errorf("playlist = %q", content)
	}
	if strings.Contains(content, "bad") {
		t.Error("failed item in playlist")
	}
}

func TestWritePlaylist_NothingCompleted(t *testing.T) {
	settings := config.DefaultSettings()
	settings.DownloadsPath = t.TempDir()

	path, err := WritePlaylist(context.Background(), settings, status.Snapshot{}, time.Now())
	if err != nil || path != "" {
		t.Errorf("WritePlaylist = %q, %v", path, err)
	}
}

func TestPlaylistName(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 5, 0, time.UTC)
	tests := []struct {
		pattern string
		want    string
	}{
		{"", "musicq-2024-05-01"},
		{"session {date} {time}", "session 2024-05-01 103005"},
		{"fixed", "fixed"},
	}
	for _, tt := range tests {
		if got := playlistName(tt.pattern, now); got != tt.want {
			t.Errorf("playlistName(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestNewCoordinator(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Workers = 4
	settings.DownloadsPath = t.TempDir()
	settings.WorkDir = t.TempDir()

	c := NewCoordinator(settings, nil)
	defer c.Kill()

	if c.Workers() != 4 {
		t.Errorf("Workers = %d, want 4", c.Workers())
	}
}
