package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Workers != 3 {
		t.Errorf("Workers = %d, want 3", s.Workers)
	}
	if s.DownloadsPath != "music" {
		t.Errorf("DownloadsPath = %q, want %q", s.DownloadsPath, "music")
	}
	if len(s.AllowedHosts) == 0 {
		t.Error("AllowedHosts should not be empty")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workers != DefaultSettings().Workers {
		t.Errorf("Workers = %d, want default", s.Workers)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musicq.json")
	data := `{"workers": 5, "downloads_path": "/srv/music", "allowed_hosts": []}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workers != 5 {
		t.Errorf("Workers = %d, want 5", s.Workers)
	}
	if s.DownloadsPath != "/srv/music" {
		t.Errorf("DownloadsPath = %q", s.DownloadsPath)
	}
	if len(s.AllowedHosts) != 0 {
		t.Errorf("AllowedHosts = %v, want empty", s.AllowedHosts)
	}
	// Unset keys keep their defaults.
	if s.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want default", s.FFmpegPath)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musicq.yaml")
	data := "workers: 2\nplaylist_format: pls\ncreate_playlist: true\nallowed_hosts:\n  - example.com\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workers != 2 || s.PlaylistFormat != "pls" || !s.CreatePlaylist {
		t.Errorf("unexpected settings: %+v", s)
	}
	if len(s.AllowedHosts) != 1 || s.AllowedHosts[0] != "example.com" {
		t.Errorf("AllowedHosts = %v", s.AllowedHosts)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := DefaultSettings()
			s.Workers = 7
			s.ListenAddr = "127.0.0.1:8080"

			if err := s.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.Workers != 7 || loaded.ListenAddr != "127.0.0.1:8080" {
				t.Errorf("loaded = %+v", loaded)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := &Settings{
		Workers:            0,
		FetchMaxRetries:    -3,
		FetchRetryExponent: 0,
		PlaylistFormat:     "zpl",
	}
	s.Validate()

	if s.Workers != 3 {
		t.Errorf("Workers = %d, want 3", s.Workers)
	}
	if s.FetchMaxRetries != 0 {
		t.Errorf("FetchMaxRetries = %d, want 0", s.FetchMaxRetries)
	}
	if s.FetchRetryExponent != 1 {
		t.Errorf("FetchRetryExponent = %v, want 1", s.FetchRetryExponent)
	}
	if s.PlaylistFormat != "m3u" {
		t.Errorf("PlaylistFormat = %q, want m3u", s.PlaylistFormat)
	}
	if s.DownloadsPath == "" || s.WorkDir == "" || s.FFmpegPath == "" {
		t.Errorf("empty paths not filled: %+v", s)
	}
}
