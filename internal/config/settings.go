package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath string `json:"downloads_path" yaml:"downloads_path"`
	WorkDir       string `json:"work_dir" yaml:"work_dir"`
	Workers       int    `json:"workers" yaml:"workers"`

	// Fetch settings
	AllowedHosts       []string `json:"allowed_hosts" yaml:"allowed_hosts"`
	AudioFormat        string   `json:"audio_format" yaml:"audio_format"`
	FetchMaxRetries    int      `json:"fetch_max_retries" yaml:"fetch_max_retries"`
	FetchRetryCooldown float64  `json:"fetch_retry_cooldown" yaml:"fetch_retry_cooldown"`
	FetchRetryExponent float64  `json:"fetch_retry_exponent" yaml:"fetch_retry_exponent"`
	AutoInstallYTDLP   bool     `json:"auto_install_ytdlp" yaml:"auto_install_ytdlp"`

	// Transcode settings
	FFmpegPath       string `json:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFprobePath      string `json:"ffprobe_path" yaml:"ffprobe_path"`
	KeepRawArtifacts bool   `json:"keep_raw_artifacts" yaml:"keep_raw_artifacts"`

	// Tag settings
	ModifyTags      bool `json:"modify_tags" yaml:"modify_tags"`
	EmbedCoverArt   bool `json:"embed_cover_art" yaml:"embed_cover_art"`
	CoverArtMaxSize int  `json:"cover_art_max_size" yaml:"cover_art_max_size"`

	// Playlist settings
	CreatePlaylist         bool   `json:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat         string `json:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl
	PlaylistFileNameFormat string `json:"playlist_file_name_format" yaml:"playlist_file_name_format"`
	M3UExtended            bool   `json:"m3u_extended" yaml:"m3u_extended"`

	// Status API
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath: "music",
		WorkDir:       filepath.Join(os.TempDir(), "musicq"),
		Workers:       3,

		AllowedHosts:       []string{"youtube.com", "youtu.be", "music.youtube.com"},
		AudioFormat:        "bestaudio/best",
		FetchMaxRetries:    2,
		FetchRetryCooldown: 0.5,
		FetchRetryExponent: 4.0,
		AutoInstallYTDLP:   false,

		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		KeepRawArtifacts: false,

		ModifyTags:      true,
		EmbedCoverArt:   true,
		CoverArtMaxSize: 1000,

		CreatePlaylist:         false,
		PlaylistFormat:         "m3u",
		PlaylistFileNameFormat: "musicq-{date}",
		M3UExtended:            true,
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	settings.Validate()
	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate replaces out-of-range values with defaults.
func (s *Settings) Validate() {
	def := DefaultSettings()
	if s.Workers < 1 {
		s.Workers = def.Workers
	}
	if s.DownloadsPath == "" {
		s.DownloadsPath = def.DownloadsPath
	}
	if s.WorkDir == "" {
		s.WorkDir = def.WorkDir
	}
	if s.AudioFormat == "" {
		s.AudioFormat = def.AudioFormat
	}
	if s.FetchMaxRetries < 0 {
		s.FetchMaxRetries = 0
	}
	if s.FetchRetryExponent < 1 {
		s.FetchRetryExponent = 1
	}
	if s.FFmpegPath == "" {
		s.FFmpegPath = def.FFmpegPath
	}
	if s.FFprobePath == "" {
		s.FFprobePath = def.FFprobePath
	}
	if s.CoverArtMaxSize <= 0 {
		s.CoverArtMaxSize = def.CoverArtMaxSize
	}
	switch s.PlaylistFormat {
	case "m3u", "pls", "wpl":
	default:
		s.PlaylistFormat = def.PlaylistFormat
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
