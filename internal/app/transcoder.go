package app

import (
	"github.com/handiism/musicq/internal/audio"
	"github.com/handiism/musicq/internal/config"
	"github.com/handiism/musicq/internal/download"
	ioutils "github.com/handiism/musicq/internal/io"
	"github.com/handiism/musicq/internal/transcode"
)

func newTranscoder(settings *config.Settings, onEvent func(download.ProgressEvent)) *transcode.FFmpeg {
	var tagger *audio.Tagger
	if settings.ModifyTags || settings.EmbedCoverArt {
		cfg := audio.DefaultTagConfig()
		cfg.ModifyTags = settings.ModifyTags
		tagger = audio.NewTagger(cfg)
	}

	return transcode.New(transcode.Options{
		OutputDir:       settings.DownloadsPath,
		FFmpegPath:      settings.FFmpegPath,
		FFprobePath:     settings.FFprobePath,
		KeepRaw:         settings.KeepRawArtifacts,
		Tagger:          tagger,
		EmbedCoverArt:   settings.EmbedCoverArt,
		CoverArtMaxSize: settings.CoverArtMaxSize,
		Images:          ioutils.NewImageService(),
		OnEvent:         onEvent,
	})
}
