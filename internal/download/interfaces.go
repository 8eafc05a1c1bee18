package download

import (
	"context"

	"github.com/handiism/musicq/internal/model"
)

// ProgressFunc receives a completion fraction between 0.0 and 1.0.
type ProgressFunc func(fraction float64)

// Fetcher resolves a source reference into raw audio on local disk.
//
// Errors should be *model.FetchError so the failure kind reaches the status
// board.
type Fetcher interface {
	Fetch(ctx context.Context, sourceRef string, progress ProgressFunc) (model.Artifact, error)
}

// Transcoder encodes a fetched artifact into the target format and returns
// the path of the encoded file.
//
// Errors should be *model.TranscodeError.
type Transcoder interface {
	Transcode(ctx context.Context, artifact model.Artifact, target model.TargetFormat, progress ProgressFunc) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, sourceRef string, progress ProgressFunc) (model.Artifact, error)

func (f FetcherFunc) Fetch(ctx context.Context, sourceRef string, progress ProgressFunc) (model.Artifact, error) {
	return f(ctx, sourceRef, progress)
}

// TranscoderFunc adapts a function to Transcoder.
type TranscoderFunc func(ctx context.Context, artifact model.Artifact, target model.TargetFormat, progress ProgressFunc) (string, error)

func (f TranscoderFunc) Transcode(ctx context.Context, artifact model.Artifact, target model.TargetFormat, progress ProgressFunc) (string, error) {
	return f(ctx, artifact, target, progress)
}
