package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/handiism/musicq/internal/audio"
	"github.com/handiism/musicq/internal/download"
	ioutils "github.com/handiism/musicq/internal/io"
	"github.com/handiism/musicq/internal/model"
)

const (
	progressTimePrefix   = "out_time_us="
	progressLegacyPrefix = "out_time_ms=" // microseconds despite the name
	progressEnd          = "progress=end"

	// stderrTail is how many log lines are kept for error messages.
	stderrTail = 5
)

// codecs maps a target codec to the ffmpeg encoder.
var codecs = map[string]string{
	"mp3": "libmp3lame",
}

// Options configures an FFmpeg transcoder.
type Options struct {
	// OutputDir receives the encoded files.
	OutputDir string

	FFmpegPath  string
	FFprobePath string

	// KeepRaw keeps the fetched artifact and thumbnail after encoding.
	KeepRaw bool

	// Tagger writes ID3 tags after encoding. Nil skips tagging.
	Tagger *audio.Tagger

	// EmbedCoverArt embeds the artifact thumbnail, resized to fit within
	// CoverArtMaxSize pixels. A CoverArtMaxSize of 0 keeps the original size.
	EmbedCoverArt   bool
	CoverArtMaxSize int
	Images          *ioutils.ImageService

	// OnEvent receives tagging and cleanup warnings. May be nil.
	OnEvent func(download.ProgressEvent)
}

// FFmpeg encodes artifacts with the ffmpeg binary.
type FFmpeg struct {
	opts Options

	mu       sync.Mutex
	reserved map[string]bool
}

// New creates an FFmpeg transcoder.
func New(opts Options) *FFmpeg {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.Images == nil {
		opts.Images = ioutils.NewImageService()
	}
	return &FFmpeg{
		opts:     opts,
		reserved: make(map[string]bool),
	}
}

// Transcode implements download.Transcoder.
func (f *FFmpeg) Transcode(ctx context.Context, artifact model.Artifact, target model.TargetFormat, progress download.ProgressFunc) (string, error) {
	encoder, ok := codecs[target.Codec]
	if !ok {
		return "", &model.TranscodeError{Kind: model.KindConversionFailure, Path: artifact.Path, Err: fmt.Errorf("unsupported codec %q", target.Codec)}
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		return "", &model.TranscodeError{Kind: model.KindFilesystemError, Path: artifact.Path, Err: err}
	}
	if err := ioutils.EnsureDir(f.opts.OutputDir); err != nil {
		return "", &model.TranscodeError{Kind: model.KindFilesystemError, Path: f.opts.OutputDir, Err: err}
	}

	outPath := f.reserve(outputBase(artifact), target.Extension())
	defer f.release(outPath)

	duration := artifact.Duration
	if duration <= 0 {
		if d, err := f.probeDuration(ctx, artifact.Path); err == nil {
			duration = d
		}
	}

	ext := filepath.Ext(outPath)
	partPath := strings.TrimSuffix(outPath, ext) + ".part" + ext
	args := buildArgs(artifact.Path, partPath, encoder, target.Bitrate)

	if err := f.run(ctx, artifact.Path, args, duration, progress); err != nil {
		os.Remove(partPath)
		f.cleanup(artifact)
		return "", err
	}

	if err := ioutils.MoveFile(ctx, partPath, outPath); err != nil {
		os.Remove(partPath)
		f.cleanup(artifact)
		return "", &model.TranscodeError{Kind: model.KindFilesystemError, Path: outPath, Err: err}
	}

	f.tag(ctx, outPath, artifact)
	f.cleanup(artifact)

	if progress != nil {
		progress(1)
	}
	return outPath, nil
}

// run executes ffmpeg and feeds progress from its -progress output.
func (f *FFmpeg) run(ctx context.Context, input string, args []string, duration float64, progress download.ProgressFunc) error {
	cmd := exec.CommandContext(ctx, f.opts.FFmpegPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &model.TranscodeError{Kind: startFailureKind(err), Path: input, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &model.TranscodeError{Kind: startFailureKind(err), Path: input, Err: err}
	}

	var tail []string
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if frac, ok := parseProgress(line, duration); ok {
			if progress != nil {
				progress(frac)
			}
			continue
		}
		if line != "" && !strings.Contains(line, "=") {
			tail = append(tail, line)
			if len(tail) > stderrTail {
				tail = tail[1:]
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else if len(tail) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.Join(tail, "; "))
		}
		return &model.TranscodeError{Kind: model.KindConversionFailure, Path: input, Err: err}
	}
	return nil
}

// startFailureKind classifies an error from starting ffmpeg. A binary that
// cannot be found is ToolMissing; other path errors (permissions, a broken
// working directory) are FilesystemError.
func startFailureKind(err error) model.ErrorKind {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return model.KindToolMissing
	case ioutils.IsFilesystemError(err):
		return model.KindFilesystemError
	}
	return model.KindConversionFailure
}

// probeDuration asks ffprobe for the media length in seconds.
func (f *FFmpeg) probeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.opts.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

// tag writes metadata and cover art. Failures only warn.
func (f *FFmpeg) tag(ctx context.Context, path string, artifact model.Artifact) {
	if f.opts.Tagger == nil {
		return
	}

	var cover []byte
	if f.opts.EmbedCoverArt && artifact.ThumbnailPath != "" {
		data, err := os.ReadFile(artifact.ThumbnailPath)
		if err == nil {
			cover, err = f.coverArt(ctx, data)
		}
		if err != nil {
			f.emit(download.LevelWarning, fmt.Sprintf("Skipping cover art for %s: %v", filepath.Base(path), err))
			cover = nil
		}
	}

	tags := audio.Tags{
		Title:   artifact.DisplayName,
		Artist:  artifact.Artist,
		Comment: artifact.SourceRef,
	}
	if err := f.opts.Tagger.SaveTags(path, tags, cover); err != nil {
		f.emit(download.LevelWarning, fmt.Sprintf("Could not tag %s: %v", filepath.Base(path), err))
	}
}

func (f *FFmpeg) coverArt(ctx context.Context, data []byte) ([]byte, error) {
	if f.opts.CoverArtMaxSize <= 0 {
		return f.opts.Images.ConvertToJPEG(ctx, data)
	}
	return f.opts.Images.ResizeImage(ctx, data, f.opts.CoverArtMaxSize, f.opts.CoverArtMaxSize)
}

func (f *FFmpeg) cleanup(artifact model.Artifact) {
	if f.opts.KeepRaw {
		return
	}
	for _, p := range []string{artifact.Path, artifact.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			f.emit(download.LevelVerbose, fmt.Sprintf("Could not remove %s: %v", p, err))
		}
	}
}

// reserve picks a free output path and holds it until release, so two
// workers encoding items with the same title never share a file.
func (f *FFmpeg) reserve(base, ext string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := ioutils.UniquePath(f.opts.OutputDir, base, ext, func(candidate string) bool {
		return f.reserved[candidate]
	})
	f.reserved[p] = true
	return p
}

func (f *FFmpeg) release(p string) {
	f.mu.Lock()
	delete(f.reserved, p)
	f.mu.Unlock()
}

func (f *FFmpeg) emit(level download.ProgressLevel, message string) {
	if f.opts.OnEvent != nil {
		f.opts.OnEvent(download.ProgressEvent{Message: message, Level: level, Time: time.Now()})
	}
}

// outputBase derives the output file name (without extension).
func outputBase(artifact model.Artifact) string {
	name := artifact.DisplayName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(artifact.Path), filepath.Ext(artifact.Path))
	}
	return ioutils.SanitizeFileName(name)
}

// buildArgs builds the ffmpeg command line.
func buildArgs(inputPath, outputPath, encoder, bitrate string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-codec:a", encoder,
		"-b:a", bitrate,
		"-progress", "pipe:2",
		"-nostats",
		outputPath,
	}
}

// parseProgress turns an out_time line into a fraction of duration.
func parseProgress(line string, duration float64) (float64, bool) {
	if line == progressEnd {
		return 1, true
	}

	var value string
	switch {
	case strings.HasPrefix(line, progressTimePrefix):
		value = strings.TrimPrefix(line, progressTimePrefix)
	case strings.HasPrefix(line, progressLegacyPrefix):
		value = strings.TrimPrefix(line, progressLegacyPrefix)
	default:
		return 0, false
	}

	if duration <= 0 {
		return 0, false
	}
	us, err := strconv.ParseInt(value, 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}

	frac := float64(us) / 1e6 / duration
	if frac > 1 {
		frac = 1
	}
	return frac, true
}
