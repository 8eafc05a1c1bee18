package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/musicq/internal/download"
	httpclient "github.com/handiism/musicq/internal/http"
	ioutils "github.com/handiism/musicq/internal/io"
	"github.com/handiism/musicq/internal/model"
)

// Options configures a YTDLP fetcher.
type Options struct {
	// WorkDir receives raw downloads and thumbnails.
	WorkDir string

	// AllowedHosts restricts sources to these hosts and their subdomains.
	// Empty allows any http(s) host.
	AllowedHosts []string

	// Format is the yt-dlp format selector. Empty means "bestaudio/best".
	Format string

	// MaxRetries is how many times a network failure is retried.
	MaxRetries int

	// RetryCooldown is the first wait in seconds; each further retry waits
	// RetryExponent times longer.
	RetryCooldown float64
	RetryExponent float64

	// Thumbnails enables downloading the cover image alongside the audio.
	Thumbnails bool

	// Client downloads thumbnails. Nil uses httpclient.NewClient().
	Client *httpclient.Client

	// OnEvent receives retry and thumbnail warnings. May be nil.
	OnEvent func(download.ProgressEvent)
}

// YTDLP fetches audio with yt-dlp.
type YTDLP struct {
	opts   Options
	run    runner
	client *httpclient.Client
}

// New creates a YTDLP fetcher.
func New(opts Options) *YTDLP {
	if opts.Format == "" {
		opts.Format = "bestaudio/best"
	}
	return newWithRunner(opts, ytdlpRunner(opts.Format))
}

func newWithRunner(opts Options, run runner) *YTDLP {
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "musicq")
	}
	if opts.RetryExponent < 1 {
		opts.RetryExponent = 1
	}
	client := opts.Client
	if client == nil {
		client = httpclient.NewClient()
	}
	return &YTDLP{opts: opts, run: run, client: client}
}

// Fetch implements download.Fetcher.
func (y *YTDLP) Fetch(ctx context.Context, sourceRef string, progress download.ProgressFunc) (model.Artifact, error) {
	if err := validateSource(sourceRef, y.opts.AllowedHosts); err != nil {
		return model.Artifact{}, &model.FetchError{Kind: model.KindUnsupportedSource, Source: sourceRef, Err: err}
	}
	if err := ioutils.EnsureDir(y.opts.WorkDir); err != nil {
		return model.Artifact{}, &model.FetchError{Kind: model.KindNetworkFailure, Source: sourceRef, Err: fmt.Errorf("work dir: %w", err)}
	}

	token := uuid.NewString()
	output := filepath.Join(y.opts.WorkDir, token+".%(ext)s")

	onBytes := func(downloaded, total int) {
		if progress != nil && total > 0 {
			progress(float64(downloaded) / float64(total))
		}
	}

	var res runResult
	for tries := 0; ; tries++ {
		var err error
		res, err = y.run(ctx, sourceRef, output, onBytes)
		if err == nil {
			break
		}

		kind := classify(ctx, res.Stderr, err)
		if kind != model.KindNetworkFailure || !retryable(err) || tries >= y.opts.MaxRetries || ctx.Err() != nil {
			return model.Artifact{}, &model.FetchError{Kind: kind, Source: sourceRef, Err: describe(err, res.Stderr)}
		}

		y.emit(download.LevelWarning, fmt.Sprintf("Retry %d/%d for %s: %v", tries+1, y.opts.MaxRetries, sourceRef, err))
		y.waitForRetry(ctx, tries)
	}

	audioPath := res.Filename
	if audioPath == "" || !fileExists(audioPath) {
		found, err := findDownload(y.opts.WorkDir, token)
		if err != nil {
			return model.Artifact{}, &model.FetchError{Kind: model.KindNetworkFailure, Source: sourceRef, Err: err}
		}
		audioPath = found
	}

	if progress != nil {
		progress(1)
	}

	artifact := model.Artifact{
		SourceRef:   sourceRef,
		Path:        audioPath,
		DisplayName: strings.TrimSpace(res.Title),
		Artist:      strings.TrimSpace(res.Artist),
		Duration:    res.Duration,
	}
	if y.opts.Thumbnails && res.Thumbnail != "" {
		artifact.ThumbnailPath = y.fetchThumbnail(ctx, sourceRef, res.Thumbnail, token)
	}
	return artifact, nil
}

// fetchThumbnail is best-effort: failures are reported and yield "".
func (y *YTDLP) fetchThumbnail(ctx context.Context, sourceRef, thumbURL, token string) string {
	ext := ".jpg"
	if u, err := url.Parse(thumbURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e == ".webp" || e == ".png" || e == ".jpg" || e == ".jpeg" {
			ext = e
		}
	}

	dest := filepath.Join(y.opts.WorkDir, token+".thumb"+ext)
	if err := y.client.DownloadFile(ctx, thumbURL, dest, nil); err != nil {
		y.emit(download.LevelWarning, fmt.Sprintf("No cover art for %s: %v", sourceRef, err))
		return ""
	}
	return dest
}

func (y *YTDLP) waitForRetry(ctx context.Context, tries int) {
	cooldown := y.opts.RetryCooldown * math.Pow(y.opts.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (y *YTDLP) emit(level download.ProgressLevel, message string) {
	if y.opts.OnEvent != nil {
		y.opts.OnEvent(download.ProgressEvent{Message: message, Level: level, Time: time.Now()})
	}
}

// validateSource accepts absolute http(s) URLs on an allowed host.
func validateSource(sourceRef string, allowedHosts []string) error {
	u, err := url.Parse(sourceRef)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("not an http(s) URL: %q", sourceRef)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("missing host: %q", sourceRef)
	}
	if len(allowedHosts) == 0 {
		return nil
	}
	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("host %s is not supported", host)
}

var (
	notFoundMarkers = []string{
		"video unavailable",
		"private video",
		"this video is not available",
		"has been removed",
		"does not exist",
		"http error 404",
		"http error 410",
	}
	unsupportedMarkers = []string{
		"unsupported url",
		"is not a valid url",
		"no video formats found",
		"requested format is not available",
	}
)

// classify maps a failed run to a fetch failure kind. Anything unrecognised,
// including a missing yt-dlp binary, is a network failure.
func classify(ctx context.Context, stderr string, err error) model.ErrorKind {
	if ctx.Err() != nil || errors.Is(err, exec.ErrNotFound) {
		return model.KindNetworkFailure
	}

	lower := strings.ToLower(stderr)
	for _, m := range notFoundMarkers {
		if strings.Contains(lower, m) {
			return model.KindNotFound
		}
	}
	for _, m := range unsupportedMarkers {
		if strings.Contains(lower, m) {
			return model.KindUnsupportedSource
		}
	}
	return model.KindNetworkFailure
}

// retryable reports whether running yt-dlp again could succeed.
func retryable(err error) bool {
	return !errors.Is(err, exec.ErrNotFound)
}

// describe attaches the last yt-dlp ERROR line to err.
func describe(err error, stderr string) error {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")))
		}
	}
	return err
}

// findDownload locates the audio file yt-dlp wrote for token.
func findDownload(dir, token string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, token+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		base := filepath.Base(m)
		if strings.HasSuffix(base, ".part") || strings.HasSuffix(base, ".json") || strings.Contains(base, ".thumb.") {
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("no download for %s in %s", token, dir)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
