package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/musicq/internal/app"
	"github.com/handiism/musicq/internal/config"
	"github.com/handiism/musicq/internal/download"
	"github.com/handiism/musicq/internal/httpapi"
)

func main() {
	// Command line flags
	var (
		urlsFlag     = flag.String("url", "", "URL(s) to download (comma-separated or newline-separated)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file (JSON or YAML)")
		workersFlag  = flag.Int("workers", 0, "Number of concurrent workers (overrides config)")
		listenFlag   = flag.String("listen", "", "Serve the HTTP API on this address and keep running until interrupted")
		playlistFlag = flag.Bool("playlist", false, "Create playlist file")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	urls := splitURLs(*urlsFlag)
	urls = append(urls, flag.Args()...)
	readStdin := len(urls) == 0 && !isTerminal(os.Stdin)

	if len(urls) == 0 && !readStdin && *listenFlag == "" {
		fmt.Println("musicq-dl - Download audio as MP3 through a worker queue")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  musicq-dl -url <URL>[,<URL>...] [options]")
		fmt.Println("  musicq-dl <URL> [<URL>...] [options]")
		fmt.Println("  cat urls.txt | musicq-dl [options]")
		fmt.Println("  musicq-dl -listen 127.0.0.1:8080 [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: musicq")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *workersFlag > 0 {
		settings.Workers = *workersFlag
	}
	if *listenFlag != "" {
		settings.ListenAddr = *listenFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	settings.Validate()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Preflight(ctx, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	coord := app.NewCoordinator(settings, printEvent(*verboseFlag))

	// First interrupt stops taking new work and lets active items finish,
	// the second cancels them.
	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(interrupted)
		fmt.Println("\nInterrupted, finishing active downloads (press Ctrl+C again to abort)...")
		go coord.Stop(context.Background())

		<-sigCh
		fmt.Println("\nAborting...")
		coord.Kill()
	}()

	fmt.Println("🎵 musicq")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Workers: %d, output: %s\n\n", coord.Workers(), app.OutputDir(settings))

	if settings.ListenAddr != "" {
		go func() {
			fmt.Printf("ℹ️  HTTP API listening on %s\n", settings.ListenAddr)
			if err := httpapi.NewServer(coord).ListenAndServe(ctx, settings.ListenAddr); err != nil {
				fmt.Fprintf(os.Stderr, "HTTP API stopped: %v\n", err)
			}
		}()
	}

	for _, u := range urls {
		submit(coord, u)
	}
	if readStdin {
		submitLines(coord, os.Stdin)
	}

	// With the API up the queue stays open until interrupted.
	if settings.ListenAddr == "" {
		go coord.Shutdown(context.Background())
	}
	<-coord.Done()
	cancel()

	snap := coord.StatusSnapshot()
	counts := snap.Counts()

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Done! Completed %d/%d", counts.Completed, counts.Total())
	if counts.Failed > 0 {
		fmt.Printf(", failed %d", counts.Failed)
	}
	if counts.Pending > 0 {
		fmt.Printf(", not started %d", counts.Pending)
	}
	fmt.Println()
	for _, item := range snap.Failed {
		fmt.Printf("   ❌ %s: %s\n", item.Title(), item.Error)
	}

	if settings.CreatePlaylist {
		path, err := app.WritePlaylist(context.Background(), settings, snap, time.Now())
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error writing playlist: %v\n", err)
		case path != "":
			fmt.Printf("📃 Playlist: %s\n", path)
		}
	}

	select {
	case <-interrupted:
		os.Exit(130)
	default:
	}
	if counts.Failed > 0 {
		os.Exit(1)
	}
}

func submit(coord *download.Coordinator, sourceRef string) {
	sourceRef = strings.TrimSpace(sourceRef)
	if sourceRef == "" || strings.HasPrefix(sourceRef, "#") {
		return
	}
	if _, err := coord.Submit(sourceRef); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", sourceRef, err)
	}
}

// submitLines queues one URL per line until r is exhausted or the
// coordinator stops accepting work.
func submitLines(coord *download.Coordinator, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if coord.ShuttingDown() {
			return
		}
		submit(coord, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

func splitURLs(s string) []string {
	var urls []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			urls = append(urls, part)
		}
	}
	return urls
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func printEvent(verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}
}
