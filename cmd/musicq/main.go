package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/musicq/internal/app"
	"github.com/handiism/musicq/internal/config"
	"github.com/handiism/musicq/internal/download"
	"github.com/handiism/musicq/internal/httpapi"
	"github.com/handiism/musicq/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the exit code, so deferred cleanup always happens before the
// process exits.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("musicq", flag.ContinueOnError)
	flags.SetOutput(stderr)

	// Command line flags
	var (
		configFlag   = flags.String("config", "", "Path to config file (JSON or YAML)")
		outputFlag   = flags.String("output", "", "Output directory (overrides config)")
		workersFlag  = flags.Int("workers", 0, "Number of concurrent workers (overrides config)")
		listenFlag   = flags.String("listen", "", "Also serve the HTTP API on this address, e.g. 127.0.0.1:8080")
		playlistFlag = flags.Bool("playlist", false, "Write a playlist of completed items on exit")
		verboseFlag  = flags.Bool("verbose", false, "Show verbose output")
		debugFlag    = flags.String("debug", "", "Write a debug log to this file")
	)

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *debugFlag != "" {
		f, err := tea.LogToFile(*debugFlag, "musicq")
		if err != nil {
			fmt.Fprintf(stderr, "Error opening debug log: %v\n", err)
			return 1
		}
		defer f.Close()
	}

	// fail reports err on stderr and, with -debug, in the log file.
	fail := func(format string, a ...any) int {
		msg := fmt.Sprintf(format, a...)
		if *debugFlag != "" {
			log.Print(msg)
		}
		fmt.Fprintln(stderr, msg)
		return 1
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			return fail("Error loading config: %v", err)
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
		return fail("Error: %v", err)
	}

	events := make(chan download.ProgressEvent, 256)
	forward := tui.ForwardEvents(events)
	onEvent := func(e download.ProgressEvent) {
		if *debugFlag != "" {
			log.Printf("[%s] %s %s", e.Level, e.ItemID, e.Message)
		}
		forward(e)
	}
	coord := app.NewCoordinator(settings, onEvent)

	if settings.ListenAddr != "" {
		go func() {
			if err := httpapi.NewServer(coord).ListenAndServe(ctx, settings.ListenAddr); err != nil {
				onEvent(download.ProgressEvent{
					Message: fmt.Sprintf("HTTP API stopped: %v", err),
					Level:   download.LevelError,
					Time:    time.Now(),
				})
			}
		}()
	}

	final, err := tui.Run(tui.Options{
		Coordinator:   coord,
		Events:        events,
		DownloadsPath: app.OutputDir(settings),
		Verbose:       *verboseFlag,
	})
	if err != nil {
		// The program exited without draining; stop whatever is still running.
		coord.Kill()
		<-coord.Done()
		return fail("Error: %v", err)
	}
	cancel()

	snap := coord.StatusSnapshot()
	fmt.Fprint(stdout, tui.Summary(snap.Counts()))

	if settings.CreatePlaylist {
		path, err := app.WritePlaylist(context.Background(), settings, snap, time.Now())
		switch {
		case err != nil:
			fmt.Fprintf(stderr, "Error writing playlist: %v\n", err)
		case path != "":
			fmt.Fprintf(stdout, "Playlist: %s\n", path)
		}
	}

	if final.Err() != nil {
		return fail("Error: %v", final.Err())
	}
	return 0
}
