package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_BadConfigIsLoggedAndReturnsError(t *testing.T) {
	flags, prefix, output := log.Flags(), log.Prefix(), log.Writer()
	t.Cleanup(func() {
		log.SetFlags(flags)
		log.SetPrefix(prefix)
		log.SetOutput(output)
	})

	dir := t.TempDir()
	cfg := filepath.Join(dir, "musicq.json")
	if err := os.WriteFile(cfg, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	debugLog := filepath.Join(dir, "debug.log")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-debug", debugLog, "-config", cfg}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Error loading config") {
		t.Errorf("stderr = %q", stderr.String())
	}

	data, err := os.ReadFile(debugLog)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Error loading config") {
		t.Errorf("debug log = %q", data)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-no-such-flag"}, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}
