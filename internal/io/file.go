package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

const (
	fallbackName  = "untitled"
	maxNameLength = 200
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	runsOfSpace  = regexp.MustCompile(`\s+`)
)

// SanitizeFileName turns a display name into something every supported
// filesystem accepts.
//
// Invalid characters (<>:"/\|?* and control chars) become underscores,
// whitespace runs collapse to one space, and leading/trailing spaces and
// trailing dots are removed. Names are cut at 200 bytes on a rune boundary.
// An empty result becomes "untitled".
//
//	SanitizeFileName("AC/DC: Live?")  // "AC_DC_ Live_"
//	SanitizeFileName("Track...")      // "Track"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = runsOfSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ")

	if len(name) > maxNameLength {
		cut := maxNameLength
		for cut > 0 && !isRuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], " .")
	}

	if name == "" {
		return fallbackName
	}
	return name
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// EnsureDir creates a directory and all parents with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data to path with mode 0644, creating parent directories.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UniquePath returns dir/base+ext, or dir/base (n)+ext for the smallest
// n >= 2 for which taken reports false and no file exists on disk.
//
// taken may be nil. It lets callers exclude names they have reserved but not
// yet written.
func UniquePath(dir, base, ext string, taken func(string) bool) string {
	candidate := filepath.Join(dir, base+ext)
	for n := 2; ; n++ {
		if (taken == nil || !taken(candidate)) && !exists(candidate) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// CopyFile copies src to dst, creating or truncating dst.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// MoveFile renames src to dst. When the two live on different devices the
// file is copied and src removed.
func MoveFile(ctx context.Context, src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := CopyFile(ctx, src, dst); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// IsFilesystemError reports whether err came from the filesystem rather than
// from a subprocess or the network.
func IsFilesystemError(err error) bool {
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}
