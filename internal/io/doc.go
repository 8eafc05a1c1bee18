// Package ioutils provides file system and image helpers for musicq.
//
// # Output Names
//
// SanitizeFileName turns a track title into a safe file name, and UniquePath
// picks a free name in the output directory:
//
//	base := ioutils.SanitizeFileName("Song: Part 1/2") // "Song_ Part 1_2"
//	path := ioutils.UniquePath(dir, base, ".mp3", nil)  // ".../Song_ Part 1_2 (2).mp3" if taken
//
// # Moving Files
//
// MoveFile renames a finished file into place and falls back to copying when
// the work directory sits on another device.
//
// # Cover Art
//
// ImageService decodes JPEG, PNG and WebP thumbnails and re-encodes them as
// JPEG for ID3 embedding:
//
//	svc := ioutils.NewImageService()
//	cover, err := svc.ResizeImage(ctx, thumbnail, 1000, 1000)
package ioutils
