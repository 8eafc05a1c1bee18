// Package transcode encodes fetched audio into the output format with
// ffmpeg, then tags the result.
//
// FFmpeg implements download.Transcoder:
//
//	tc := transcode.New(transcode.Options{
//	    OutputDir:     "music",
//	    Tagger:        audio.NewTagger(nil),
//	    EmbedCoverArt: true,
//	})
//	path, err := tc.Transcode(ctx, artifact, model.MP3At192, progress)
//
// Output files are named after the sanitized display name. Concurrent calls
// never pick the same name; collisions get a " (2)", " (3)" suffix. ffmpeg
// writes to a ".part" file that is renamed once encoding succeeds.
//
// Failures are *model.TranscodeError: KindToolMissing when ffmpeg cannot be
// started, KindFilesystemError for missing input or an unwritable output
// directory, and KindConversionFailure otherwise.
package transcode
