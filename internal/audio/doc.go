// Package audio writes ID3 tags into finished MP3s and renders playlists of
// completed items.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.Tags{
//	    Title:   "Song",
//	    Artist:  "Band",
//	    Comment: "https://youtu.be/abc",
//	}, coverJPEG)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist("Session", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
package audio
