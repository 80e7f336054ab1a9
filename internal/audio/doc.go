// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to a downloaded chapter:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, reciter, chapter)
//
// The tagger writes:
//   - Title (TIT2): chapter name
//   - Artist (TPE1) and Album (TALB): reciter name
//   - Genre (TCON): "Quran"
//   - Track Number (TRCK): "18/114"
//
// # Playlist Generation
//
// Generate a playlist of a reciter's downloaded chapters:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(playlist)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
