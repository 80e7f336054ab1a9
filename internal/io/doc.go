// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Write-then-rename of downloaded files
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Partial Files
//
// Downloads are written next to their destination with a ".part" suffix and
// only moved into place once complete:
//
//	f, err := ioutils.CreatePart(dest)
//	// ... stream into f ...
//	f.Close()
//	err = ioutils.Commit(dest)   // rename dest.part -> dest
//	// or on failure
//	ioutils.Discard(dest)        // remove dest.part
package ioutils
