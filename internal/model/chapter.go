package model

import (
	"fmt"
	"path/filepath"

	ioutils "github.com/handiism/quran-downloader/internal/io"
)

// ChapterCount is the number of chapters (surahs).
const ChapterCount = 114

// AudioExtension is appended to every downloaded chapter.
const AudioExtension = ".mp3"

// Chapter is a surah, identified by its number (1-indexed).
type Chapter struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// FileName returns the sanitized file name of the chapter, extension included.
func (c Chapter) FileName() string {
	return ioutils.SanitizeFileName(c.Name) + AudioExtension
}

// TrackNumber formats the chapter number the way it is written to the TRCK
// frame, e.g. "18/114".
func (c Chapter) TrackNumber() string {
	return fmt.Sprintf("%d/%d", c.Number, ChapterCount)
}

// ChapterPath computes the destination of a chapter recited by reciter:
// <root>/<reciter>/<chapter>.mp3.
func ChapterPath(root string, reciter *Reciter, chapter Chapter) string {
	dir := reciter.Dir(root)
	path := filepath.Join(dir, chapter.FileName())

	// Limit total path length for Windows compatibility (MAX_PATH = 260)
	if len(path) >= 260 {
		name := ioutils.SanitizeFileName(chapter.Name)
		maxLen := 11 - len(AudioExtension)
		if maxLen > 0 && maxLen < len(name) {
			path = filepath.Join(dir, ioutils.TruncateUTF8(name, maxLen)+AudioExtension)
		}
	}

	return path
}
