package model

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/quran-downloader/internal/io"
)

// Reciter is a voice whose recitations can be downloaded.
type Reciter struct {
	// ID is the catalog identifier.
	ID int

	// Name is the display name, also used as the download folder name.
	Name string

	// Letter is the index letter the catalog files the reciter under.
	Letter string

	// Moshafs lists the recitation variants in catalog order.
	Moshafs []*Moshaf
}

// Dir returns the folder under root where the reciter's chapters are saved.
//
// The name is sanitized and the result truncated to stay under the Windows
// folder path limit.
func (r *Reciter) Dir(root string) string {
	dir := filepath.Join(root, ioutils.SanitizeFileName(r.Name))
	if len(dir) >= 248 {
		dir = ioutils.TruncateUTF8(dir, 247)
	}
	return dir
}

// Moshaf is a recitation variant (riwaya and style) of a reciter.
type Moshaf struct {
	ID         int
	Name       string
	Server     string
	SurahTotal int

	// Type identifies the riwaya/style pair, see catalog.MoshafType.
	Type int

	// Surahs holds the chapter numbers this moshaf covers.
	Surahs []int
}

// Covers reports whether the moshaf has audio for the chapter.
func (m *Moshaf) Covers(chapter int) bool {
	for _, n := range m.Surahs {
		if n == chapter {
			return true
		}
	}
	return false
}

// ResourceURL builds the audio URL of a chapter on this moshaf's server:
// the server base followed by the zero-padded chapter number and ".mp3".
func (m *Moshaf) ResourceURL(chapter int) string {
	server := m.Server
	if !strings.HasSuffix(server, "/") {
		server += "/"
	}
	return fmt.Sprintf("%s%03d.mp3", server, chapter)
}
