package audio

import (
	"github.com/bogem/id3v2"
	"github.com/handiism/quran-downloader/internal/model"
)

// Genre is written to the TCON frame of every chapter.
const Genre = "Quran"

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the catalog.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, SaveTags leaves files alone.
	ModifyTags bool

	// Title controls the TIT2 frame (chapter name).
	Title TagEditAction

	// Artist controls the TPE1 frame (reciter).
	Artist TagEditAction

	// Album controls the TALB frame (reciter).
	Album TagEditAction

	// Genre controls the TCON frame.
	Genre TagEditAction

	// TrackNumber controls the TRCK frame ("n/114").
	TrackNumber TagEditAction

	// Comments controls the COMM frame. Only TagEmpty has an effect.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every field is
// written from the catalog, comments are left as they are.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Title:       TagModify,
		Artist:      TagModify,
		Album:       TagModify,
		Genre:       TagModify,
		TrackNumber: TagModify,
		Comments:    TagDoNotModify,
	}
}

// Tagger writes ID3 tags to MP3 files.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes the ID3 tags of chapter, recited by reciter, to the MP3
// file at path. Existing frames not covered by the configuration are kept.
func (t *Tagger) SaveTags(path string, reciter *model.Reciter, chapter model.Chapter) error {
	if !t.config.ModifyTags {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	t.updateStringTags(tag, reciter, chapter)

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, reciter *model.Reciter, chapter model.Chapter) {
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(chapter.Name)
	}

	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(reciter.Name)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(reciter.Name)
	}

	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(Genre)
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, chapter.TrackNumber())
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}
