package catalog

import (
	_ "embed"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/handiism/quran-downloader/internal/model"
)

//go:embed data/chapters.json
var chaptersJSON []byte

// ChapterTable is the read-only table of chapter names.
type ChapterTable struct {
	chapters []model.Chapter
	byName   map[string]model.Chapter
}

// Chapters returns the chapter table, parsed from the embedded data on first
// use.
var Chapters = sync.OnceValue(func() *ChapterTable {
	var chapters []model.Chapter
	if err := json.Unmarshal(chaptersJSON, &chapters); err != nil {
		panic("catalog: invalid embedded chapter table: " + err.Error())
	}
	return newChapterTable(chapters)
})

func newChapterTable(chapters []model.Chapter) *ChapterTable {
	t := &ChapterTable{
		chapters: chapters,
		byName:   make(map[string]model.Chapter, len(chapters)),
	}
	for _, ch := range chapters {
		t.byName[strings.ToLower(ch.Name)] = ch
	}
	return t
}

// All returns every chapter in order.
func (t *ChapterTable) All() []model.Chapter {
	out := make([]model.Chapter, len(t.chapters))
	copy(out, t.chapters)
	return out
}

// ByNumber returns the chapter with the given number.
func (t *ChapterTable) ByNumber(n int) (model.Chapter, bool) {
	if n < 1 || n > len(t.chapters) {
		return model.Chapter{}, false
	}
	return t.chapters[n-1], true
}

// Lookup resolves user input, either a chapter number or a chapter name
// (case-insensitive).
func (t *ChapterTable) Lookup(input string) (model.Chapter, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Chapter{}, false
	}

	if n, err := strconv.Atoi(input); err == nil {
		return t.ByNumber(n)
	}

	ch, ok := t.byName[strings.ToLower(input)]
	return ch, ok
}

// Completions returns the strings a prompt can complete chapter input to:
// every number followed by every name.
func (t *ChapterTable) Completions() []string {
	out := make([]string, 0, 2*len(t.chapters))
	for _, ch := range t.chapters {
		out = append(out, strconv.Itoa(ch.Number))
	}
	for _, ch := range t.chapters {
		out = append(out, ch.Name)
	}
	return out
}
