package catalog

import (
	"testing"

	"github.com/handiism/quran-downloader/internal/catalog/dto"
	"github.com/handiism/quran-downloader/internal/model"
)

func workItem(chapter, reciter int) model.WorkItem {
	return model.WorkItem{Chapter: chapter, ReciterID: reciter}
}

func TestChapters_Table(t *testing.T) {
	all := Chapters().All()
	if len(all) != model.ChapterCount {
		t.Fatalf("len(All()) = %d, want %d", len(all), model.ChapterCount)
	}
	for i, ch := range all {
		if ch.Number != i+1 {
			t.Fatalf("chapter at %d has number %d", i, ch.Number)
		}
	}
}

func TestChapters_Lookup(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 114 ", 114, true},
		{"Al-Kahf", 18, true},
		{"al-kahf", 18, true},
		{"Ya-Sin", 36, true},
		{"0", 0, false},
		{"115", 0, false},
		{"", 0, false},
		{"Not A Surah", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ch, ok := Chapters().Lookup(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && ch.Number != tt.want {
				t.Errorf("Lookup(%q) = %d, want %d", tt.input, ch.Number, tt.want)
			}
		})
	}
}

func TestChapters_Completions(t *testing.T) {
	completions := Chapters().Completions()
	if len(completions) != 2*model.ChapterCount {
		t.Fatalf("len(Completions()) = %d, want %d", len(completions), 2*model.ChapterCount)
	}
	if completions[0] != "1" || completions[model.ChapterCount] != "Al-Fatiha" {
		t.Errorf("unexpected completion order: %q, %q", completions[0], completions[model.ChapterCount])
	}
}

func TestParseSurahList(t *testing.T) {
	got := dto.ParseSurahList("1, 2,x,,114")
	want := []int{1, 2, 114}
	if len(got) != len(want) {
		t.Fatalf("ParseSurahList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseSurahList()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
