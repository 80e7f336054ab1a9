package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/handiism/quran-downloader/internal/download"
	"github.com/handiism/quran-downloader/internal/model"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "Retry? ")
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if out.String() != "Retry? " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestConsole_VerboseFiltering(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf, false)

	c.Event(download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose})
	c.Event(download.ProgressEvent{Message: "shown", Level: download.LevelWarning})

	if strings.Contains(buf.String(), "hidden") {
		t.Error("verbose event printed without -verbose")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warning event not printed")
	}
}

func TestConsole_Batch(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf, true)

	c.StartBatch(2, "Downloading")
	c.Tick(model.Succeeded(model.WorkItem{Chapter: 1}, "a.mp3", 1))
	c.Event(download.ProgressEvent{Message: "between ticks", Level: download.LevelInfo})
	c.Tick(model.Failed(model.WorkItem{Chapter: 2}, 3, nil))
	c.EndBatch()

	if !strings.Contains(buf.String(), "between ticks") {
		t.Error("event lost while the bar was shown")
	}
	if !strings.Contains(buf.String(), "2/2") {
		t.Errorf("bar did not reach 2/2:\n%s", buf.String())
	}
}
