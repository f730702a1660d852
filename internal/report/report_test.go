package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/combokit/combotracker/internal/store"
)

func sampleData() Data {
	started := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	ended := started.Add(90 * time.Minute)
	return Data{
		Channel:   "somechannel",
		StartedAt: started,
		EndedAt:   &ended,
		Messages:  321,
		TopWords: []store.WordCount{
			{Word: "Kappa", IsEmote: true, Count: 42, LastSeen: ended},
			{Word: "hello", IsEmote: false, Count: 7, LastSeen: ended},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleData())

	for _, want := range []string{
		"# Combo session report — #somechannel",
		"Duration: 1h30m0s",
		"Messages processed: 321",
		"| 1 | Kappa | emote | 42 |",
		"| 2 | hello | word | 7 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownRunningSession(t *testing.T) {
	d := sampleData()
	d.EndedAt = nil
	md := Markdown(d)
	if !strings.Contains(md, "still running") {
		t.Error("running session not flagged")
	}
}

func TestMarkdownEmpty(t *testing.T) {
	d := sampleData()
	d.TopWords = nil
	md := Markdown(d)
	if !strings.Contains(md, "Nothing tracked yet.") {
		t.Error("empty leaderboard not handled")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	if err := Write(dir, sampleData()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, MarkdownFileName))
	if err != nil {
		t.Fatalf("stats.md not written: %v", err)
	}
	if !strings.Contains(string(md), "somechannel") {
		t.Error("stats.md missing channel")
	}

	html, err := os.ReadFile(filepath.Join(dir, HTMLFileName))
	if err != nil {
		t.Fatalf("stats.html not written: %v", err)
	}
	page := string(html)
	if !strings.Contains(page, "<table>") {
		t.Error("markdown table not rendered to HTML")
	}
	if !strings.Contains(page, "<h1") {
		t.Error("heading not rendered")
	}
}
