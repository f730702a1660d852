// Package report renders session statistics as Markdown and HTML so
// streamers can review a run after it ends.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/combokit/combotracker/internal/store"
)

const (
	// MarkdownFileName is the report written into the overlay directory.
	MarkdownFileName = "stats.md"
	// HTMLFileName is the browser-facing rendering of the report.
	HTMLFileName = "stats.html"
)

// Data is everything a report needs.
type Data struct {
	Channel   string
	StartedAt time.Time
	EndedAt   *time.Time
	Messages  int
	TopWords  []store.WordCount
}

// Markdown renders the report source.
func Markdown(d Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Combo session report — #%s\n\n", d.Channel)
	fmt.Fprintf(&b, "- Started: %s\n", d.StartedAt.Format(time.RFC1123))
	if d.EndedAt != nil {
		fmt.Fprintf(&b, "- Ended: %s\n", d.EndedAt.Format(time.RFC1123))
		fmt.Fprintf(&b, "- Duration: %s\n", d.EndedAt.Sub(d.StartedAt).Round(time.Second))
	} else {
		b.WriteString("- Ended: still running\n")
	}
	fmt.Fprintf(&b, "- Messages processed: %d\n\n", d.Messages)

	b.WriteString("## Top words and emotes\n\n")
	if len(d.TopWords) == 0 {
		b.WriteString("Nothing tracked yet.\n")
		return b.String()
	}

	b.WriteString("| Rank | Word | Type | Count | Last seen |\n")
	b.WriteString("| ---- | ---- | ---- | ----- | --------- |\n")
	for i, wc := range d.TopWords {
		kind := "word"
		if wc.IsEmote {
			kind = "emote"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %s |\n",
			i+1, wc.Word, kind, wc.Count, wc.LastSeen.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// htmlShell wraps rendered markdown in a minimal dark page.
const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Combo session report</title>
<style>
    body { font-family: sans-serif; background: #18181b; color: #efeff1; max-width: 720px; margin: 2em auto; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #3a3a3d; padding: 4px 10px; }
    h1 { color: #a970ff; }
</style>
</head>
<body>
%s</body>
</html>
`

// Write renders the report into dir as both stats.md and stats.html.
func Write(dir string, d Data) error {
	md := Markdown(d)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MarkdownFileName), []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	html := fmt.Sprintf(htmlShell, body.String())
	if err := os.WriteFile(filepath.Join(dir, HTMLFileName), []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing HTML report: %w", err)
	}
	return nil
}
