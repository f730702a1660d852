package overlay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readOverlay(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading overlay file: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("overlay file is not valid JSON: %v", err)
	}
	return out
}

func items(t *testing.T, path string) []any {
	t.Helper()
	out := readOverlay(t, path)
	list, ok := out["items"].([]any)
	if !ok {
		t.Fatalf("items is %T, want array", out["items"])
	}
	return list
}

func TestNewResetsOverlayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	New(path, "", nil)

	list := items(t, path)
	if len(list) != 0 {
		t.Errorf("fresh overlay has %d items, want 0", len(list))
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	in := map[string]any{"items": []any{
		map[string]any{"text": "x"},
		map[string]any{"text": "y"},
		map[string]any{"text": "z"},
	}}
	if !m.Update(in) {
		t.Fatal("Update returned false")
	}

	list := items(t, path)
	if len(list) != 3 {
		t.Fatalf("got %d items, want 3", len(list))
	}
	for i, want := range []string{"x", "y", "z"} {
		got := list[i].(map[string]any)["text"]
		if got != want {
			t.Errorf("items[%d].text = %v, want %q", i, got, want)
		}
	}
}

func TestUpdateWithCombosSortsDescendingStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	in := []map[string]any{
		{"combo": 5, "id": "a"},
		{"combo": 5, "id": "b"},
		{"combo": 9, "id": "c"},
	}
	if !m.UpdateWithCombos(in, 3) {
		t.Fatal("UpdateWithCombos returned false")
	}

	list := items(t, path)
	var ids []string
	for _, it := range list {
		ids = append(ids, it.(map[string]any)["id"].(string))
	}
	want := []string{"c", "a", "b"}
	if len(ids) != 3 || ids[0] != want[0] || ids[1] != want[1] || ids[2] != want[2] {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func TestUpdateWithCombosTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	var in []map[string]any
	for combo := 9; combo >= 0; combo-- {
		in = append(in, map[string]any{"combo": combo})
	}
	if !m.UpdateWithCombos(in, 5) {
		t.Fatal("UpdateWithCombos returned false")
	}

	list := items(t, path)
	if len(list) != 5 {
		t.Fatalf("got %d items, want 5", len(list))
	}
	for i, it := range list {
		combo := it.(map[string]any)["combo"].(float64)
		if int(combo) != 9-i {
			t.Errorf("items[%d].combo = %v, want %d", i, combo, 9-i)
		}
	}
}

func TestUpdateWithCombosMaxLargerThanInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	in := []map[string]any{{"combo": 2}, {"combo": 7}}
	if !m.UpdateWithCombos(in, 10) {
		t.Fatal("UpdateWithCombos returned false")
	}
	if got := len(items(t, path)); got != 2 {
		t.Errorf("got %d items, want 2", got)
	}
}

func TestUpdateWithCombosIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	in := []map[string]any{
		{"combo": 3, "text": "a"},
		{"combo": 1, "text": "b"},
		{"combo": 3, "text": "c"},
	}
	if !m.UpdateWithCombos(in, 5) {
		t.Fatal("first UpdateWithCombos returned false")
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !m.UpdateWithCombos(in, 5) {
		t.Fatal("second UpdateWithCombos returned false")
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("repeated calls with same input produced different file content")
	}
}

// Zero and negative maxItems both keep zero items. The negative case
// is chosen behavior, not inherited: truncation stays total.
func TestUpdateWithCombosZeroAndNegativeMax(t *testing.T) {
	for _, max := range []int{0, -1} {
		path := filepath.Join(t.TempDir(), "overlay_data.json")
		m := New(path, "", nil)

		// Put something in the file first so we can see the rewrite.
		if !m.UpdateWithCombos([]map[string]any{{"combo": 1}}, 5) {
			t.Fatal("seed update failed")
		}
		if !m.UpdateWithCombos([]map[string]any{{"combo": 1}, {"combo": 2}}, max) {
			t.Fatalf("UpdateWithCombos(max=%d) returned false", max)
		}
		if got := len(items(t, path)); got != 0 {
			t.Errorf("max=%d: got %d items, want 0", max, got)
		}
	}
}

func TestUpdateWithCombosMissingComboField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay_data.json")
	m := New(path, "", nil)

	in := []map[string]any{
		{"text": "nofield"},
		{"combo": 4, "text": "has"},
	}
	if !m.UpdateWithCombos(in, 5) {
		t.Fatal("UpdateWithCombos returned false")
	}

	list := items(t, path)
	if got := list[0].(map[string]any)["text"]; got != "has" {
		t.Errorf("first item = %v, want the one with a combo field", got)
	}
}

func TestUpdateReturnsFalseOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// The overlay path's parent is a regular file, so every write fails.
	m := New(filepath.Join(blocker, "overlay_data.json"), "", nil)
	if m.Update(map[string]any{"items": []any{}}) {
		t.Error("Update returned true for unwritable path")
	}
	if m.UpdateWithCombos([]map[string]any{{"combo": 1}}, 5) {
		t.Error("UpdateWithCombos returned true for unwritable path")
	}
}

func TestCreateHTMLWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "overlay_data.json"), "", nil)

	if m.CreateHTML() {
		t.Error("CreateHTML returned true with no template configured")
	}
	if _, err := os.Stat(filepath.Join(dir, HTMLFileName)); !os.IsNotExist(err) {
		t.Error("CreateHTML wrote a file despite missing template")
	}
}

func TestCreateHTMLCopiesTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "template.html")
	const content = "<html>X</html>"
	if err := os.WriteFile(tmplPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "static")
	m := New(filepath.Join(outDir, "overlay_data.json"), tmplPath, nil)
	if !m.CreateHTML() {
		t.Fatal("CreateHTML returned false")
	}

	got, err := os.ReadFile(filepath.Join(outDir, HTMLFileName))
	if err != nil {
		t.Fatalf("overlay.html not written: %v", err)
	}
	if string(got) != content {
		t.Errorf("overlay.html = %q, want %q", got, content)
	}
}

func TestCreateHTMLMissingTemplateFile(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "overlay_data.json"), filepath.Join(dir, "missing.html"), nil)
	if m.CreateHTML() {
		t.Error("CreateHTML returned true for missing template file")
	}
}

func TestWritePage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.html")

	err := WritePage(path, PageOptions{
		Position: "top-right",
		Scale:    1.5,
		Font:     "Verdana",
		WSPath:   "/ws",
	})
	if err != nil {
		t.Fatalf("WritePage failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	page := string(content)
	for _, want := range []string{"top: 20px; right: 20px;", "Verdana", "scale(1.5)", "overlay_data.json", "/ws"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestWritePageUnknownPosition(t *testing.T) {
	err := WritePage(filepath.Join(t.TempDir(), "overlay.html"), PageOptions{Position: "middle"})
	if err == nil {
		t.Error("expected error for unknown position")
	}
}

func TestWritePageDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.html")
	if err := WritePage(path, PageOptions{}); err != nil {
		t.Fatalf("WritePage with zero options failed: %v", err)
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "bottom: 20px; left: 20px;") {
		t.Error("default position not applied")
	}
}
