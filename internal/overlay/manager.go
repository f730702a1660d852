// Package overlay maintains the on-disk overlay consumed by the
// browser source: a JSON data file listing the combos to display and
// an optional static HTML page next to it.
package overlay

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/fileutil"
	"github.com/combokit/combotracker/internal/logging"
)

const (
	// DataFileName is the overlay JSON file read by the page.
	DataFileName = "overlay_data.json"
	// HTMLFileName is the fixed name of the generated overlay page.
	HTMLFileName = "overlay.html"
	// DefaultMaxItems is the number of combos kept when updating from
	// a combo snapshot.
	DefaultMaxItems = 5
)

// Manager owns the overlay file paths. It is a stateless facade over
// the filesystem: every operation rewrites the target file completely.
//
// All public operations convert failures into a false return plus a
// log entry; none of them panic or return errors. Callers that care
// about failure must check the boolean. Concurrent writers to the same
// path are last-writer-wins; no locking is provided.
type Manager struct {
	overlayPath  string
	templatePath string
	log          *zap.SugaredLogger
}

// New creates a Manager for the given overlay JSON path and optional
// HTML template path (empty string disables HTML support). The overlay
// file is immediately reset to empty so consumers always find valid
// JSON; a failed reset is logged but does not prevent construction.
func New(overlayPath, templatePath string, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	m := &Manager{
		overlayPath:  overlayPath,
		templatePath: templatePath,
		log:          log,
	}
	m.CreateEmpty()
	return m
}

// Path returns the overlay JSON file path.
func (m *Manager) Path() string { return m.overlayPath }

// Dir returns the directory holding the overlay files.
func (m *Manager) Dir() string { return filepath.Dir(m.overlayPath) }

// CreateEmpty resets the overlay to an empty item list.
func (m *Manager) CreateEmpty() bool {
	return m.Update(map[string]any{"items": []any{}})
}

// Update writes data verbatim as the full overlay JSON content,
// replacing whatever was there before.
func (m *Manager) Update(data map[string]any) bool {
	if err := fileutil.WriteJSON(m.overlayPath, data); err != nil {
		m.log.Errorw("overlay write failed", "path", m.overlayPath, "error", err)
		return false
	}
	m.log.Debugw("updated overlay", "items", itemCount(data))
	return true
}

// UpdateWithCombos sorts items by their combo count (highest first,
// ties keeping input order), keeps at most maxItems of them, and
// writes the result as the overlay's item list. maxItems of zero
// writes an empty list; a negative maxItems is treated the same way,
// a chosen interpretation to keep truncation total rather than
// inherited behavior.
func (m *Manager) UpdateWithCombos(items []map[string]any, maxItems int) bool {
	sorted := make([]map[string]any, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return comboValue(sorted[i]) > comboValue(sorted[j])
	})

	if maxItems < 0 {
		maxItems = 0
	}
	if len(sorted) > maxItems {
		sorted = sorted[:maxItems]
	}

	list := make([]any, len(sorted))
	for i, it := range sorted {
		list[i] = it
	}
	return m.Update(map[string]any{"items": list})
}

// CreateHTML copies the configured HTML template verbatim into the
// overlay directory as overlay.html. Returns false without touching
// the filesystem when no template is configured.
func (m *Manager) CreateHTML() bool {
	if m.templatePath == "" {
		m.log.Warn("no HTML template path configured")
		return false
	}

	content, err := os.ReadFile(m.templatePath)
	if err != nil {
		m.log.Errorw("failed to read HTML template", "path", m.templatePath, "error", err)
		return false
	}

	htmlPath := filepath.Join(m.Dir(), HTMLFileName)
	if err := os.WriteFile(htmlPath, content, 0o644); err != nil {
		m.log.Errorw("failed to write HTML overlay", "path", htmlPath, "error", err)
		return false
	}

	m.log.Infow("created HTML overlay", "path", htmlPath)
	return true
}

// comboValue extracts the numeric combo field from an item, treating a
// missing or non-numeric value as zero. Items arrive both as native
// ints (from the combo manager) and as float64 (decoded JSON).
func comboValue(item map[string]any) float64 {
	switch v := item["combo"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// itemCount reports the length of the items array, or zero when the
// key is absent or not a sequence.
func itemCount(data map[string]any) int {
	switch v := data["items"].(type) {
	case []any:
		return len(v)
	case []map[string]any:
		return len(v)
	default:
		return 0
	}
}
