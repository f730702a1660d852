package overlay

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed overlay.html.tmpl
var defaultTemplate string

// PageOptions controls rendering of the built-in overlay page. Used
// when no custom HTML template is configured.
type PageOptions struct {
	Position   string  // top-left, top-right, bottom-left, bottom-right
	Scale      float64 // CSS transform scale
	Font       string
	PollMillis int    // data refresh interval for the fallback poll
	WSPath     string // websocket path for push refresh, empty to disable
}

// anchors maps an overlay position to its CSS placement and transform
// origin.
var anchors = map[string]struct{ css, origin string }{
	"top-left":     {"top: 20px; left: 20px;", "top left"},
	"top-right":    {"top: 20px; right: 20px;", "top right"},
	"bottom-left":  {"bottom: 20px; left: 20px;", "bottom left"},
	"bottom-right": {"bottom: 20px; right: 20px;", "bottom right"},
}

type pageData struct {
	AnchorCSS  string
	Origin     string
	Scale      float64
	Font       string
	PollMillis int
	WSPath     string
}

// WritePage renders the built-in overlay page to path.
func WritePage(path string, opts PageOptions) error {
	if opts.Position == "" {
		opts.Position = "bottom-left"
	}
	anchor, ok := anchors[opts.Position]
	if !ok {
		return fmt.Errorf("unknown overlay position %q", opts.Position)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1.0
	}
	if opts.Font == "" {
		opts.Font = "Arial"
	}
	if opts.PollMillis <= 0 {
		opts.PollMillis = 300
	}

	tmpl, err := template.New("overlay").Parse(defaultTemplate)
	if err != nil {
		return fmt.Errorf("parsing overlay template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		AnchorCSS:  anchor.css,
		Origin:     anchor.origin,
		Scale:      opts.Scale,
		Font:       opts.Font,
		PollMillis: opts.PollMillis,
		WSPath:     opts.WSPath,
	})
	if err != nil {
		return fmt.Errorf("rendering overlay template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
