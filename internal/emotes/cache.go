package emotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/fileutil"
	"github.com/combokit/combotracker/internal/logging"
)

// Cache downloads emote images once and mirrors them into the overlay
// directory so the page can reference them by relative path.
type Cache struct {
	dir       string // persistent image cache
	mirrorDir string // <overlay dir>/emotes, empty to disable mirroring
	client    *http.Client
	log       *zap.SugaredLogger
}

// NewCache creates an image cache rooted at dir. When mirrorDir is
// non-empty, downloaded images are copied there for the overlay page.
func NewCache(dir, mirrorDir string, log *zap.SugaredLogger) *Cache {
	if log == nil {
		log = logging.Nop()
	}
	return &Cache{
		dir:       dir,
		mirrorDir: mirrorDir,
		client:    newHTTPClient(),
		log:       log,
	}
}

// Download fetches the emote image if it is not already cached and
// returns the overlay-relative path ("emotes/<filename>"). The name is
// the emote text, used to build a readable filename.
func (c *Cache) Download(ctx context.Context, e Emote, name string) (string, error) {
	url := e.URL
	if url == "" {
		return "", fmt.Errorf("no URL for emote %s/%s", e.Provider, e.ID)
	}

	filename := cacheFileName(e.Provider, name, e.ID)
	path := filepath.Join(c.dir, filename)

	if _, err := os.Stat(path); err == nil {
		// Already cached; make sure the mirror copy exists too.
		if err := c.mirror(path, filename); err != nil {
			return "", err
		}
		return "emotes/" + filename, nil
	}

	if err := fileutil.EnsureDir(c.dir); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	c.log.Debugw("downloaded emote", "name", name, "provider", e.Provider, "path", path)

	if err := c.mirror(path, filename); err != nil {
		return "", err
	}
	return "emotes/" + filename, nil
}

// mirror copies a cached file into the overlay's emotes directory.
func (c *Cache) mirror(src, filename string) error {
	if c.mirrorDir == "" {
		return nil
	}
	dst := filepath.Join(c.mirrorDir, filename)
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	if err := fileutil.EnsureDir(c.mirrorDir); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// List returns the paths of all cached emote images.
func (c *Cache) List() ([]string, error) {
	return doublestar.FilepathGlob(filepath.Join(c.dir, "**", "*.png"))
}

// Prune removes cached images older than maxAge and returns how many
// were deleted. Mirror copies are regenerated on demand, so only the
// cache itself is pruned.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	paths, err := c.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				c.log.Warnw("failed to prune cached emote", "path", path, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		c.log.Infow("pruned emote cache", "removed", removed)
	}
	return removed, nil
}

// cacheFileName builds a filesystem-safe filename for an emote image.
func cacheFileName(provider, name, id string) string {
	if name == "" {
		return fmt.Sprintf("%s_%s.png", provider, id)
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if safe == "" {
		return fmt.Sprintf("%s_%s.png", provider, id)
	}
	return fmt.Sprintf("%s_%s_%s.png", provider, safe, id)
}
