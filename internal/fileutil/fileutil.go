// Package fileutil provides the small set of filesystem helpers the
// tracker relies on: atomic JSON writes, tolerant JSON reads, and the
// line-per-entry text files used for emote lists.
package fileutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnsureDir creates the directory (and any parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteJSON writes v to path as indented JSON atomically. It writes to
// a temporary file next to the destination and renames it into place,
// so readers never observe a partially written file. The temporary
// file is removed if the rename fails; the original error is returned
// since it is the one the caller can act on.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := EnsureDir(dir); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// ReadJSON reads the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ReadJSONOr reads the JSON file at path into v. A missing file is not
// an error; v is left untouched and ok is false.
func ReadJSONOr(path string, v any) (ok bool, err error) {
	err = ReadJSON(path, v)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadLineSet reads a text file into a set of lines, skipping blank
// lines and lines starting with '#'. A missing file yields an empty set.
func LoadLineSet(path string) (map[string]struct{}, error) {
	set := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return set, nil
}

// SaveLineSet writes a set to a text file, one entry per line in sorted
// order, with an optional leading header comment.
func SaveLineSet(path string, set map[string]struct{}, header string) error {
	lines := make([]string, 0, len(set))
	for entry := range set {
		lines = append(lines, entry)
	}
	sort.Strings(lines)

	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteByte('\n')
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
