package emotes

import "github.com/combokit/combotracker/internal/fileutil"

// SetFileName is the on-disk snapshot of the merged provider emote set.
const SetFileName = "emote_sets.json"

// SaveSet snapshots a merged emote set so later runs can start with the
// last known emotes when no provider API is reachable.
func SaveSet(path string, set map[string]Emote) error {
	return fileutil.WriteJSON(path, set)
}

// LoadSet reads a snapshot written by SaveSet. A missing file yields an
// empty set.
func LoadSet(path string) (map[string]Emote, error) {
	set := make(map[string]Emote)
	if _, err := fileutil.ReadJSONOr(path, &set); err != nil {
		return nil, err
	}
	return set, nil
}
