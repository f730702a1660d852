package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (COMBOTRACKER_*). A missing file is
// not an error; defaults are returned.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// COMBOTRACKER_TWITCH_CHANNEL -> twitch.channel, etc. Section and
	// key are separated by the first underscore.
	if err := k.Load(env.Provider("COMBOTRACKER_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "COMBOTRACKER_"))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized emote provider names.
var validProviders = map[ProviderName]bool{
	ProviderTwitch:  true,
	ProviderBTTV:    true,
	ProviderFFZ:     true,
	ProviderSevenTV: true,
}

// validPositions is the set of recognized overlay anchor positions.
var validPositions = map[string]bool{
	"top-left":     true,
	"top-right":    true,
	"bottom-left":  true,
	"bottom-right": true,
}

// Validate checks that the configuration contains usable values for
// running the tracker.
func (c *Config) Validate() error {
	if c.Twitch.Channel == "" {
		return fmt.Errorf("twitch.channel is required")
	}
	if c.Twitch.Nickname == "" {
		return fmt.Errorf("twitch.nickname is required")
	}

	for _, p := range c.Emotes.Providers {
		if !validProviders[p] {
			return fmt.Errorf("invalid emote provider %q: must be one of twitch, bttv, ffz, 7tv", p)
		}
	}

	if c.Overlay.Dir == "" {
		return fmt.Errorf("overlay.dir is required")
	}
	if c.Overlay.MaxItems < 0 {
		return fmt.Errorf("overlay.max_items must be non-negative")
	}
	if c.Overlay.Position != "" && !validPositions[c.Overlay.Position] {
		return fmt.Errorf("invalid overlay.position %q", c.Overlay.Position)
	}
	if c.Overlay.Scale <= 0 {
		return fmt.Errorf("overlay.scale must be positive")
	}

	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Combos.TimeoutSeconds <= 0 {
		return fmt.Errorf("combos.timeout_seconds must be positive")
	}
	if c.Combos.DisplaySeconds <= 0 {
		return fmt.Errorf("combos.display_seconds must be positive")
	}
	if c.Combos.MinWordLength < 1 {
		return fmt.Errorf("combos.min_word_length must be at least 1")
	}

	return nil
}
