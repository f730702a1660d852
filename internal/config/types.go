package config

// ProviderName identifies a third-party emote provider.
type ProviderName string

const (
	ProviderTwitch  ProviderName = "twitch"
	ProviderBTTV    ProviderName = "bttv"
	ProviderFFZ     ProviderName = "ffz"
	ProviderSevenTV ProviderName = "7tv"
)

// Config is the top-level combotracker configuration, corresponding to
// .combotracker.yml.
type Config struct {
	Twitch  TwitchConfig  `yaml:"twitch" koanf:"twitch"`
	Combos  CombosConfig  `yaml:"combos" koanf:"combos"`
	Overlay OverlayConfig `yaml:"overlay" koanf:"overlay"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Emotes  EmotesConfig  `yaml:"emotes" koanf:"emotes"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// TwitchConfig holds the chat connection settings.
type TwitchConfig struct {
	Nickname  string `yaml:"nickname" koanf:"nickname"`
	Token     string `yaml:"token" koanf:"token"` // oauth:... token
	Channel   string `yaml:"channel" koanf:"channel"`
	ChannelID string `yaml:"channel_id" koanf:"channel_id"` // numeric id, used by BTTV/7TV
}

// CombosConfig controls combo lifecycle and message processing.
type CombosConfig struct {
	TimeoutSeconds       int  `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	DisplaySeconds       int  `yaml:"display_seconds" koanf:"display_seconds"`
	AllowMultiplePerUser bool `yaml:"allow_multiple_per_user" koanf:"allow_multiple_per_user"`
	MinWordLength        int  `yaml:"min_word_length" koanf:"min_word_length"`
	MaxWordsPerMessage   int  `yaml:"max_words_per_message" koanf:"max_words_per_message"`
}

// OverlayConfig controls the on-disk overlay output.
type OverlayConfig struct {
	Dir      string  `yaml:"dir" koanf:"dir"`
	MaxItems int     `yaml:"max_items" koanf:"max_items"`
	Position string  `yaml:"position" koanf:"position"`
	Scale    float64 `yaml:"scale" koanf:"scale"`
	Font     string  `yaml:"font" koanf:"font"`
	Template string  `yaml:"template" koanf:"template"` // optional custom HTML template path
}

// ServerConfig controls the local overlay HTTP server.
type ServerConfig struct {
	Enabled bool `yaml:"enabled" koanf:"enabled"`
	Port    int  `yaml:"port" koanf:"port"`
}

// EmotesConfig controls emote providers and the image cache.
type EmotesConfig struct {
	Providers    []ProviderName `yaml:"providers" koanf:"providers"`
	CacheDir     string         `yaml:"cache_dir" koanf:"cache_dir"`
	MutePatterns []string       `yaml:"mute_patterns" koanf:"mute_patterns"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
	JSON  bool   `yaml:"json" koanf:"json"`
}
