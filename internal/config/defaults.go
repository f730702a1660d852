package config

// DefaultConfig returns the configuration used when no file exists and
// the baseline that a loaded file is overlaid onto.
func DefaultConfig() *Config {
	return &Config{
		Twitch: TwitchConfig{
			Nickname: "justinfan12345", // anonymous read-only login
		},
		Combos: CombosConfig{
			TimeoutSeconds:       10,
			DisplaySeconds:       5,
			AllowMultiplePerUser: true,
			MinWordLength:        2,
			MaxWordsPerMessage:   1,
		},
		Overlay: OverlayConfig{
			Dir:      "static",
			MaxItems: 5,
			Position: "bottom-left",
			Scale:    1.0,
			Font:     "Arial",
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		Emotes: EmotesConfig{
			Providers: []ProviderName{ProviderTwitch, ProviderBTTV, ProviderFFZ, ProviderSevenTV},
			CacheDir:  "emotes",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
