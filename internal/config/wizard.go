package config

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result
// to the given path, and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to combotracker! Let's configure your overlay.")
	fmt.Println()

	cfg := DefaultConfig()

	channelPrompt := promptui.Prompt{
		Label: "Twitch channel to watch",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("channel is required")
			}
			return nil
		},
	}
	channel, err := channelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("channel prompt: %w", err)
	}
	cfg.Twitch.Channel = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(channel, "#")))

	nickPrompt := promptui.Prompt{
		Label:   "Bot nickname (leave as-is for anonymous read-only)",
		Default: cfg.Twitch.Nickname,
	}
	nick, err := nickPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("nickname prompt: %w", err)
	}
	cfg.Twitch.Nickname = strings.TrimSpace(nick)

	tokenPrompt := promptui.Prompt{
		Label: "OAuth token (oauth:..., empty for anonymous)",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("token prompt: %w", err)
	}
	cfg.Twitch.Token = strings.TrimSpace(token)

	positionPrompt := promptui.Select{
		Label: "Overlay position",
		Items: []string{"bottom-left", "bottom-right", "top-left", "top-right"},
	}
	_, position, err := positionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("position selection: %w", err)
	}
	cfg.Overlay.Position = position

	providersPrompt := promptui.Select{
		Label: "Emote providers",
		Items: []string{
			"all (twitch + bttv + ffz + 7tv)",
			"twitch only",
		},
	}
	idx, _, err := providersPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	if idx == 1 {
		cfg.Emotes.Providers = []ProviderName{ProviderTwitch}
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println("Run `combotracker run` to start tracking.")
	return cfg, nil
}
