package emotes

import (
	"context"
	"fmt"
	"net/http"
)

const (
	sevenTVDefaultBaseURL = "https://api.7tv.app"
	sevenTVCDN            = "https://cdn.7tv.app/emote/"
)

// SevenTV fetches 7TV emotes.
type SevenTV struct {
	baseURL string
	client  *http.Client
}

// NewSevenTV creates a 7TV provider. An empty baseURL selects the
// public API.
func NewSevenTV(baseURL string) *SevenTV {
	if baseURL == "" {
		baseURL = sevenTVDefaultBaseURL
	}
	return &SevenTV{baseURL: baseURL, client: newHTTPClient()}
}

func (s *SevenTV) Name() string { return "7tv" }

type sevenTVEmote struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *SevenTV) Fetch(ctx context.Context, ch Channel) (map[string]Emote, error) {
	out := make(map[string]Emote)

	var global []sevenTVEmote
	if err := getJSON(ctx, s.client, s.baseURL+"/v2/emotes/global", &global); err != nil {
		return nil, fmt.Errorf("7tv global emotes: %w", err)
	}
	for _, e := range global {
		out[e.Name] = Emote{ID: e.ID, Provider: "7tv", URL: s.EmoteURL(e.ID)}
	}

	if ch.ID != "" {
		var channel []sevenTVEmote
		if err := getJSON(ctx, s.client, s.baseURL+"/v2/users/"+ch.ID+"/emotes", &channel); err == nil {
			for _, e := range channel {
				out[e.Name] = Emote{ID: e.ID, Provider: "7tv", URL: s.EmoteURL(e.ID)}
			}
		}
	}

	return out, nil
}

func (s *SevenTV) EmoteURL(id string) string {
	return sevenTVCDN + id + "/3x"
}
