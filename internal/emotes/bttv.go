package emotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	bttvDefaultBaseURL = "https://api.betterttv.net"
	bttvCDN            = "https://cdn.betterttv.net/emote/"
)

// BTTV fetches BetterTTV emotes.
type BTTV struct {
	baseURL string
	client  *http.Client
}

// NewBTTV creates a BTTV provider. An empty baseURL selects the public
// API; tests point it at a local server.
func NewBTTV(baseURL string) *BTTV {
	if baseURL == "" {
		baseURL = bttvDefaultBaseURL
	}
	return &BTTV{baseURL: baseURL, client: newHTTPClient()}
}

func (b *BTTV) Name() string { return "bttv" }

type bttvEmote struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type bttvUserResponse struct {
	ChannelEmotes []bttvEmote `json:"channelEmotes"`
	SharedEmotes  []bttvEmote `json:"sharedEmotes"`
}

func (b *BTTV) Fetch(ctx context.Context, ch Channel) (map[string]Emote, error) {
	out := make(map[string]Emote)

	var global []bttvEmote
	if err := getJSON(ctx, b.client, b.baseURL+"/3/cached/emotes/global", &global); err != nil {
		return nil, fmt.Errorf("bttv global emotes: %w", err)
	}
	for _, e := range global {
		out[e.Code] = Emote{ID: e.ID, Provider: "bttv", URL: b.EmoteURL(e.ID)}
	}

	if ch.ID != "" {
		var user bttvUserResponse
		// Channel lookups 404 for channels without BTTV emotes; that
		// is not an error worth failing the whole fetch for.
		err := getJSON(ctx, b.client, b.baseURL+"/3/cached/users/twitch/"+ch.ID, &user)
		if err == nil {
			for _, e := range append(user.ChannelEmotes, user.SharedEmotes...) {
				out[e.Code] = Emote{ID: e.ID, Provider: "bttv", URL: b.EmoteURL(e.ID)}
			}
		}
	}

	return out, nil
}

func (b *BTTV) EmoteURL(id string) string {
	return bttvCDN + id + "/3x"
}

// getJSON issues a GET request and decodes the JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
