package emotes

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const ffzDefaultBaseURL = "https://api.frankerfacez.com"

// FFZ fetches FrankerFaceZ emotes. FFZ image URLs vary per emote, so
// they are captured at fetch time instead of derived from the id.
type FFZ struct {
	baseURL string
	client  *http.Client
}

// NewFFZ creates an FFZ provider. An empty baseURL selects the public
// API.
func NewFFZ(baseURL string) *FFZ {
	if baseURL == "" {
		baseURL = ffzDefaultBaseURL
	}
	return &FFZ{baseURL: baseURL, client: newHTTPClient()}
}

func (f *FFZ) Name() string { return "ffz" }

type ffzEmoticon struct {
	ID   int               `json:"id"`
	Name string            `json:"name"`
	URLs map[string]string `json:"urls"`
}

type ffzSet struct {
	Emoticons []ffzEmoticon `json:"emoticons"`
}

type ffzResponse struct {
	Sets map[string]ffzSet `json:"sets"`
}

func (f *FFZ) Fetch(ctx context.Context, ch Channel) (map[string]Emote, error) {
	out := make(map[string]Emote)

	var global ffzResponse
	if err := getJSON(ctx, f.client, f.baseURL+"/v1/set/global", &global); err != nil {
		return nil, fmt.Errorf("ffz global emotes: %w", err)
	}
	addFFZSets(out, global.Sets)

	if ch.Name != "" {
		var room ffzResponse
		if err := getJSON(ctx, f.client, f.baseURL+"/v1/room/"+ch.Name, &room); err == nil {
			addFFZSets(out, room.Sets)
		}
	}

	return out, nil
}

func addFFZSets(out map[string]Emote, sets map[string]ffzSet) {
	for _, set := range sets {
		for _, e := range set.Emoticons {
			url := bestFFZURL(e.URLs)
			if url == "" {
				continue
			}
			out[e.Name] = Emote{
				ID:       strconv.Itoa(e.ID),
				Provider: "ffz",
				URL:      url,
			}
		}
	}
}

// bestFFZURL picks the highest resolution available. The API returns
// protocol-relative URLs.
func bestFFZURL(urls map[string]string) string {
	for _, key := range []string{"4", "2", "1"} {
		if u, ok := urls[key]; ok && u != "" {
			if strings.HasPrefix(u, "//") {
				return "https:" + u
			}
			return u
		}
	}
	return ""
}

// EmoteURL returns empty: FFZ URLs are only known from fetch results.
func (f *FFZ) EmoteURL(id string) string { return "" }
