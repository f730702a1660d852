// Package emotes fetches emote sets from third-party providers and
// maintains a local image cache for the overlay.
package emotes

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/logging"
	"github.com/combokit/combotracker/internal/progress"
)

// Channel identifies a Twitch channel for channel-scoped emote sets.
type Channel struct {
	Name string // login name, used by FFZ
	ID   string // numeric id, used by BTTV and 7TV
}

// Emote is a single emote known to a provider.
type Emote struct {
	ID       string
	Provider string // twitch, bttv, ffz, 7tv
	URL      string // direct CDN image URL, captured at fetch time
}

// Provider fetches an emote set and resolves image URLs.
type Provider interface {
	Name() string
	// Fetch returns the provider's emotes keyed by emote text. Global
	// and channel-specific sets are merged, channel entries winning.
	Fetch(ctx context.Context, ch Channel) (map[string]Emote, error)
	// EmoteURL returns the CDN URL for an emote id.
	EmoteURL(id string) string
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// FetchAll merges the emote sets of every provider, reporting progress
// per provider. A failing provider is logged and skipped; the merge is
// best-effort by design so one dead API does not block startup.
func FetchAll(ctx context.Context, providers []Provider, ch Channel, rep progress.Reporter, log *zap.SugaredLogger) map[string]Emote {
	if log == nil {
		log = logging.Nop()
	}
	if rep == nil {
		rep = progress.NopReporter{}
	}

	rep.Start(len(providers), "Loading emotes")
	defer rep.Finish()

	merged := make(map[string]Emote)
	for _, p := range providers {
		rep.Step(p.Name())
		set, err := p.Fetch(ctx, ch)
		if err != nil {
			log.Errorw("emote fetch failed", "provider", p.Name(), "error", err)
			continue
		}
		for text, e := range set {
			merged[text] = e
		}
		log.Infow("loaded emotes", "provider", p.Name(), "count", len(set))
	}
	return merged
}
