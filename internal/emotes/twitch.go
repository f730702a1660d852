package emotes

import "context"

// twitchCDN is the URL scheme for first-party Twitch emotes. Their ids
// arrive in chat message tags, so there is nothing to prefetch.
const twitchCDN = "https://static-cdn.jtvnw.net/emoticons/v2/"

// Twitch resolves first-party emote URLs.
type Twitch struct{}

// NewTwitch creates the Twitch provider.
func NewTwitch() *Twitch { return &Twitch{} }

func (t *Twitch) Name() string { return "twitch" }

// Fetch returns an empty set: Twitch emote ids come from chat tags.
func (t *Twitch) Fetch(ctx context.Context, ch Channel) (map[string]Emote, error) {
	return map[string]Emote{}, nil
}

func (t *Twitch) EmoteURL(id string) string {
	return twitchCDN + id + "/default/dark/3.0"
}

// CommonEmoteIDs maps well-known global Twitch emotes to their ids,
// for matching emote words that arrive without tags.
var CommonEmoteIDs = map[string]string{
	"Kappa":           "25",
	"PogChamp":        "88",
	"LUL":             "425618",
	"BibleThump":      "86",
	"TriHard":         "120232",
	"Kreygasm":        "41",
	"4Head":           "354",
	"SwiftRage":       "34",
	"NotLikeThis":     "58765",
	"ResidentSleeper": "245",
	"DansGame":        "33",
	"FrankerZ":        "65",
	"SMOrc":           "52",
	"KappaPride":      "55338",
	"CoolStoryBob":    "123171",
	"cmonBruh":        "84608",
	"VoHiYo":          "81274",
}
