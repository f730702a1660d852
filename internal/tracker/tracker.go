// Package tracker turns chat messages into combo updates. It decides
// which words and emotes in a message count, feeds them to the combo
// manager and the stats store, and pushes the resulting state to the
// overlay.
package tracker

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/combo"
	"github.com/combokit/combotracker/internal/emotes"
	"github.com/combokit/combotracker/internal/fileutil"
	"github.com/combokit/combotracker/internal/irc"
	"github.com/combokit/combotracker/internal/logging"
	"github.com/combokit/combotracker/internal/overlay"
	"github.com/combokit/combotracker/internal/store"
)

// stopWords are common words that never form combos on their own.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "for": {}, "not": {}, "with": {},
}

// twitchURLs resolves CDN URLs for first-party emote ids.
var twitchURLs = emotes.NewTwitch()

// notifier pushes refresh events to connected overlay pages.
type notifier interface {
	Broadcast(event string)
}

// Options configures a Tracker. Combos and Overlay are required; the
// rest degrade gracefully when nil or zero.
type Options struct {
	Combos  *combo.Manager
	Overlay *overlay.Manager

	MaxItems           int // combos shown on the overlay
	MinWordLength      int // shorter words are ignored
	MaxWordsPerMessage int // longer messages only match known emotes

	// Known is the provider emote set keyed by emote text. Words that
	// match it count as emotes regardless of message length.
	Known map[string]emotes.Emote

	// KnownEmotesPath persists emote names learned from message tags
	// between runs. Empty disables persistence.
	KnownEmotesPath string

	// MutePatterns are regular expressions; matching words never combo.
	MutePatterns []string

	Store    *store.Store  // optional usage stats
	Cache    *emotes.Cache // optional image cache for matched emotes
	Notifier notifier      // optional refresh push
	Log      *zap.SugaredLogger
}

// Tracker processes chat messages. Safe for use from a single message
// loop; the combo manager underneath handles its own locking.
type Tracker struct {
	combos  *combo.Manager
	overlay *overlay.Manager

	maxItems      int
	minWordLength int
	maxWords      int

	known           map[string]emotes.Emote
	knownEmotesPath string
	learned         map[string]struct{}
	muted           []*regexp.Regexp

	store    *store.Store
	cache    *emotes.Cache
	notifier notifier
	log      *zap.SugaredLogger

	messages int
}

// New creates a Tracker. Invalid mute patterns are logged and dropped.
// Emote names learned in earlier runs are loaded from KnownEmotesPath.
func New(opts Options) *Tracker {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = overlay.DefaultMaxItems
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = 2
	}
	if opts.MaxWordsPerMessage <= 0 {
		opts.MaxWordsPerMessage = 3
	}
	if opts.Known == nil {
		opts.Known = map[string]emotes.Emote{}
	}

	t := &Tracker{
		combos:          opts.Combos,
		overlay:         opts.Overlay,
		maxItems:        opts.MaxItems,
		minWordLength:   opts.MinWordLength,
		maxWords:        opts.MaxWordsPerMessage,
		known:           opts.Known,
		knownEmotesPath: opts.KnownEmotesPath,
		learned:         make(map[string]struct{}),
		store:           opts.Store,
		cache:           opts.Cache,
		notifier:        opts.Notifier,
		log:             opts.Log,
	}

	for _, pat := range opts.MutePatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			t.log.Warnw("invalid mute pattern", "pattern", pat, "error", err)
			continue
		}
		t.muted = append(t.muted, re)
	}

	if t.knownEmotesPath != "" {
		learned, err := fileutil.LoadLineSet(t.knownEmotesPath)
		if err != nil {
			t.log.Warnw("failed to load known emotes", "path", t.knownEmotesPath, "error", err)
		} else {
			t.learned = learned
		}
	}

	return t
}

// Process handles one chat message: tagged emotes always count, and the
// plain words count depending on message length. Any change is written
// to the overlay and broadcast to connected pages.
func (t *Tracker) Process(msg irc.Message) {
	t.messages++

	if cmd, ok := strings.CutPrefix(msg.Text, "!combo "); ok {
		if isPrivileged(msg) {
			t.handleCommand(strings.TrimSpace(cmd), msg.User)
		}
		return
	}

	bumped := false
	seen := make(map[string]struct{})

	// Tagged Twitch emotes carry exact ids; they count on any message.
	for text, id := range msg.EmoteSpans() {
		if t.isMuted(text) {
			continue
		}
		seen[text] = struct{}{}
		t.learn(text)
		t.bump(text, msg.User, combo.Settings{
			IsEmote:  true,
			EmoteID:  id,
			EmoteURL: twitchURLs.EmoteURL(id),
		})
		bumped = true
	}

	words := strings.Fields(msg.Text)
	shortMessage := len(words) <= t.maxWords

	for _, word := range words {
		if _, done := seen[word]; done {
			continue
		}
		if t.isMuted(word) {
			continue
		}

		// Third-party and previously learned emotes count regardless
		// of message length.
		if e, ok := t.known[word]; ok {
			seen[word] = struct{}{}
			t.bump(word, msg.User, combo.Settings{
				IsEmote:  true,
				EmoteID:  e.ID,
				EmoteURL: e.URL,
			})
			bumped = true
			continue
		}
		if id, ok := emotes.CommonEmoteIDs[word]; ok {
			seen[word] = struct{}{}
			t.bump(word, msg.User, combo.Settings{
				IsEmote:  true,
				EmoteID:  id,
				EmoteURL: twitchURLs.EmoteURL(id),
			})
			bumped = true
			continue
		}
		if _, ok := t.learned[word]; ok {
			seen[word] = struct{}{}
			t.bump(word, msg.User, combo.Settings{IsEmote: true})
			bumped = true
			continue
		}

		// Plain words only combo in short messages; long messages are
		// conversation, not chants.
		if !shortMessage {
			continue
		}
		if len([]rune(word)) < t.minWordLength {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		seen[word] = struct{}{}
		t.bump(word, msg.User, combo.Settings{})
		bumped = true
	}

	if bumped {
		t.publish()
	}
}

// bump feeds one contribution through the combo manager, the image
// cache, and the stats store.
func (t *Tracker) bump(word, user string, s combo.Settings) {
	if t.cache != nil && s.IsEmote && s.EmoteURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		local, err := t.cache.Download(ctx, emotes.Emote{ID: s.EmoteID, URL: s.EmoteURL}, word)
		cancel()
		if err != nil {
			t.log.Debugw("emote download failed", "word", word, "error", err)
		} else {
			s.LocalPath = local
		}
	}

	count, isNew := t.combos.Bump(word, user, s)
	if isNew {
		t.log.Debugw("combo started", "word", word, "user", user)
	} else if count > 1 {
		t.log.Debugw("combo extended", "word", word, "combo", count)
	}

	if t.store != nil {
		if err := t.store.RecordUsage(word, s.IsEmote); err != nil {
			t.log.Warnw("failed to record usage", "word", word, "error", err)
		}
	}
}

// handleCommand executes a moderator chat command: "clear" drops every
// active combo, "clear <word>" drops one, "reset" also wipes the
// all-time counts.
func (t *Tracker) handleCommand(cmd, user string) {
	switch {
	case cmd == "clear":
		t.combos.ClearAll()
	case strings.HasPrefix(cmd, "clear "):
		word := strings.TrimSpace(strings.TrimPrefix(cmd, "clear "))
		if !t.combos.Clear(word) {
			return
		}
	case cmd == "reset":
		t.combos.ResetStats()
	default:
		t.log.Debugw("unknown chat command", "command", cmd, "user", user)
		return
	}
	t.log.Infow("chat command", "command", cmd, "user", user)
	t.publish()
}

// isPrivileged reports whether the sender may issue chat commands:
// the broadcaster or a channel moderator, per the message badges.
func isPrivileged(msg irc.Message) bool {
	if msg.Tags["mod"] == "1" {
		return true
	}
	return strings.Contains(msg.Tags["badges"], "broadcaster")
}

// publish writes the current combo state to the overlay and nudges
// connected pages.
func (t *Tracker) publish() {
	t.overlay.UpdateWithCombos(t.combos.Active(), t.maxItems)
	if top := t.combos.Top(); top != nil {
		t.log.Debugw("overlay updated", "top", top["text"], "combo", top["combo"])
	}
	if t.notifier != nil {
		t.notifier.Broadcast("refresh")
	}
}

// learn remembers an emote name seen in message tags so it matches in
// later runs even without tags.
func (t *Tracker) learn(text string) {
	if _, ok := t.learned[text]; ok {
		return
	}
	t.learned[text] = struct{}{}
	if t.knownEmotesPath != "" {
		if err := fileutil.SaveLineSet(t.knownEmotesPath, t.learned, "# emote names learned from chat"); err != nil {
			t.log.Warnw("failed to save known emotes", "path", t.knownEmotesPath, "error", err)
		}
	}
}

// isMuted reports whether any mute pattern matches the word.
func (t *Tracker) isMuted(word string) bool {
	for _, re := range t.muted {
		if re.MatchString(word) {
			return true
		}
	}
	return false
}

// Stats summarizes the run so far.
type Stats struct {
	Messages     int
	ActiveCombos int
	TopWord      string
	TopCount     int
}

// Stats returns counters for the session report.
func (t *Tracker) Stats() Stats {
	st := Stats{
		Messages:     t.messages,
		ActiveCombos: len(t.combos.Active()),
	}
	for word, n := range t.combos.Counts() {
		if n > st.TopCount {
			st.TopWord, st.TopCount = word, n
		}
	}
	return st
}
