// Package combo tracks active emote/word combos and their all-time
// counts. A combo stays alive while contributions keep arriving within
// its timeout window; a background janitor drops expired ones.
package combo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/logging"
)

// Settings carries the per-word display options that accompany a
// contribution. The zero value means "use the manager defaults".
type Settings struct {
	IsEmote        bool
	EmoteID        string
	EmoteURL       string
	LocalPath      string // overlay-relative path to a cached emote image
	TimeoutSeconds int    // per-word combo timeout override
}

// Item is an active combo.
type Item struct {
	Text         string
	Combo        int
	IsEmote      bool
	EmoteID      string
	EmoteURL     string
	LocalPath    string
	Expires      time.Time
	DisplayUntil time.Time
	Contributors map[string]struct{}
}

// Options configures a Manager.
type Options struct {
	DefaultTimeout time.Duration
	// Display is how long the overlay page keeps showing a combo after
	// its last contribution. Independent of the combo window: a combo
	// can still be extended after the page has hidden it.
	Display              time.Duration
	AllowMultiplePerUser bool
	Log                  *zap.SugaredLogger
}

// Manager is safe for concurrent use.
type Manager struct {
	defaultTimeout time.Duration
	display        time.Duration
	allowMultiple  bool
	log            *zap.SugaredLogger

	mu      sync.Mutex
	counts  map[string]int
	active  map[string]*Item
	order   []string // insertion order of active combos, for stable snapshots
	cancel  context.CancelFunc
	running bool

	// now is swapped out by tests to control expiry.
	now func() time.Time
}

// NewManager creates a stopped Manager; call Start to run the janitor.
func NewManager(opts Options) *Manager {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 10 * time.Second
	}
	if opts.Display <= 0 {
		opts.Display = 5 * time.Second
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	return &Manager{
		defaultTimeout: opts.DefaultTimeout,
		display:        opts.Display,
		allowMultiple:  opts.AllowMultiplePerUser,
		log:            opts.Log,
		counts:         make(map[string]int),
		active:         make(map[string]*Item),
		now:            time.Now,
	}
}

// Start launches the expiry janitor. Calling Start on a running
// manager is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	go m.janitor(ctx)
	m.log.Info("combo manager started")
}

// Stop halts the expiry janitor. Active combos are kept.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.cancel()
	m.running = false
	m.log.Info("combo manager stopped")
}

func (m *Manager) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.dropExpired(); n > 0 {
				m.log.Debugw("cleaned up expired combos", "count", n)
			}
		}
	}
}

func (m *Manager) dropExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for word, item := range m.active {
		if now.After(item.Expires) {
			m.remove(word)
			dropped++
		}
	}
	return dropped
}

// remove deletes word from active and order. Caller holds the lock.
func (m *Manager) remove(word string) {
	delete(m.active, word)
	for i, w := range m.order {
		if w == word {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Bump records a contribution to word from user and returns the new
// combo count and whether a fresh combo was started. A contribution to
// a live combo extends its expiry; when multiple contributions per
// user are disallowed, repeat contributions are ignored.
func (m *Manager) Bump(word, user string, s Settings) (count int, isNew bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[word]++

	timeout := m.defaultTimeout
	if s.TimeoutSeconds > 0 {
		timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}

	now := m.now()
	if item, ok := m.active[word]; ok && now.Before(item.Expires) {
		if !m.allowMultiple {
			if _, seen := item.Contributors[user]; seen {
				m.log.Debugw("skipping repeat contribution", "word", word, "user", user)
				return item.Combo, false
			}
		}
		item.Combo++
		item.Contributors[user] = struct{}{}
		item.Expires = now.Add(timeout)
		item.DisplayUntil = now.Add(m.display)
		return item.Combo, false
	}

	// Either no combo or an expired one; start fresh.
	if _, ok := m.active[word]; ok {
		m.remove(word)
	}
	m.active[word] = &Item{
		Text:         word,
		Combo:        1,
		IsEmote:      s.IsEmote,
		EmoteID:      s.EmoteID,
		EmoteURL:     s.EmoteURL,
		LocalPath:    s.LocalPath,
		Expires:      now.Add(timeout),
		DisplayUntil: now.Add(m.display),
		Contributors: map[string]struct{}{user: {}},
	}
	m.order = append(m.order, word)
	return 1, true
}

// Active returns overlay-ready snapshots of the live combos in
// insertion order. Expiry times are reported in Unix milliseconds for
// the page's JavaScript.
func (m *Manager) Active() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]map[string]any, 0, len(m.active))
	for _, word := range m.order {
		item, ok := m.active[word]
		if !ok {
			continue
		}
		contributors := make([]string, 0, len(item.Contributors))
		for user := range item.Contributors {
			contributors = append(contributors, user)
		}
		entry := map[string]any{
			"text":          item.Text,
			"combo":         item.Combo,
			"is_emote":      item.IsEmote,
			"expires":       item.Expires.UnixMilli(),
			"display_until": item.DisplayUntil.UnixMilli(),
			"contributors":  contributors,
		}
		if item.EmoteID != "" {
			entry["emote_id"] = item.EmoteID
		}
		if item.EmoteURL != "" {
			entry["emote_url"] = item.EmoteURL
		}
		if item.LocalPath != "" {
			entry["local_path"] = item.LocalPath
		}
		out = append(out, entry)
	}
	return out
}

// Top returns the live combo with the highest count, or nil.
func (m *Manager) Top() map[string]any {
	var top map[string]any
	for _, item := range m.Active() {
		if top == nil || item["combo"].(int) > top["combo"].(int) {
			top = item
		}
	}
	return top
}

// Clear drops a specific combo, reporting whether it existed.
func (m *Manager) Clear(word string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[word]; !ok {
		return false
	}
	m.remove(word)
	return true
}

// ClearAll drops every active combo but keeps the all-time counts.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = make(map[string]*Item)
	m.order = nil
}

// ResetStats drops both the active combos and the all-time counts.
func (m *Manager) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = make(map[string]*Item)
	m.order = nil
	m.counts = make(map[string]int)
}

// Counts returns a copy of the all-time per-word counts.
func (m *Manager) Counts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counts))
	for word, n := range m.counts {
		out[word] = n
	}
	return out
}
