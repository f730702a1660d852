package combo

import (
	"testing"
	"time"
)

func newTestManager(allowMultiple bool) (*Manager, *time.Time) {
	m := NewManager(Options{
		DefaultTimeout:       10 * time.Second,
		AllowMultiplePerUser: allowMultiple,
	})
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestBumpStartsAndExtendsCombo(t *testing.T) {
	m, _ := newTestManager(true)

	count, isNew := m.Bump("Kappa", "alice", Settings{IsEmote: true})
	if count != 1 || !isNew {
		t.Errorf("first Bump = (%d, %v), want (1, true)", count, isNew)
	}

	count, isNew = m.Bump("Kappa", "bob", Settings{IsEmote: true})
	if count != 2 || isNew {
		t.Errorf("second Bump = (%d, %v), want (2, false)", count, isNew)
	}
}

func TestBumpRespectsSingleContributionRule(t *testing.T) {
	m, _ := newTestManager(false)

	m.Bump("LUL", "alice", Settings{})
	count, isNew := m.Bump("LUL", "alice", Settings{})
	if count != 1 || isNew {
		t.Errorf("repeat contribution = (%d, %v), want (1, false)", count, isNew)
	}

	// A different user still counts.
	count, _ = m.Bump("LUL", "bob", Settings{})
	if count != 2 {
		t.Errorf("count after second user = %d, want 2", count)
	}
}

func TestBumpAfterExpiryStartsFresh(t *testing.T) {
	m, now := newTestManager(true)

	m.Bump("PogChamp", "alice", Settings{})
	*now = now.Add(11 * time.Second)

	count, isNew := m.Bump("PogChamp", "bob", Settings{})
	if count != 1 || !isNew {
		t.Errorf("Bump after expiry = (%d, %v), want (1, true)", count, isNew)
	}

	// All-time counts keep accumulating across combo restarts.
	if got := m.Counts()["PogChamp"]; got != 2 {
		t.Errorf("all-time count = %d, want 2", got)
	}
}

func TestPerWordTimeoutOverride(t *testing.T) {
	m, now := newTestManager(true)

	m.Bump("slowmote", "alice", Settings{TimeoutSeconds: 60})
	*now = now.Add(30 * time.Second)

	count, isNew := m.Bump("slowmote", "bob", Settings{TimeoutSeconds: 60})
	if count != 2 || isNew {
		t.Errorf("Bump within override window = (%d, %v), want (2, false)", count, isNew)
	}
}

func TestDropExpired(t *testing.T) {
	m, now := newTestManager(true)

	m.Bump("a", "u1", Settings{})
	m.Bump("b", "u2", Settings{TimeoutSeconds: 60})

	*now = now.Add(15 * time.Second)
	if dropped := m.dropExpired(); dropped != 1 {
		t.Errorf("dropExpired = %d, want 1", dropped)
	}

	active := m.Active()
	if len(active) != 1 || active[0]["text"] != "b" {
		t.Errorf("active after expiry = %v, want only b", active)
	}
}

func TestActiveSnapshotShape(t *testing.T) {
	m, now := newTestManager(true)

	m.Bump("Kappa", "alice", Settings{
		IsEmote:   true,
		EmoteID:   "25",
		EmoteURL:  "https://static-cdn.jtvnw.net/emoticons/v2/25/default/dark/3.0",
		LocalPath: "emotes/twitch_Kappa_25.png",
	})
	m.Bump("Kappa", "bob", Settings{IsEmote: true})

	active := m.Active()
	if len(active) != 1 {
		t.Fatalf("got %d active combos, want 1", len(active))
	}
	item := active[0]
	if item["text"] != "Kappa" || item["combo"] != 2 || item["is_emote"] != true {
		t.Errorf("unexpected snapshot: %v", item)
	}
	if item["emote_id"] != "25" {
		t.Errorf("emote_id = %v", item["emote_id"])
	}
	if item["local_path"] != "emotes/twitch_Kappa_25.png" {
		t.Errorf("local_path = %v", item["local_path"])
	}
	wantExpires := now.Add(10 * time.Second).UnixMilli()
	if item["expires"] != wantExpires {
		t.Errorf("expires = %v, want %d", item["expires"], wantExpires)
	}
	wantDisplay := now.Add(5 * time.Second).UnixMilli()
	if item["display_until"] != wantDisplay {
		t.Errorf("display_until = %v, want %d", item["display_until"], wantDisplay)
	}
	if got := len(item["contributors"].([]string)); got != 2 {
		t.Errorf("contributors = %d, want 2", got)
	}
}

func TestDisplayWindowFollowsLastContribution(t *testing.T) {
	m := NewManager(Options{
		DefaultTimeout:       60 * time.Second,
		Display:              3 * time.Second,
		AllowMultiplePerUser: true,
	})
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	m.Bump("Kappa", "alice", Settings{})
	first := m.Active()[0]["display_until"].(int64)
	if want := now.Add(3 * time.Second).UnixMilli(); first != want {
		t.Errorf("display_until = %d, want %d", first, want)
	}

	// A later contribution keeps the combo on screen even though the
	// first display window has passed.
	now = now.Add(10 * time.Second)
	m.Bump("Kappa", "bob", Settings{})
	second := m.Active()[0]["display_until"].(int64)
	if want := now.Add(3 * time.Second).UnixMilli(); second != want {
		t.Errorf("display_until after extend = %d, want %d", second, want)
	}
	if second <= first {
		t.Error("display window did not advance with the contribution")
	}
}

func TestActiveInsertionOrder(t *testing.T) {
	m, _ := newTestManager(true)

	for _, word := range []string{"first", "second", "third"} {
		m.Bump(word, "u", Settings{})
	}

	active := m.Active()
	for i, want := range []string{"first", "second", "third"} {
		if active[i]["text"] != want {
			t.Errorf("active[%d] = %v, want %q", i, active[i]["text"], want)
		}
	}
}

func TestTop(t *testing.T) {
	m, _ := newTestManager(true)

	if m.Top() != nil {
		t.Error("Top on empty manager should be nil")
	}

	m.Bump("low", "u1", Settings{})
	m.Bump("high", "u1", Settings{})
	m.Bump("high", "u2", Settings{})

	top := m.Top()
	if top == nil || top["text"] != "high" {
		t.Errorf("Top = %v, want high", top)
	}
}

func TestClearAndReset(t *testing.T) {
	m, _ := newTestManager(true)

	m.Bump("a", "u", Settings{})
	m.Bump("b", "u", Settings{})

	if !m.Clear("a") {
		t.Error("Clear(a) = false, want true")
	}
	if m.Clear("a") {
		t.Error("second Clear(a) = true, want false")
	}

	m.ClearAll()
	if len(m.Active()) != 0 {
		t.Error("active combos remain after ClearAll")
	}
	if len(m.Counts()) == 0 {
		t.Error("ClearAll should keep all-time counts")
	}

	m.ResetStats()
	if len(m.Counts()) != 0 {
		t.Error("counts remain after ResetStats")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	m := NewManager(Options{})
	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}
