// Package irc implements the minimal Twitch chat client the tracker
// needs: an anonymous-capable IRC connection with message tags.
package irc

import "strings"

// Message is a parsed PRIVMSG.
type Message struct {
	User    string
	Channel string
	Text    string
	Tags    map[string]string
}

// parseLine parses a raw IRC line into a Message. ok is false for
// anything that is not a PRIVMSG.
func parseLine(line string) (msg Message, ok bool) {
	rest := line

	if strings.HasPrefix(rest, "@") {
		idx := strings.Index(rest, " ")
		if idx < 0 {
			return Message{}, false
		}
		msg.Tags = parseTags(rest[1:idx])
		rest = rest[idx+1:]
	}

	if strings.HasPrefix(rest, ":") {
		idx := strings.Index(rest, " ")
		if idx < 0 {
			return Message{}, false
		}
		prefix := rest[1:idx]
		if bang := strings.Index(prefix, "!"); bang >= 0 {
			msg.User = prefix[:bang]
		} else {
			msg.User = prefix
		}
		rest = rest[idx+1:]
	}

	if !strings.HasPrefix(rest, "PRIVMSG ") {
		return Message{}, false
	}
	rest = strings.TrimPrefix(rest, "PRIVMSG ")

	idx := strings.Index(rest, " :")
	if idx < 0 {
		return Message{}, false
	}
	msg.Channel = strings.TrimPrefix(rest[:idx], "#")
	msg.Text = rest[idx+2:]

	// display-name preserves the user's capitalization when present.
	if dn, found := msg.Tags["display-name"]; found && dn != "" {
		msg.User = dn
	}

	return msg, true
}

// parseTags parses the IRCv3 tag section ("a=1;b=2") into a map.
func parseTags(s string) map[string]string {
	tags := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		tags[key] = value
	}
	return tags
}

// EmoteSpans resolves the Twitch emotes tag
// ("id:start-end,start-end/id:start-end") against the message text,
// returning emote text mapped to emote id. Positions index unicode
// code points, not bytes. Malformed spans are skipped.
func (m Message) EmoteSpans() map[string]string {
	tag := m.Tags["emotes"]
	if tag == "" {
		return nil
	}
	runes := []rune(m.Text)
	spans := make(map[string]string)

	for _, part := range strings.Split(tag, "/") {
		id, positions, found := strings.Cut(part, ":")
		if !found || id == "" {
			continue
		}
		for _, pos := range strings.Split(positions, ",") {
			startStr, endStr, found := strings.Cut(pos, "-")
			if !found {
				continue
			}
			start, end := atoi(startStr), atoi(endStr)
			if start < 0 || end < start || end >= len(runes) {
				continue
			}
			spans[string(runes[start:end+1])] = id
		}
	}

	if len(spans) == 0 {
		return nil
	}
	return spans
}

// atoi is strconv.Atoi with -1 for anything unparsable.
func atoi(s string) int {
	n := 0
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
