package irc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/combokit/combotracker/internal/logging"
)

// DefaultAddr is the public Twitch chat endpoint.
const DefaultAddr = "irc.chat.twitch.tv:6667"

// AnonymousToken is accepted by Twitch for read-only logins with a
// justinfan* nickname.
const AnonymousToken = "SCHMOOPIIE"

// Options configures a Client.
type Options struct {
	Addr     string // host:port, DefaultAddr when empty
	Nickname string
	Token    string // oauth:... token; empty selects the anonymous login
	Channel  string
	Log      *zap.SugaredLogger
}

// Handler receives each parsed chat message.
type Handler func(Message)

// Client maintains a Twitch chat connection and dispatches messages.
type Client struct {
	opts Options
	log  *zap.SugaredLogger
}

// NewClient creates a Client. It does not connect until Run is called.
func NewClient(opts Options) *Client {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	return &Client{opts: opts, log: opts.Log}
}

// Run connects and processes chat until ctx is cancelled, reconnecting
// with backoff on connection loss. The handler is called from the read
// loop goroutine.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := c.session(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.log.Warnw("chat connection lost", "error", err, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// session runs a single connection until it fails or ctx is cancelled.
func (c *Client) session(ctx context.Context, handler Handler) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", c.opts.Addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.opts.Addr, err)
	}
	defer conn.Close()

	// Close the connection when ctx is cancelled so the read loop
	// unblocks promptly.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	token := c.opts.Token
	if token == "" {
		token = AnonymousToken
	}
	handshake := fmt.Sprintf(
		"PASS %s\r\nNICK %s\r\nCAP REQ :twitch.tv/tags\r\nJOIN #%s\r\n",
		token, c.opts.Nickname, strings.ToLower(c.opts.Channel),
	)
	if _, err := conn.Write([]byte(handshake)); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	c.log.Infow("connected to chat", "channel", c.opts.Channel)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "PING") {
			if _, err := conn.Write([]byte("PONG :tmi.twitch.tv\r\n")); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
			continue
		}
		if msg, ok := parseLine(line); ok {
			handler(msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading chat: %w", err)
	}
	return fmt.Errorf("connection closed by server")
}
