// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Gateway intents. The bot only needs guild lifecycle events —
// interactions are always delivered regardless of intents.
const IntentGuilds = 1 << 0

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// reconnectDelay is the wait between gateway connection attempts.
// Discord applies its own rate limiting to identify calls; a flat
// short delay is sufficient on top of that.
const reconnectDelay = 5 * time.Second

// DispatchHandler receives every gateway dispatch event. eventType is
// the dispatch name (READY, INTERACTION_CREATE, GUILD_CREATE, ...);
// data is the raw event payload for the handler to unmarshal.
// Handlers are invoked in their own goroutine.
type DispatchHandler func(eventType string, data json.RawMessage)

// GatewayConfig holds configuration for creating a Gateway.
type GatewayConfig struct {
	// Client is the REST client whose token authenticates the gateway
	// session and whose /gateway/bot call discovers the websocket URL.
	Client *Client
	// Intents is the gateway intent bitset. Zero defaults to
	// IntentGuilds.
	Intents int
	// Handler receives dispatch events. Required.
	Handler DispatchHandler
	// Logger is used for structured logging. If nil, the Client's
	// logger is used.
	Logger *slog.Logger
	// Dialer overrides the websocket dialer. Nil uses the default.
	// Tests inject a dialer pointed at a local server.
	Dialer *websocket.Dialer
	// GatewayURL skips the /gateway/bot discovery call when set.
	GatewayURL string
}

// Gateway maintains the websocket connection to Discord: handshake,
// heartbeats, sequence tracking, resume, and dispatch fan-out.
type Gateway struct {
	client   *Client
	intents  int
	handler  DispatchHandler
	logger   *slog.Logger
	dialer   *websocket.Dialer
	fixedURL string

	// mu guards the session state mutated by the read loop and the
	// write path shared by the heartbeat goroutine.
	mu         sync.Mutex
	conn       *websocket.Conn
	sequence   int64
	sessionID  string
	resumeURL  string
	ackPending bool
}

// NewGateway creates a gateway session manager. Call Run to connect.
func NewGateway(config GatewayConfig) (*Gateway, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("discord: gateway Client is required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("discord: gateway Handler is required")
	}

	intents := config.Intents
	if intents == 0 {
		intents = IntentGuilds
	}
	logger := config.Logger
	if logger == nil {
		logger = config.Client.logger
	}
	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &Gateway{
		client:   config.Client,
		intents:  intents,
		handler:  config.Handler,
		logger:   logger,
		dialer:   dialer,
		fixedURL: config.GatewayURL,
	}, nil
}

// gatewayPayload is the envelope of every gateway frame.
type gatewayPayload struct {
	Op int             `json:"op"`
	T  string          `json:"t,omitempty"`
	S  int64           `json:"s,omitempty"`
	D  json.RawMessage `json:"d,omitempty"`
}

// errReconnect signals that the server asked for a reconnect (op 7 or
// a resumable close). The session state is kept so the next attempt
// resumes.
var errReconnect = errors.New("discord: gateway requested reconnect")

// Run connects to the gateway and services events until ctx is
// cancelled. Connection failures and server-requested reconnects are
// retried with a flat delay, resuming the session when possible.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		err := g.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errReconnect) {
			g.logger.Info("gateway reconnecting")
		} else {
			g.logger.Error("gateway session ended, reconnecting", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// runSession performs one full gateway session: dial, hello handshake,
// identify or resume, then the read loop until the connection drops.
func (g *Gateway) runSession(ctx context.Context) error {
	gatewayURL, err := g.connectURL(ctx)
	if err != nil {
		return err
	}

	conn, response, err := g.dialer.DialContext(ctx, gatewayURL, http.Header{})
	if err != nil {
		return fmt.Errorf("discord: gateway dial %s failed: %w", gatewayURL, err)
	}
	if response != nil && response.Body != nil {
		response.Body.Close()
	}
	defer conn.Close()

	g.mu.Lock()
	g.conn = conn
	g.ackPending = false
	g.mu.Unlock()

	// Force the blocking read loop to fail promptly on cancellation.
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		conn.Close()
	}()

	// The first frame must be HELLO with the heartbeat interval.
	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("discord: reading gateway hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("discord: expected hello opcode %d, got %d", opHello, hello.Op)
	}
	var helloData struct {
		HeartbeatInterval int `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(hello.D, &helloData); err != nil {
		return fmt.Errorf("discord: parsing gateway hello: %w", err)
	}
	interval := time.Duration(helloData.HeartbeatInterval) * time.Millisecond
	if interval <= 0 {
		return fmt.Errorf("discord: gateway hello carried heartbeat interval %v", interval)
	}

	if err := g.openSession(conn); err != nil {
		return err
	}

	heartbeatErr := make(chan error, 1)
	go g.heartbeatLoop(sessionCtx, conn, interval, heartbeatErr)

	readErr := make(chan error, 1)
	go func() { readErr <- g.readLoop(conn) }()

	select {
	case err := <-heartbeatErr:
		return err
	case err := <-readErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// connectURL returns the websocket URL for this attempt: the resume
// URL when a session can be resumed, otherwise the configured or
// discovered gateway URL.
func (g *Gateway) connectURL(ctx context.Context) (string, error) {
	g.mu.Lock()
	resumeURL := g.resumeURL
	g.mu.Unlock()
	if resumeURL != "" {
		return resumeURL + "/?v=10&encoding=json", nil
	}
	if g.fixedURL != "" {
		return g.fixedURL, nil
	}

	body, err := g.client.doRequest(ctx, http.MethodGet, "/gateway/bot", nil, "")
	if err != nil {
		return "", fmt.Errorf("discord: gateway URL discovery failed: %w", err)
	}
	var discovered struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &discovered); err != nil {
		return "", fmt.Errorf("discord: failed to parse gateway discovery response: %w", err)
	}
	if discovered.URL == "" {
		return "", fmt.Errorf("discord: gateway discovery returned no URL")
	}
	return discovered.URL + "/?v=10&encoding=json", nil
}

// openSession sends identify for fresh sessions or resume when a
// previous session's ID and sequence are known.
func (g *Gateway) openSession(conn *websocket.Conn) error {
	g.mu.Lock()
	sessionID := g.sessionID
	sequence := g.sequence
	g.mu.Unlock()

	if sessionID != "" {
		resume := gatewayPayload{Op: opResume}
		resume.D, _ = json.Marshal(map[string]any{
			"token":      g.client.token,
			"session_id": sessionID,
			"seq":        sequence,
		})
		if err := g.writeJSON(conn, resume); err != nil {
			return fmt.Errorf("discord: sending gateway resume: %w", err)
		}
		g.logger.Info("resuming gateway session", "sequence", sequence)
		return nil
	}

	identify := gatewayPayload{Op: opIdentify}
	identify.D, _ = json.Marshal(map[string]any{
		"token":   g.client.token,
		"intents": g.intents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "gatekeeper",
			"device":  "gatekeeper",
		},
	})
	if err := g.writeJSON(conn, identify); err != nil {
		return fmt.Errorf("discord: sending gateway identify: %w", err)
	}
	return nil
}

// heartbeatLoop sends op 1 frames at the server-provided interval,
// jittering the first beat per the gateway contract, and fails the
// session when a beat goes unacknowledged (zombie connection).
func (g *Gateway) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration, fail chan<- error) {
	first := time.Duration(rand.Int63n(int64(interval)))
	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		g.mu.Lock()
		pending := g.ackPending
		g.ackPending = true
		sequence := g.sequence
		g.mu.Unlock()

		if pending {
			fail <- fmt.Errorf("discord: gateway heartbeat unacknowledged after %v: %w", interval, errReconnect)
			return
		}

		beat := gatewayPayload{Op: opHeartbeat}
		beat.D, _ = json.Marshal(sequence)
		if err := g.writeJSON(conn, beat); err != nil {
			fail <- fmt.Errorf("discord: sending gateway heartbeat: %w", err)
			return
		}
		timer.Reset(interval)
	}
}

// readLoop consumes gateway frames until the connection fails or the
// server demands a new connection.
func (g *Gateway) readLoop(conn *websocket.Conn) error {
	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return fmt.Errorf("discord: gateway read: %w", err)
		}

		switch payload.Op {
		case opDispatch:
			g.handleDispatch(payload)

		case opHeartbeat:
			// Server-requested immediate beat.
			g.mu.Lock()
			sequence := g.sequence
			g.mu.Unlock()
			beat := gatewayPayload{Op: opHeartbeat}
			beat.D, _ = json.Marshal(sequence)
			if err := g.writeJSON(conn, beat); err != nil {
				return fmt.Errorf("discord: answering requested heartbeat: %w", err)
			}

		case opHeartbeatACK:
			g.mu.Lock()
			g.ackPending = false
			g.mu.Unlock()

		case opReconnect:
			return errReconnect

		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(payload.D, &resumable)
			if !resumable {
				g.mu.Lock()
				g.sessionID = ""
				g.resumeURL = ""
				g.sequence = 0
				g.mu.Unlock()
			}
			return fmt.Errorf("discord: gateway invalidated session (resumable=%t): %w", resumable, errReconnect)
		}
	}
}

// handleDispatch records the sequence, captures READY session state,
// and hands the event to the handler in its own goroutine.
func (g *Gateway) handleDispatch(payload gatewayPayload) {
	g.mu.Lock()
	if payload.S > g.sequence {
		g.sequence = payload.S
	}
	g.mu.Unlock()

	if payload.T == "READY" {
		var ready struct {
			SessionID        string `json:"session_id"`
			ResumeGatewayURL string `json:"resume_gateway_url"`
		}
		if err := json.Unmarshal(payload.D, &ready); err == nil {
			g.mu.Lock()
			g.sessionID = ready.SessionID
			g.resumeURL = ready.ResumeGatewayURL
			g.mu.Unlock()
		}
	}

	go g.handler(payload.T, payload.D)
}

// writeJSON serializes writes: the read loop and the heartbeat
// goroutine share the connection, and gorilla/websocket permits only
// one concurrent writer.
func (g *Gateway) writeJSON(conn *websocket.Conn, payload gatewayPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return conn.WriteJSON(payload)
}
