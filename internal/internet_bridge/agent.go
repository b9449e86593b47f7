package internet_bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the remote-access agent. The agent dials a public relay over
// websocket and replays incoming API requests against the local server, so
// the panel stays reachable without port forwarding.
type Config struct {
	PublicWS   string // ws://relay:port/agent
	LocalURL   string // host:port of the local API
	AgentID    string
	RetryDelay time.Duration
}

type requestMsg struct {
	Type   string          `json:"type"`
	ReqID  string          `json:"reqId"`
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Auth   string          `json:"auth,omitempty"`
	Body   json.RawMessage `json:"body"`
}

type responseMsg struct {
	Type   string      `json:"type"`
	ReqID  string      `json:"reqId"`
	Status int         `json:"status"`
	Body   interface{} `json:"body"`
}

// Run keeps the agent connected until the context is cancelled
func Run(ctx context.Context, cfg Config) {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	for {
		if err := connectAndServe(ctx, cfg); err != nil && ctx.Err() == nil {
			log.Printf("BRIDGE: Disconnected: %v, reconnecting in %s", err, cfg.RetryDelay)
		}
		select {
		case <-ctx.Done():
			log.Println("BRIDGE: Agent stopped")
			return
		case <-time.After(cfg.RetryDelay):
		}
	}
}

func connectAndServe(ctx context.Context, cfg Config) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.PublicWS, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer ws.Close()

	// close the socket when the context ends so ReadMessage unblocks
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	if err := ws.WriteJSON(map[string]interface{}{"type": "register", "id": cfg.AgentID}); err != nil {
		return fmt.Errorf("register agent: %w", err)
	}
	log.Printf("BRIDGE: Registered with relay as %s", cfg.AgentID)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return err
		}

		var req requestMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Printf("BRIDGE: Malformed relay message: %v", err)
			continue
		}
		if req.Type != "request" {
			continue
		}

		body, status := forwardRequest(ctx, cfg.LocalURL, req)
		if err := ws.WriteJSON(responseMsg{Type: "response", ReqID: req.ReqID, Status: status, Body: body}); err != nil {
			return err
		}
	}
}

func forwardRequest(ctx context.Context, base string, req requestMsg) (interface{}, int) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, "http://"+base+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return "invalid request", http.StatusBadRequest
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Auth != "" {
		httpReq.Header.Set("Authorization", req.Auth)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		log.Printf("BRIDGE: Local request %s %s failed: %v", req.Method, req.Path, err)
		return "local request failed", http.StatusBadGateway
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		parsed = string(raw)
	}
	return parsed, resp.StatusCode
}
