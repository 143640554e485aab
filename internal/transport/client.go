// Package transport implements the HTTP client for the remote coding-agent
// server: session CRUD, streamed prompt responses, and the shared push-event
// connection. Paths and credentials are configuration; the payload shapes the
// server emits are treated as best-effort input and normalized elsewhere.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// basicAuthUser is the fixed username paired with the configurable server
// password. An empty password means unauthenticated requests.
const basicAuthUser = "agent"

const (
	pathHealth   = "/health"
	pathSessions = "/sessions"
	pathEvents   = "/events"
)

// maxLineBytes bounds a single streamed response line (10 MB).
const maxLineBytes = 10 * 1024 * 1024

// StatusError reports a non-success HTTP status or a missing response body.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s: response has no body", e.Op)
	}
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.Code)
}

// Health describes the server's health endpoint response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Session is the remote session record.
type Session struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ContentPart is one piece of prompt content sent to the server.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type createSessionRequest struct {
	WorkDir string `json:"workdir,omitempty"`
}

type sendMessageRequest struct {
	Parts []ContentPart `json:"parts"`
}

// Client issues requests against one agent server.
type Client struct {
	baseURL  string
	password string
	httpc    *http.Client
	logger   *zap.Logger
	events   *eventStream
}

// NewClient creates a client for the server at baseURL. password may be
// empty. logger may be nil.
func NewClient(baseURL, password string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		password: password,
		httpc:    &http.Client{},
		logger:   logger,
	}
	c.events = newEventStream(c)
	return c
}

// newRequest builds a request with credentials applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.password != "" {
		req.SetBasicAuth(basicAuthUser, c.password)
	}
	return req, nil
}

// doJSON performs a request and decodes a JSON response into out (when out is
// non-nil). Non-2xx statuses become a *StatusError.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// CheckHealth verifies the server is reachable and healthy.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, "health", http.MethodGet, pathHealth, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateSession creates a new remote session. workDir is passed through to
// the session creation context.
func (c *Client) CreateSession(ctx context.Context, workDir string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, "create session", http.MethodPost, pathSessions, createSessionRequest{WorkDir: workDir}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions fetches all remote sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, "list sessions", http.MethodGet, pathSessions, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession fetches one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, "get session", http.MethodGet, pathSessions+"/"+id, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SendMessage posts a prompt to the session and streams the chunked response.
// onLine is invoked once per complete line in arrival order; a trailing
// partial line at stream end is flushed as a final call when non-empty. Lines
// are never reordered or merged.
func (c *Client) SendMessage(ctx context.Context, sessionID string, parts []ContentPart, onLine func(string)) error {
	const op = "send message"
	raw, err := json.Marshal(sendMessageRequest{Parts: parts})
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathSessions+"/"+sessionID+"/messages", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	if resp.Body == http.NoBody {
		return &StatusError{Op: op}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		onLine(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: reading stream: %w", op, err)
	}
	return nil
}

// AbortSession asks the server to abort the session's in-flight work.
// Idempotent: a 404 means the session already ended and is treated as
// success.
func (c *Client) AbortSession(ctx context.Context, sessionID string) error {
	err := c.doJSON(ctx, "abort session", http.MethodPost, pathSessions+"/"+sessionID+"/abort", nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	return err
}

// SubscribeEvents registers fn on the shared push-event connection, opening
// it lazily on the first subscriber. The returned function unsubscribes;
// the connection closes when the last subscriber leaves.
func (c *Client) SubscribeEvents(fn func(map[string]any)) func() {
	return c.events.subscribe(fn)
}

// Disconnect force-closes the push connection and clears all subscribers.
// Idempotent.
func (c *Client) Disconnect() {
	c.events.close()
}
