// Package adapter bridges the transport client and the event normalizer into
// one stable contract: start a remote session, send prompts, observe the
// canonical message stream, wait for completion, dispose.
package adapter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/vburojevic/agentlink/internal/domain"
	"github.com/vburojevic/agentlink/internal/normalize"
	"github.com/vburojevic/agentlink/internal/transport"
)

// DefaultTimeout is the response-completion timeout used when none is
// configured.
const DefaultTimeout = 120 * time.Second

var (
	// ErrTimeout is returned by WaitForCompletion when the deadline passes
	// before the pending response resolves. The remote operation is not
	// cancelled.
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrSendInFlight is returned by Send while a previous send's response
	// is still streaming. Exactly one response is tracked for completion;
	// overlapping sends are rejected instead of silently orphaning the
	// earlier one.
	ErrSendInFlight = errors.New("a prompt response is already in flight")

	// ErrSessionActive is returned by Start when the adapter already holds
	// a session handle.
	ErrSessionActive = errors.New("adapter already has an active session")

	// ErrDisposed is returned by Start and Send after Dispose.
	ErrDisposed = errors.New("adapter is disposed")
)

// TransportClient is the slice of the transport client the adapter drives.
type TransportClient interface {
	CreateSession(ctx context.Context, workDir string) (*transport.Session, error)
	SendMessage(ctx context.Context, sessionID string, parts []transport.ContentPart, onLine func(string)) error
	AbortSession(ctx context.Context, sessionID string) error
	SubscribeEvents(fn func(map[string]any)) func()
	Disconnect()
}

// Listener receives every emitted canonical message. Listeners are invoked
// synchronously in registration order.
type Listener func(domain.Message)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithClock sets the clock used for completion timeouts. Tests inject a mock.
func WithClock(c clock.Clock) Option {
	return func(a *Adapter) { a.clock = c }
}

// WithTimeout sets the default response-completion timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithWorkDir sets the working-directory hint passed to session creation.
func WithWorkDir(dir string) Option {
	return func(a *Adapter) { a.workDir = dir }
}

// WithNormalizer replaces the event normalizer, typically to inject a
// deterministic id generator in tests.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(a *Adapter) { a.norm = n }
}

type listenerEntry struct {
	id int
	fn Listener
}

// Adapter tracks one logical remote session and serializes in-flight
// response state. Methods are safe for concurrent use; message emission is
// synchronous over a snapshot of the listener set taken at emission start.
type Adapter struct {
	client  TransportClient
	norm    *normalize.Normalizer
	clock   clock.Clock
	logger  *zap.Logger
	workDir string
	timeout time.Duration

	mu          sync.Mutex
	sessionID   string
	pending     chan struct{}
	unsubscribe func()
	listeners   []listenerEntry
	nextID      int
	disposed    bool
}

// New creates an adapter over client.
func New(client TransportClient, opts ...Option) *Adapter {
	a := &Adapter{
		client:  client,
		norm:    normalize.New(),
		clock:   clock.New(),
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddListener registers fn for every emitted canonical message and returns
// a registration id for RemoveListener.
func (a *Adapter) AddListener(fn Listener) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.listeners = append(a.listeners, listenerEntry{id: a.nextID, fn: fn})
	return a.nextID
}

// RemoveListener deregisters a listener. Unknown ids are ignored.
func (a *Adapter) RemoveListener(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = lo.Reject(a.listeners, func(e listenerEntry, _ int) bool {
		return e.id == id
	})
}

// emit delivers msg to all listeners registered at emission start, in
// registration order.
func (a *Adapter) emit(msg domain.Message) {
	a.mu.Lock()
	fns := lo.Map(a.listeners, func(e listenerEntry, _ int) Listener { return e.fn })
	a.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// Start creates a remote session, subscribes to push events for it, and
// emits status(running). When initialPrompt is non-empty the prompt is sent
// immediately. Returns the session id.
func (a *Adapter) Start(ctx context.Context, initialPrompt string) (string, error) {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return "", ErrDisposed
	}
	if a.sessionID != "" {
		a.mu.Unlock()
		return "", ErrSessionActive
	}
	workDir := a.workDir
	a.mu.Unlock()

	sess, err := a.client.CreateSession(ctx, workDir)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.sessionID = sess.ID
	a.unsubscribe = a.client.SubscribeEvents(a.handlePushEvent)
	a.mu.Unlock()

	a.logger.Info("session started", zap.String("session_id", sess.ID))
	a.emit(domain.NewStatus(domain.StatusRunning, ""))

	if initialPrompt != "" {
		if err := a.Send(ctx, sess.ID, initialPrompt); err != nil {
			return sess.ID, err
		}
	}
	return sess.ID, nil
}

// Send posts prompt to the session and routes every streamed line through
// the normalizer to the listeners. It blocks until the streaming transfer
// finishes, then emits status(idle) and resolves the pending response.
// A second Send while a response is in flight fails with ErrSendInFlight.
func (a *Adapter) Send(ctx context.Context, sessionID, prompt string) error {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return ErrDisposed
	}
	if a.pending != nil {
		a.mu.Unlock()
		return ErrSendInFlight
	}
	pending := make(chan struct{})
	a.pending = pending
	a.mu.Unlock()

	a.emit(domain.NewStatus(domain.StatusRunning, ""))

	parts := []transport.ContentPart{{Type: "text", Text: prompt}}
	err := a.client.SendMessage(ctx, sessionID, parts, a.handleLine)
	if err != nil {
		a.logger.Warn("prompt stream failed", zap.Error(err))
	}

	a.emit(domain.NewStatus(domain.StatusIdle, ""))
	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()
	close(pending)
	return err
}

// Cancel asks the server to abort the session's in-flight work and settles
// the adapter to idle whether or not the server still knew the session.
// An in-flight stream keeps reading until the server closes it.
func (a *Adapter) Cancel(ctx context.Context, sessionID string) error {
	err := a.client.AbortSession(ctx, sessionID)
	a.emit(domain.NewStatus(domain.StatusIdle, ""))
	return err
}

// WaitForCompletion blocks until the pending response resolves, returning
// immediately when none is pending. After timeout it fails with ErrTimeout;
// the loser of the race is abandoned, not cancelled. A non-positive timeout
// selects the configured default.
func (a *Adapter) WaitForCompletion(timeout time.Duration) error {
	a.mu.Lock()
	pending := a.pending
	a.mu.Unlock()
	if pending == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = a.timeout
	}

	timer := a.clock.Timer(timeout)
	defer timer.Stop()
	select {
	case <-pending:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// RespondToPermission synthesizes a permission-response message locally.
// Notifying the remote server is the caller's side channel.
func (a *Adapter) RespondToPermission(requestID string, approved bool) {
	a.emit(domain.NewPermissionResponse(requestID, approved))
}

// Dispose unsubscribes from push events, disconnects the transport, emits a
// final status(stopped) and clears all listeners. Idempotent; the adapter is
// terminal afterwards.
func (a *Adapter) Dispose() {
	a.mu.Lock()
	alreadyDisposed := a.disposed
	a.disposed = true
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if !alreadyDisposed {
		if unsubscribe != nil {
			unsubscribe()
		}
		a.client.Disconnect()
		a.logger.Info("adapter disposed")
	}

	a.emit(domain.NewStatus(domain.StatusStopped, ""))

	a.mu.Lock()
	a.listeners = nil
	a.mu.Unlock()
}

// handleLine implements parse-or-passthrough for one streamed response line:
// JSON objects go through the normalizer, non-JSON non-blank lines pass
// through verbatim as model output, blank lines are dropped.
func (a *Adapter) handleLine(line string) {
	if isBlank(line) {
		return
	}
	rec, ok := decodeRecord(line)
	if !ok {
		a.emit(domain.NewModelOutput(line))
		return
	}
	if msg, ok := a.norm.Normalize(rec); ok {
		a.emit(msg)
	}
}

// handlePushEvent forwards push events for the current session through the
// normalizer. Events for other sessions are discarded before reaching
// listeners.
func (a *Adapter) handlePushEvent(rec map[string]any) {
	a.mu.Lock()
	current := a.sessionID
	a.mu.Unlock()

	if current == "" || eventSessionID(rec) != current {
		return
	}
	if msg, ok := a.norm.Normalize(rec); ok {
		a.emit(msg)
	}
}
