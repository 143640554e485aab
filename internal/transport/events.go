package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// eventStream owns the single shared push-event connection. It is reference
// counted by subscriber: the connection opens lazily on the first subscriber
// and closes when the last one leaves. Reconnection on transient failure is
// the push mechanism's responsibility, not ours.
type eventStream struct {
	client *Client

	mu     sync.Mutex
	subs   map[int]func(map[string]any)
	nextID int
	cancel context.CancelFunc
}

func newEventStream(c *Client) *eventStream {
	return &eventStream{client: c, subs: make(map[int]func(map[string]any))}
}

// subscribe registers fn for every decoded push event and returns an
// unsubscribe function. Unsubscribing twice is harmless.
func (s *eventStream) subscribe(fn func(map[string]any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	if s.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		go s.read(ctx)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		if len(s.subs) == 0 && s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
}

// close tears the connection down and clears all subscribers. Idempotent.
func (s *eventStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.subs = make(map[int]func(map[string]any))
}

// read consumes the push connection until ctx is cancelled or the server
// closes it. Each line is one JSON object; malformed payloads are dropped
// silently.
func (s *eventStream) read(ctx context.Context) {
	req, err := s.client.newRequest(ctx, http.MethodGet, pathEvents, nil)
	if err != nil {
		s.client.logger.Warn("building event request failed", zap.Error(err))
		return
	}
	resp, err := s.client.httpc.Do(req)
	if err != nil {
		s.client.logger.Warn("event connection failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.client.logger.Warn("event connection rejected", zap.Int("status", resp.StatusCode))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			s.client.logger.Debug("dropping malformed push event", zap.Error(err))
			continue
		}
		for _, fn := range s.snapshot() {
			fn(rec)
		}
	}
}

// snapshot copies the current subscriber set so fanout runs without holding
// the lock.
func (s *eventStream) snapshot() []func(map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]func(map[string]any), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
