// Package sink accumulates canonical messages into a bounded display log.
// It is the reference implementation of the listener contract the display
// layer consumes: a list of already-formatted display strings.
package sink

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/vburojevic/agentlink/internal/domain"
)

// DefaultCapacity bounds the display log when no capacity is configured.
const DefaultCapacity = 1000

// Buffer is a bounded append/coalesce log of display lines. Consecutive
// model output fragments coalesce into one growing line; any other message
// closes the open line. Oldest entries are evicted at capacity.
type Buffer struct {
	mu        sync.Mutex
	max       int
	lines     []string
	streaming bool // last line is an open model-output fragment
}

// New creates a buffer holding at most capacity lines. Non-positive
// capacity selects DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{max: capacity}
}

// Append records one canonical message. It satisfies the adapter's listener
// signature.
func (b *Buffer) Append(msg domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Kind == domain.KindModelOutput {
		if b.streaming && len(b.lines) > 0 {
			b.lines[len(b.lines)-1] += msg.TextDelta
			return
		}
		b.push(msg.TextDelta)
		b.streaming = true
		return
	}

	b.streaming = false
	b.push(Format(msg))
}

// Lines returns a copy of the current display log, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Len reports the number of display lines currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Reset clears the log.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	b.streaming = false
}

// push appends one line, evicting the oldest when over capacity.
func (b *Buffer) push(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = append(b.lines[:0:0], b.lines[len(b.lines)-b.max:]...)
	}
}

// Format renders one canonical message as a display line.
func Format(msg domain.Message) string {
	switch msg.Kind {
	case domain.KindStatus:
		if msg.Detail != "" {
			return fmt.Sprintf("status: %s (%s)", msg.Status, msg.Detail)
		}
		return fmt.Sprintf("status: %s", msg.Status)
	case domain.KindModelOutput:
		return msg.TextDelta
	case domain.KindToolCall:
		if len(msg.Args) > 0 {
			return fmt.Sprintf("tool: %s %s", msg.ToolName, compactJSON(msg.Args))
		}
		return fmt.Sprintf("tool: %s", msg.ToolName)
	case domain.KindToolResult:
		return fmt.Sprintf("tool result: %s: %s", msg.ToolName, firstLine(msg.Result))
	case domain.KindPermissionRequest:
		return fmt.Sprintf("permission requested: %s", msg.Reason)
	case domain.KindPermissionResponse:
		return fmt.Sprintf("permission %s: %s", msg.RequestID, lo.Ternary(msg.Approved, "approved", "denied"))
	case domain.KindFSEdit:
		if msg.Path != "" {
			return fmt.Sprintf("edit: %s (%s)", msg.Description, msg.Path)
		}
		return fmt.Sprintf("edit: %s", msg.Description)
	case domain.KindTerminalOutput:
		return firstLine(msg.Data)
	}
	return ""
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

// firstLine truncates multi-line text to its first line for display.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
