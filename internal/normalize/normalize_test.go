package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/agentlink/internal/domain"
)

// fixedID returns a Normalizer whose generated ids are predictable.
func fixedID(prefix string) *Normalizer {
	n := 0
	return &Normalizer{NewID: func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}}
}

func TestNormalizeSpellingVariantsAreEquivalent(t *testing.T) {
	tests := []struct {
		name     string
		variants []string
		kind     domain.Kind
	}{
		{"tool call", []string{"tool_call", "tool-call", "Tool_Call"}, domain.KindToolCall},
		{"tool result", []string{"tool_result", "tool-result"}, domain.KindToolResult},
		{"file edit", []string{"file_edit", "fs-edit", "fs_edit"}, domain.KindFSEdit},
		{"terminal", []string{"terminal", "terminal-output", "terminal_output"}, domain.KindTerminalOutput},
		{"permission", []string{"permission_request", "permission-request"}, domain.KindPermissionRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, spelling := range tt.variants {
				msg, ok := New().Normalize(map[string]any{"type": spelling})
				require.True(t, ok, "spelling %q should be recognized", spelling)
				assert.Equal(t, tt.kind, msg.Kind, "spelling %q", spelling)
			}
		})
	}
}

func TestNormalizeModelOutputAliases(t *testing.T) {
	n := New()

	msg, ok := n.Normalize(map[string]any{"type": "text", "content": "Hi"})
	require.True(t, ok)
	assert.Equal(t, domain.KindModelOutput, msg.Kind)
	assert.Equal(t, "Hi", msg.TextDelta)

	// content wins over text, text wins over delta
	msg, _ = n.Normalize(map[string]any{"type": "token", "content": "a", "text": "b", "delta": "c"})
	assert.Equal(t, "a", msg.TextDelta)

	msg, _ = n.Normalize(map[string]any{"type": "token", "text": "b", "delta": "c"})
	assert.Equal(t, "b", msg.TextDelta)

	msg, _ = n.Normalize(map[string]any{"type": "token", "delta": "c"})
	assert.Equal(t, "c", msg.TextDelta)

	// an empty alias value is treated like an absent key and falls
	// through to the next alias
	msg, _ = n.Normalize(map[string]any{"type": "text", "content": "", "text": "b"})
	assert.Equal(t, "b", msg.TextDelta)
}

func TestNormalizeToolCallDefaults(t *testing.T) {
	msg, ok := fixedID("gen").Normalize(map[string]any{"type": "tool_call"})
	require.True(t, ok)
	assert.Equal(t, "unknown", msg.ToolName)
	assert.NotNil(t, msg.Args)
	assert.Empty(t, msg.Args)
	assert.Equal(t, "gen-1", msg.CallID)
}

func TestNormalizeToolCallFreshIDsAreUnique(t *testing.T) {
	n := New()
	rec := map[string]any{"type": "tool_call", "name": "bash"}

	first, ok := n.Normalize(rec)
	require.True(t, ok)
	second, ok := n.Normalize(rec)
	require.True(t, ok)

	assert.NotEmpty(t, first.CallID)
	assert.NotEmpty(t, second.CallID)
	assert.NotEqual(t, first.CallID, second.CallID)
}

func TestNormalizeToolCallAliases(t *testing.T) {
	msg, ok := New().Normalize(map[string]any{
		"type":      "tool-call",
		"toolName":  "write",
		"arguments": map[string]any{"path": "main.go"},
		"callId":    "call-7",
	})
	require.True(t, ok)
	assert.Equal(t, "write", msg.ToolName)
	assert.Equal(t, map[string]any{"path": "main.go"}, msg.Args)
	assert.Equal(t, "call-7", msg.CallID)
}

func TestNormalizeToolResult(t *testing.T) {
	n := New()

	msg, ok := n.Normalize(map[string]any{"type": "tool_result", "name": "bash", "output": "ok", "id": "call-1"})
	require.True(t, ok)
	assert.Equal(t, domain.KindToolResult, msg.Kind)
	assert.Equal(t, "bash", msg.ToolName)
	assert.Equal(t, "ok", msg.Result)
	assert.Equal(t, "call-1", msg.CallID)

	// missing correlation id is tolerated, not an error
	msg, ok = n.Normalize(map[string]any{"type": "tool_result", "result": "done"})
	require.True(t, ok)
	assert.Equal(t, "", msg.CallID)
	assert.Equal(t, "done", msg.Result)

	// structured results survive as compact JSON
	msg, _ = n.Normalize(map[string]any{"type": "tool_result", "result": map[string]any{"exit": float64(0)}})
	assert.Equal(t, `{"exit":0}`, msg.Result)
}

func TestNormalizeFSEdit(t *testing.T) {
	msg, ok := New().Normalize(map[string]any{
		"type":    "file_edit",
		"summary": "rename helper",
		"diff":    "-old\n+new",
		"path":    "util.go",
	})
	require.True(t, ok)
	assert.Equal(t, "rename helper", msg.Description)
	assert.Equal(t, "-old\n+new", msg.Diff)
	assert.Equal(t, "util.go", msg.Path)
}

func TestNormalizeTerminalOutput(t *testing.T) {
	msg, ok := New().Normalize(map[string]any{"type": "terminal", "output": "$ ls\n"})
	require.True(t, ok)
	assert.Equal(t, "$ ls\n", msg.Data)

	msg, _ = New().Normalize(map[string]any{"type": "terminal-output"})
	assert.Equal(t, "", msg.Data)
}

func TestNormalizePermissionRequest(t *testing.T) {
	rec := map[string]any{"type": "permission_request", "message": "allow rm?"}
	msg, ok := fixedID("perm").Normalize(rec)
	require.True(t, ok)
	assert.Equal(t, "perm-1", msg.RequestID)
	assert.Equal(t, "allow rm?", msg.Reason)
	// payload defaults to the whole record
	assert.Equal(t, rec, msg.Payload)

	msg, _ = New().Normalize(map[string]any{
		"type":    "permission-request",
		"id":      "req-9",
		"reason":  "network access",
		"payload": map[string]any{"host": "example.com"},
	})
	assert.Equal(t, "req-9", msg.RequestID)
	assert.Equal(t, "network access", msg.Reason)
	assert.Equal(t, map[string]any{"host": "example.com"}, msg.Payload)
}

func TestNormalizeError(t *testing.T) {
	msg, ok := New().Normalize(map[string]any{"type": "error", "message": "boom"})
	require.True(t, ok)
	assert.Equal(t, domain.KindStatus, msg.Kind)
	assert.Equal(t, domain.StatusError, msg.Status)
	assert.Equal(t, "boom", msg.Detail)

	msg, _ = New().Normalize(map[string]any{"type": "error"})
	assert.Equal(t, "Unknown error", msg.Detail)
}

func TestNormalizeDone(t *testing.T) {
	for _, spelling := range []string{"done", "complete", "finished"} {
		msg, ok := New().Normalize(map[string]any{"type": spelling})
		require.True(t, ok, spelling)
		assert.Equal(t, domain.StatusIdle, msg.Status, spelling)
	}
}

func TestNormalizeUnknownType(t *testing.T) {
	n := New()

	// free text is coerced to model output
	msg, ok := n.Normalize(map[string]any{"type": "mystery", "text": "hello"})
	require.True(t, ok)
	assert.Equal(t, domain.KindModelOutput, msg.Kind)
	assert.Equal(t, "hello", msg.TextDelta)

	// nothing usable is dropped, never surfaced as an unrecognized shape
	_, ok = n.Normalize(map[string]any{"type": "mystery", "weight": 12})
	assert.False(t, ok)

	_, ok = n.Normalize(nil)
	assert.False(t, ok)
}
