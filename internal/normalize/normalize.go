// Package normalize maps loosely-typed remote event records onto the
// canonical message vocabulary. The remote server's event shapes are not
// stable across versions, so each variant is built through a field-alias
// table instead of strict decoding.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vburojevic/agentlink/internal/domain"
)

// Normalizer converts raw event records into canonical messages. NewID
// produces process-unique fallback correlation ids; it is injectable so
// tests can make id generation deterministic.
type Normalizer struct {
	NewID func() string
}

// New creates a Normalizer backed by UUID generation.
func New() *Normalizer {
	return &Normalizer{NewID: uuid.NewString}
}

// builder constructs one canonical variant from a raw record.
type builder func(n *Normalizer, rec map[string]any) domain.Message

// builders is the dispatch table from canonical discriminator spelling to
// variant builder. Kept as static data so the alias policy stays auditable
// separately from transport code.
var builders = map[string]builder{
	"text":    buildModelOutput,
	"token":   buildModelOutput,
	"content": buildModelOutput,

	"tool_call":   buildToolCall,
	"tool_result": buildToolResult,

	"file_edit": buildFSEdit,
	"fs_edit":   buildFSEdit,

	"terminal":        buildTerminalOutput,
	"terminal_output": buildTerminalOutput,

	"permission_request": buildPermissionRequest,

	"error": buildError,

	"done":     buildDone,
	"complete": buildDone,
	"finished": buildDone,
}

// Normalize maps a record onto exactly one canonical message. The second
// return value is false when the record carries nothing usable and must be
// dropped. Records without a recognized discriminator are coerced to
// model_output when they carry free text.
func (n *Normalizer) Normalize(rec map[string]any) (domain.Message, bool) {
	if rec == nil {
		return domain.Message{}, false
	}
	if b, ok := builders[canonicalType(stringField(rec, "type"))]; ok {
		return b(n, rec), true
	}
	if text := firstString(rec, "text", "content"); text != "" {
		return domain.NewModelOutput(text), true
	}
	return domain.Message{}, false
}

// canonicalType folds case and underscore/hyphen spelling variants so
// "tool-call", "tool_call" and "Tool_Call" all dispatch identically.
func canonicalType(t string) string {
	return strings.ReplaceAll(strings.ToLower(t), "-", "_")
}

func buildModelOutput(_ *Normalizer, rec map[string]any) domain.Message {
	return domain.NewModelOutput(firstString(rec, "content", "text", "delta"))
}

func buildToolCall(n *Normalizer, rec map[string]any) domain.Message {
	name := firstString(rec, "name", "toolName")
	if name == "" {
		name = "unknown"
	}
	args := firstMap(rec, "arguments", "args")
	if args == nil {
		args = map[string]any{}
	}
	callID := firstString(rec, "id", "callId")
	if callID == "" {
		callID = n.NewID()
	}
	return domain.NewToolCall(name, args, callID)
}

func buildToolResult(_ *Normalizer, rec map[string]any) domain.Message {
	name := firstString(rec, "name", "toolName")
	if name == "" {
		name = "unknown"
	}
	return domain.NewToolResult(name, firstText(rec, "result", "output"), firstString(rec, "id", "callId"))
}

func buildFSEdit(_ *Normalizer, rec map[string]any) domain.Message {
	return domain.NewFSEdit(
		firstString(rec, "description", "summary"),
		stringField(rec, "diff"),
		stringField(rec, "path"),
	)
}

func buildTerminalOutput(_ *Normalizer, rec map[string]any) domain.Message {
	return domain.NewTerminalOutput(firstString(rec, "output", "data"))
}

func buildPermissionRequest(n *Normalizer, rec map[string]any) domain.Message {
	id := stringField(rec, "id")
	if id == "" {
		id = n.NewID()
	}
	payload := firstMap(rec, "payload")
	if payload == nil {
		payload = rec
	}
	return domain.NewPermissionRequest(id, firstString(rec, "reason", "message"), payload)
}

func buildError(_ *Normalizer, rec map[string]any) domain.Message {
	detail := firstString(rec, "message", "error")
	if detail == "" {
		detail = "Unknown error"
	}
	return domain.NewStatus(domain.StatusError, detail)
}

func buildDone(_ *Normalizer, _ map[string]any) domain.Message {
	return domain.NewStatus(domain.StatusIdle, "")
}

// stringField returns rec[key] when it is a string, else "".
func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}

// firstString returns the first alias key holding a non-empty string. An
// empty string is treated like an absent key so it falls through to later
// aliases and ultimately to each variant's default, keeping "present but
// empty" and "missing" indistinguishable across server versions.
func firstString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(rec, k); s != "" {
			return s
		}
	}
	return ""
}

// firstMap returns the first alias key holding an object.
func firstMap(rec map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m, ok := rec[k].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// firstText returns the first alias key holding any value, stringified.
// Structured values are rendered as compact JSON so nothing is lost.
func firstText(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr {
			return s
		}
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprint(v)
	}
	return ""
}
