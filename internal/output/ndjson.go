// Package output writes canonical messages as NDJSON so machine consumers
// always get one self-describing JSON object per line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/vburojevic/agentlink/internal/domain"
)

// SchemaVersion identifies the NDJSON record contract.
const SchemaVersion = 1

// Writer emits NDJSON records. Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) write(rec map[string]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(rec)
}

// WriteReady emits the stream preamble once a session is established.
func (w *Writer) WriteReady(sessionID, serverURL string) error {
	return w.write(map[string]any{
		"type":          "ready",
		"schemaVersion": SchemaVersion,
		"session_id":    sessionID,
		"server":        serverURL,
	})
}

// WriteMessage emits one canonical message. The record's type field carries
// the message kind; variant fields appear under their message names.
func (w *Writer) WriteMessage(sessionID string, msg domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	rec := map[string]any{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	delete(rec, "kind")
	rec["type"] = string(msg.Kind)
	rec["schemaVersion"] = SchemaVersion
	// approved carries meaning on every permission_response, including
	// denials, so it must survive the omitempty marshaling of false.
	if msg.Kind == domain.KindPermissionResponse {
		rec["approved"] = msg.Approved
	}
	if sessionID != "" {
		rec["session_id"] = sessionID
	}
	return w.write(rec)
}

// WriteHealth emits the server health record.
func (w *Writer) WriteHealth(status, version, serverURL string) error {
	rec := map[string]any{
		"type":          "health",
		"schemaVersion": SchemaVersion,
		"status":        status,
		"server":        serverURL,
	}
	if version != "" {
		rec["version"] = version
	}
	return w.write(rec)
}

// WriteSession emits one remote session record.
func (w *Writer) WriteSession(id, title, createdAt, updatedAt string) error {
	rec := map[string]any{
		"type":          "session",
		"schemaVersion": SchemaVersion,
		"id":            id,
	}
	if title != "" {
		rec["title"] = title
	}
	if createdAt != "" {
		rec["createdAt"] = createdAt
	}
	if updatedAt != "" {
		rec["updatedAt"] = updatedAt
	}
	return w.write(rec)
}

// WriteError emits a machine-readable failure record.
func (w *Writer) WriteError(code, message string, hint ...string) error {
	rec := map[string]any{
		"type":          "error",
		"schemaVersion": SchemaVersion,
		"code":          code,
		"message":       message,
	}
	if len(hint) > 0 && hint[0] != "" {
		rec["hint"] = hint[0]
	}
	return w.write(rec)
}

// FormatError renders the text-mode counterpart of a WriteError record as a
// single diagnostic line. Both renderings carry the same code/message/hint.
func FormatError(code, message string, hint ...string) string {
	line := fmt.Sprintf("Error [%s]: %s", code, message)
	if len(hint) > 0 && hint[0] != "" {
		line += fmt.Sprintf(" (hint: %s)", hint[0])
	}
	return line
}
