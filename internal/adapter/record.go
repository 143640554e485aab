package adapter

import (
	"encoding/json"
	"strings"
)

// sessionIDAliases are the spellings under which push events carry their
// session identifier.
var sessionIDAliases = []string{"sessionId", "session_id", "sessionID"}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// decodeRecord parses line as a JSON object. Lines holding anything else
// (invalid JSON, arrays, bare scalars) report false and are handled as raw
// text by the caller.
func decodeRecord(line string) (map[string]any, bool) {
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, false
	}
	return rec, true
}

// eventSessionID extracts the session identifier from a push event, tolerant
// of spelling drift. Empty when absent.
func eventSessionID(rec map[string]any) string {
	for _, k := range sessionIDAliases {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
