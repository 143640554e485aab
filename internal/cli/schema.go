package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaCmd outputs JSON Schema for agentlink NDJSON output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (ready,message,health,session,error). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"ready":   readySchema(),
		"message": messageSchema(),
		"health":  healthSchema(),
		"session": sessionSchema(),
		"error":   errorSchema(),
	}

	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = []string{"ready", "message", "health", "session", "error"}
	}

	out := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "agentlink Output Schemas",
		"description": "JSON Schema definitions for all agentlink NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := out["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		schema, ok := schemas[t]
		if !ok {
			return fmt.Errorf("unknown schema type %q", t)
		}
		defs[t] = schema
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func readySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Stream Ready",
		"description": "Emitted once after a session is established, before any messages",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "ready",
			},
			"schemaVersion": map[string]interface{}{
				"type":        "integer",
				"description": "NDJSON record contract version",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier of the established session",
			},
			"server": map[string]interface{}{
				"type":        "string",
				"description": "Base URL of the agent server",
			},
		},
		"required": []string{"type", "schemaVersion", "session_id", "server"},
	}
}

func messageSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Agent Message",
		"description": "One normalized message from the agent; type carries the message kind",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{
					"status", "model_output", "tool_call", "tool_result",
					"permission_request", "permission_response", "fs_edit", "terminal_output",
				},
				"description": "Message kind",
			},
			"schemaVersion": map[string]interface{}{
				"type":        "integer",
				"description": "NDJSON record contract version",
			},
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session the message belongs to",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"idle", "running", "error", "stopped"},
				"description": "Agent lifecycle state (status messages only)",
			},
			"text_delta": map[string]interface{}{
				"type":        "string",
				"description": "Incremental model text (model_output messages only)",
			},
			"tool_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the invoked tool (tool_call messages only)",
			},
			"call_id": map[string]interface{}{
				"type":        "string",
				"description": "Correlates a tool_result with its tool_call",
			},
		},
		"required": []string{"type", "schemaVersion"},
	}
}

func healthSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Server Health",
		"description": "Result of probing the agent server health endpoint",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "health",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"description": "Health status reported by the server",
			},
			"version": map[string]interface{}{
				"type":        "string",
				"description": "Server version, when reported",
			},
			"server": map[string]interface{}{
				"type":        "string",
				"description": "Base URL that was probed",
			},
		},
		"required": []string{"type", "status", "server"},
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Remote Session",
		"description": "One session known to the agent server",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "session",
			},
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Session identifier",
			},
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable session title",
			},
			"createdAt": map[string]interface{}{
				"type":        "string",
				"description": "Creation timestamp as reported by the server",
			},
		},
		"required": []string{"type", "id"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Machine-readable failure record",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type":  "string",
				"const": "error",
			},
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Stable error code (e.g. SERVER_UNREACHABLE, TIMEOUT)",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error message",
			},
			"hint": map[string]interface{}{
				"type":        "string",
				"description": "Optional suggestion for resolving the error",
			},
		},
		"required": []string{"type", "code", "message"},
	}
}
