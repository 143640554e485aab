package domain

// Kind identifies one canonical message variant. The set is closed: the
// normalizer never emits a kind outside this list.
type Kind string

const (
	KindStatus             Kind = "status"
	KindModelOutput        Kind = "model_output"
	KindToolCall           Kind = "tool_call"
	KindToolResult         Kind = "tool_result"
	KindPermissionRequest  Kind = "permission_request"
	KindPermissionResponse Kind = "permission_response"
	KindFSEdit             Kind = "fs_edit"
	KindTerminalOutput     Kind = "terminal_output"
)

// Status values carried by status messages. Error is transient: the adapter
// stays usable after emitting it.
type Status string

const (
	StatusRunning Status = "running"
	StatusIdle    Status = "idle"
	StatusError   Status = "error"
	StatusStopped Status = "stopped"
)

// Message is one normalized unit of adapter output. Only the fields of the
// variant named by Kind are populated.
type Message struct {
	Kind Kind `json:"kind"`

	// status
	Status Status `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`

	// model_output: an incremental fragment of generated text,
	// order-preserving and append-only per response.
	TextDelta string `json:"text_delta,omitempty"`

	// tool_call / tool_result. CallID on a tool_result matches a prior
	// tool_call when the source event supplied one; empty otherwise.
	ToolName string         `json:"tool_name,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	CallID   string         `json:"call_id,omitempty"`
	Result   string         `json:"result,omitempty"`

	// permission_request / permission_response
	RequestID string         `json:"request_id,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Approved  bool           `json:"approved,omitempty"`

	// fs_edit
	Description string `json:"description,omitempty"`
	Diff        string `json:"diff,omitempty"`
	Path        string `json:"path,omitempty"`

	// terminal_output
	Data string `json:"data,omitempty"`
}

// NewStatus creates a status message. Detail is optional context, typically
// an error description for StatusError.
func NewStatus(status Status, detail string) Message {
	return Message{Kind: KindStatus, Status: status, Detail: detail}
}

// NewModelOutput creates an incremental text fragment message.
func NewModelOutput(delta string) Message {
	return Message{Kind: KindModelOutput, TextDelta: delta}
}

// NewToolCall creates a tool invocation message.
func NewToolCall(name string, args map[string]any, callID string) Message {
	return Message{Kind: KindToolCall, ToolName: name, Args: args, CallID: callID}
}

// NewToolResult creates a tool completion message.
func NewToolResult(name, result, callID string) Message {
	return Message{Kind: KindToolResult, ToolName: name, Result: result, CallID: callID}
}

// NewPermissionRequest creates a remote permission prompt message.
func NewPermissionRequest(requestID, reason string, payload map[string]any) Message {
	return Message{Kind: KindPermissionRequest, RequestID: requestID, Reason: reason, Payload: payload}
}

// NewPermissionResponse creates a locally synthesized permission answer.
// It is never received from the remote side.
func NewPermissionResponse(requestID string, approved bool) Message {
	return Message{Kind: KindPermissionResponse, RequestID: requestID, Approved: approved}
}

// NewFSEdit creates a file modification message. Diff and path are optional.
func NewFSEdit(description, diff, path string) Message {
	return Message{Kind: KindFSEdit, Description: description, Diff: diff, Path: path}
}

// NewTerminalOutput creates a terminal output message.
func NewTerminalOutput(data string) Message {
	return Message{Kind: KindTerminalOutput, Data: data}
}
