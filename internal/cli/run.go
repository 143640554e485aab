package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"

	"github.com/vburojevic/agentlink/internal/adapter"
	"github.com/vburojevic/agentlink/internal/domain"
	"github.com/vburojevic/agentlink/internal/output"
	"github.com/vburojevic/agentlink/internal/sink"
)

// RunCmd starts a session on the agent server, sends one prompt, and
// streams the normalized reply to stdout.
type RunCmd struct {
	Prompt  string   `arg:"" help:"Prompt text to send to the agent"`
	Workdir string   `short:"w" help:"Working directory hint for the new session"`
	Timeout string   `help:"Response-completion timeout (e.g. 90s); default comes from config"`
	Only    []string `help:"Limit output to these message kinds (can be repeated)"`
}

// Run executes the run command.
func (c *RunCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timeout := time.Duration(globals.Config.TimeoutMS) * time.Millisecond
	if c.Timeout != "" {
		parsed, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return outputErrorCommon(globals, "INVALID_TIMEOUT", fmt.Sprintf("invalid timeout duration: %s", err))
		}
		timeout = parsed
	}

	keep, err := kindFilter(c.Only)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_KIND", err.Error())
	}

	workdir := c.Workdir
	if workdir == "" {
		workdir = globals.Config.Server.WorkDir
	}

	client := globals.newClient()
	a := adapter.New(client,
		adapter.WithLogger(globals.Logger()),
		adapter.WithWorkDir(workdir),
		adapter.WithTimeout(timeout),
	)
	defer a.Dispose()

	ndjson := globals.Format == "ndjson"
	writer := output.NewWriter(globals.Stdout)
	buf := sink.New(globals.Config.BufferSize)

	sessionID, err := a.Start(ctx, "")
	if err != nil {
		return outputErrorCommon(globals, "SESSION_START_FAILED", err.Error(),
			fmt.Sprintf("is the agent server running at %s?", globals.Server))
	}
	globals.Debug("session %s started", sessionID)

	// Ready goes out before the listener attaches so machine consumers
	// always see it as the first record.
	if ndjson {
		writer.WriteReady(sessionID, globals.Server)
	}
	a.AddListener(func(msg domain.Message) {
		if !keep(msg) {
			return
		}
		buf.Append(msg)
		if ndjson {
			writer.WriteMessage(sessionID, msg)
		}
	})

	// Interrupt aborts the in-flight response instead of killing the
	// process outright; a second interrupt tears everything down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		a.Cancel(ctx, sessionID)
		<-sigCh
		cancel()
	}()

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- a.Send(ctx, sessionID, c.Prompt)
	}()

	select {
	case err = <-sendErr:
	case <-time.After(timeout):
		a.Cancel(ctx, sessionID)
		return outputErrorCommon(globals, "TIMEOUT",
			fmt.Sprintf("no completion within %s", timeout),
			"increase --timeout or check the agent server")
	case <-ctx.Done():
		return outputErrorCommon(globals, "INTERRUPTED", "aborted by signal")
	}
	if err != nil {
		return outputErrorCommon(globals, "SEND_FAILED", err.Error())
	}

	if !ndjson {
		for _, line := range buf.Lines() {
			fmt.Fprintln(globals.Stdout, line)
		}
	}
	return nil
}

// kindFilter builds a message predicate from --only values. Kinds are
// matched after folding case and hyphens so "tool-call" selects tool_call.
func kindFilter(only []string) (func(domain.Message) bool, error) {
	if len(only) == 0 {
		return func(domain.Message) bool { return true }, nil
	}
	known := []string{
		string(domain.KindStatus),
		string(domain.KindModelOutput),
		string(domain.KindToolCall),
		string(domain.KindToolResult),
		string(domain.KindPermissionRequest),
		string(domain.KindPermissionResponse),
		string(domain.KindFSEdit),
		string(domain.KindTerminalOutput),
	}
	kinds := lo.Map(only, func(s string, _ int) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	})
	for _, k := range kinds {
		if !lo.Contains(known, k) {
			return nil, fmt.Errorf("unknown message kind %q (valid: %s)", k, strings.Join(known, ", "))
		}
	}
	return func(msg domain.Message) bool {
		return lo.Contains(kinds, string(msg.Kind))
	}, nil
}
