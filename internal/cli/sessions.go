package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/agentlink/internal/output"
)

// SessionsCmd lists the sessions known to the agent server.
type SessionsCmd struct {
	Timeout string `default:"10s" help:"How long to wait for the server to answer"`
}

// Run executes the sessions command.
func (c *SessionsCmd) Run(globals *Globals) error {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_TIMEOUT", fmt.Sprintf("invalid timeout duration: %s", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := globals.newClient()
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return outputErrorCommon(globals, "SERVER_UNREACHABLE", err.Error(),
			fmt.Sprintf("is the agent server running at %s?", globals.Server))
	}

	if globals.Format == "ndjson" {
		w := output.NewWriter(globals.Stdout)
		for _, s := range sessions {
			if err := w.WriteSession(s.ID, s.Title, s.CreatedAt, s.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	}

	if len(sessions) == 0 {
		fmt.Fprintln(globals.Stdout, "No sessions found")
		return nil
	}

	table := tablewriter.NewTable(globals.Stdout)
	table.Header("ID", "Title", "Created")
	for _, s := range sessions {
		if err := table.Append([]string{s.ID, s.Title, s.CreatedAt}); err != nil {
			return err
		}
	}
	return table.Render()
}
