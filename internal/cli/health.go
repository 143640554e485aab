package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/vburojevic/agentlink/internal/output"
)

// HealthCmd probes the agent server health endpoint.
type HealthCmd struct {
	Timeout string `default:"10s" help:"How long to wait for the server to answer"`
}

// Run executes the health command.
func (c *HealthCmd) Run(globals *Globals) error {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_TIMEOUT", fmt.Sprintf("invalid timeout duration: %s", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := globals.newClient()
	health, err := client.CheckHealth(ctx)
	if err != nil {
		return outputErrorCommon(globals, "SERVER_UNREACHABLE", err.Error(),
			fmt.Sprintf("is the agent server running at %s?", globals.Server))
	}

	if globals.Format == "ndjson" {
		return output.NewWriter(globals.Stdout).WriteHealth(health.Status, health.Version, globals.Server)
	}

	if health.Version != "" {
		fmt.Fprintf(globals.Stdout, "Server %s is %s (version %s)\n", globals.Server, health.Status, health.Version)
	} else {
		fmt.Fprintf(globals.Stdout, "Server %s is %s\n", globals.Server, health.Status)
	}
	return nil
}
