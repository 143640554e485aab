package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/agentlink/internal/cli"
	"github.com/vburojevic/agentlink/internal/config"
)

const quickStart = `agentlink - drive a remote coding agent server from the command line

Quick start:
  agentlink health                      Check the server is reachable
  agentlink sessions                    List sessions on the server
  agentlink run "fix the failing test"  Start a session and stream the reply

For help:
  agentlink --help                      All commands and flags
  agentlink schema                      Machine-readable output docs (for AI agents)
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format": cfg.Format,
		"config_server": cfg.Server.URL,
	}

	ctx := kong.Parse(&c,
		kong.Name("agentlink"),
		kong.Description("agentlink: Drive a remote coding agent server over HTTP\n\nAI agents: run 'agentlink schema' for the machine-readable output contract"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
