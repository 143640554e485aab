package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/vburojevic/agentlink/internal/config"
	"github.com/vburojevic/agentlink/internal/transport"
)

// CLI is the root command tree parsed by kong.
type CLI struct {
	Format   string `help:"Output format: text, ndjson, or auto (detect terminal)" enum:"text,ndjson,auto" default:"${config_format}"`
	Server   string `help:"Agent server base URL" default:"${config_server}"`
	Password string `help:"Agent server password (basic auth)" env:"AGENTLINK_SERVER_PASSWORD"`
	Verbose  bool   `short:"v" help:"Enable verbose debug logging to stderr"`

	Health   HealthCmd   `cmd:"" help:"Check that the agent server is reachable"`
	Sessions SessionsCmd `cmd:"" help:"List sessions on the agent server"`
	Run      RunCmd      `cmd:"" help:"Start a session, send a prompt, and stream the reply"`
	Schema   SchemaCmd   `cmd:"" help:"Print JSON Schema for the NDJSON output types"`
}

// Globals carries resolved settings shared by all commands.
type Globals struct {
	Format   string
	Server   string
	Password string
	Verbose  bool
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *config.Config

	logger *zap.Logger
}

// NewGlobalsWithConfig merges parsed flags with config fallbacks.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:   c.Format,
		Server:   c.Server,
		Password: c.Password,
		Verbose:  c.Verbose,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Config:   cfg,
	}
	if g.Server == "" {
		g.Server = cfg.Server.URL
	}
	if g.Password == "" {
		g.Password = cfg.Server.Password
	}
	if g.Format == "" || g.Format == "auto" {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			g.Format = "text"
		} else {
			g.Format = "ndjson"
		}
	}
	return g
}

// Logger returns the shared zap logger, building it on first use.
// Without --verbose it is a no-op so command output stays clean.
func (g *Globals) Logger() *zap.Logger {
	if g.logger == nil {
		g.logger = newCommandLogger(g)
	}
	return g.logger
}

// Debug logs a formatted debug line when verbose logging is on.
func (g *Globals) Debug(format string, args ...interface{}) {
	g.Logger().Sugar().Debugf(format, args...)
}

// newClient builds a transport client from the resolved globals.
func (g *Globals) newClient() *transport.Client {
	return transport.NewClient(g.Server, g.Password, g.Logger())
}
