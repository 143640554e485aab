package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/agentlink/internal/output"
)

// outputErrorCommon reports a command failure in the active output format: a
// structured record on stdout for ndjson consumers, the text rendering of the
// same record on stderr otherwise. The returned error carries the bare
// message for kong's exit handling.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	switch {
	case globals == nil:
	case globals.Format == "ndjson":
		output.NewWriter(globals.Stdout).WriteError(code, message, hint...)
	default:
		fmt.Fprintln(globals.Stderr, output.FormatError(code, message, hint...))
	}
	return errors.New(message)
}
