package cli

import "go.uber.org/zap"

// newCommandLogger builds the zap logger shared by a command run. Verbose
// mode logs JSON debug records to stderr so they never mix with ndjson
// output on stdout; otherwise logging is a no-op.
func newCommandLogger(globals *Globals) *zap.Logger {
	if globals == nil || !globals.Verbose {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("server", globals.Server))
}
