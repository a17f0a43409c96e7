// Package logging builds the process logger.
//
// The logger is a plain *slog.Logger underneath, so packages keep calling
// slog.InfoContext and friends after New has installed it as the default.
// Three things are layered on top:
//
//   - a slog.LevelVar, so a configuration reload can change the level of a
//     running process (Logger.SetLevel)
//   - context fields: request_id, provider, model and trace_id stored with
//     WithRequestID and friends are added to every record logged with that
//     context
//   - secret redaction: attributes named like credentials are masked and
//     API keys or bearer tokens embedded in strings and errors are replaced
//
// Output goes to stdout (or Config.Writer) and, when a file path is set, to
// a size-rotated file managed by lumberjack.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, id)
//	slog.InfoContext(ctx, "relay started", "turns", 3) // includes request_id
package logging
