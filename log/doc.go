// Package log provides the structured logger used by rnprof, a thin
// concurrency-safe layer over [log/slog].
//
// Loggers are created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithCaller(true))
//	logger.Info("profile pulled", slog.String("path", p))
//
// The package-level functions ([Info], [Error], ...) write through a default
// logger that the CLI reconfigures with [Config] while flags are parsed.
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] sits below [LevelDebug] and is
// used for per-chunk and per-command detail.
//
// # Formats
//
// [FormatText] (default) and [FormatJSON]. With [WithPretty] enabled, text
// output is colorized when the destination is a terminal.
package log
