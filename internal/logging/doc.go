// Package logging provides structured logging for onelane runs.
//
// This package wraps Go's log/slog to produce JSON-formatted logs that
// can be analyzed after a run: which car waited how long, when the flow
// reversed, and how teardown went.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Persistent context attributes (component, car)
//   - Size-based log rotation with optional gzip compression
//   - Log reading, filtering, and export utilities behind `onelane logs`
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. [Logger] relies
// on slog's concurrency guarantees, and [RotatingWriter] serializes file
// operations with a mutex. Child loggers created via With* methods share
// the underlying writer safely.
//
// # Basic Usage
//
//	logger, err := logging.New("onelane.log", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("run started", "cars", 20, "capacity", 3)
//
// An empty path sends logs to stderr instead of a file.
//
// # Context Attributes
//
// Child loggers carry persistent attributes so every line from one actor
// is taggable and filterable:
//
//	bridgeLog := logger.WithComponent("bridge")
//	carLog := bridgeLog.WithCar("car 07")
//	carLog.Debug("admitted", "occupants", 2)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"admitted","component":"bridge","car":"car 07","occupants":2}
//
// # Rotation
//
// File outputs rotate once they pass a size limit; rotated files are
// named onelane.log.1 (newest) through onelane.log.N and optionally
// gzipped. Use [NewWithRotation] to pick the limits, or [New] for the
// defaults in [DefaultRotationConfig].
//
// # Reading Logs Back
//
// [ReadLogFile], [FilterEntries], and [ExportEntries] turn a run's log
// file into filtered, exportable entries; the `onelane logs` command is
// a thin wrapper over them.
//
// # Testing
//
// Use [NopLogger] to discard output in tests.
package logging
