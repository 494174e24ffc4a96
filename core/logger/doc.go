// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so every line written while serving a merge request can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// The merge command's --verbose flag forces the debug level, which is where rejected
// child identifiers and individual ID matches are logged.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Merge failed", zap.Error(err))
package logger
