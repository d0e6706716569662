// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID (request ID) from a Fiber context and
// attaches it to the log entry, so every log line produced while serving a
// request can be correlated, including sync runs triggered over HTTP.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Trigger failed", zap.Error(err))
package logger
