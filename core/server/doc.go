// Package server holds configuration for the HTTP server layer.
//
// The actual Fiber application is assembled in the start command; this package
// only owns the settings (port, API key) so config loading stays decoupled from
// the web framework.
package server
