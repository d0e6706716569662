// Package database manages the MySQL connection for the local catalog mirror.
//
// It wraps GORM connection setup with sane pool limits, DSN-level timeouts and a
// ping-on-connect check, so callers get either a verified connection or an error.
// Schema migration for catalog tables is owned by the catalog store, not here.
package database
