// Package server holds the HTTP server configuration.
//
// The main application entry point builds the Fiber app; this package only defines
// the settings it reads: the listen port, the API key protecting feature routes and
// the request body limit applied to simulation payloads.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/start.go.
package server
