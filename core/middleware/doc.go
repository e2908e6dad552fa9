// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key) protecting feature routes. An empty key
//     disables the check for local use.
//   - rayid: a per-request id stored in the Fiber locals and echoed in the X-Ray-ID
//     response header; logger.WithRayID reads it back.
//
// Both are registered globally in cmd/start.go, rayid first so every log line of a
// request carries the id.
package middleware
