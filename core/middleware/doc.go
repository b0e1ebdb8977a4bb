// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: checks the X-API-Key header against the configured key.
//   - rayid: tags every request with a ray id, kept in locals and echoed in X-Ray-ID.
//
// Register rayid first so every later log line carries the id.
package middleware
