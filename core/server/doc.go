// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for the listen port and the API key that
// protects the ledger endpoints.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by cmd/start to build the listen address.
package server
