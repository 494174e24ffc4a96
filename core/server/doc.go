// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// settings it reads: the bind address and the API key checked by the auth middleware.
// An empty API key disables authentication.
package server
