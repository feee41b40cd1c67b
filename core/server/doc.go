// Package server holds the HTTP server configuration.
//
// The server itself is assembled in the start command; this package only
// carries the partial configuration (port, API key) so that core/config can
// compose it with the other partial configs.
package server
