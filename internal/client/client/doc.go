// Package client talks to the eventfeed backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: Register/Login, Ping, FetchPage and the
//     CreateEvent/UpdateEvent/DeleteEvent mutations the feed depends on.
//  2. A gRPC implementation (see GRPCClient) that attaches the bearer token
//     through an interceptor and maps status codes onto the error taxonomy.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite metadata store with embedded goose migrations.
//
// # Error Handling
//
// Transport failures and timeouts become ErrNetwork. Ownership violations
// are ErrForbidden, stale ids ErrNotFound and missing or bad tokens
// ErrUnauthorized. Rejected payloads surface as *ValidationError with
// per-field messages; everything else is a *ServerError.
//
// GRPCClient is safe for concurrent use; the access token is guarded by a
// mutex so SetAccessToken may race with in-flight calls.
package client
