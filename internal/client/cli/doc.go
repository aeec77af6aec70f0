// Package cli provides the interactive eventfeed command-line client.
//
// It wires configuration, the local session store, the backend client, the
// live update listener and one feed controller per active filter, then
// runs a REPL over them.
//
// Key features:
//   - Register / Login / Logout with a persisted session
//   - List the feed page by page, filter by location, hobby or official flag
//   - Create, edit and delete events with instant local feedback
//   - Live updates from other users merged into the visible list
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
