// Package ws implements the WebSocket session hub for the launch dashboard.
//
// Each connection is one dashboard session with its own filter selection.
// The client sends a selection and the hub answers with charts recomputed
// for that session only; nothing is broadcast.
//
// New(dataset, recorder, options) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes every session.
// Hub.ServeHTTP upgrades the connection, sends charts for the default
// selection (ALL sites, full payload range), then serves selection messages.
//
// Client to server:
//
//	{"site": "KSC LC-39A", "payload_range": [2000, 8000]}
//
// Either field may be omitted to keep the session's previous value.
//
// Server to client:
//
//	{"event": "charts", "session": "<uuid>", "data": { /* GET /api/v1/charts */ }}
//	{"event": "error",  "session": "<uuid>", "error": "unknown launch site \"X\""}
//
// A rejected selection leaves the session's previous selection in place.
// The hub is mounted at /ws/session by the serve command.
package ws
