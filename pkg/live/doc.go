// Package live exposes manager state over HTTP and WebSocket.
//
// A Hub holds named sources. Each source is a Subscribe function plus a
// JSON-marshalable snapshot; SourceOf adapts a *future.Manager to the
// interface. The hub's handler mounts three routes:
//
//	GET /sources           list of registered source names
//	GET /sources/{name}    current snapshot as JSON
//	GET /sources/{name}/ws snapshot stream over WebSocket
//
// The stream sends one snapshot on connect and one on every state
// change. Changes that arrive faster than the client reads coalesce to
// the latest snapshot.
//
// # Mounting
//
// Handler returns a plain http.Handler, so a hub mounts anywhere:
//
//	hub := live.NewHub()
//	live.Register(hub, "orders", ordersManager)
//
//	mux := http.NewServeMux()
//	mux.Handle("/debug/loadable/", http.StripPrefix("/debug/loadable", hub.Handler()))
package live
