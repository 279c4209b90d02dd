// Package api exposes the REST surface: game lifecycle management, the
// public lobby listing, a server status endpoint with process metrics, and
// the websocket upgrade route. Gameplay itself happens over the websocket
// transport; the REST API only manages and inspects matches.
package api
