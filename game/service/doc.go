// Package service is the application layer between the transports and the
// match runtime. It tracks which match each player is bound to, builds the
// dependency set new matches run with, and exposes every operation the REST,
// websocket and MCP surfaces may invoke.
package service
