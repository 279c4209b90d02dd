// Package websocket carries the realtime transport: a hub of connections
// grouped into rooms, the per-connection read/write pumps, and the dispatcher
// that routes inbound events to the game service. The hub is the EventBus the
// match runtime emits through.
package websocket
