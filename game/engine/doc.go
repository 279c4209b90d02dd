// Package engine implements the match runtime: the per-match state machine
// that drives the difficulty curve, generates per-player grids, schedules
// instruction expiry and health drain timers, and enforces instruction
// completion semantics.
//
// A Match is mutated only while its lock is held; timers are goroutines that
// reacquire the lock before touching state and abandon silently once
// cancelled or once the match is disposing. Transports talk to a match
// through the EventBus contract and never see its internals.
package engine
