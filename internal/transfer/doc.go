// Package transfer drives Copy, Move and Delete operations to completion.
//
// An Engine holds at most one Session at a time. A session owns two slots,
// Source and Destination, each binding a role to a path and, for single
// file modes, an open handle. The engine walks the session through
//
//	Idle -> AwaitingSource -> AwaitingDestination -> Confirming -> Executing -> Idle
//
// (Delete skips AwaitingDestination) and releases both slots on every
// terminal outcome: success, failure, a declined prompt, or a cancel.
//
// Paths are supplied by the caller, normally from a picker session; the
// engine never browses on its own. Every destructive step is preceded by a
// prompt the caller must answer, and every failure is reported once, tagged
// with the step that failed, without retries.
package transfer
