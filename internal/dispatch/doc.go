// Package dispatch owns the fixture-side command loop.
//
// Ownership boundary:
// - static command table, matched byte-for-byte against one frame
// - diagnostics counters (framing errors, unknown commands)
//
// Counters are Dispatcher fields rather than package state so that
// independent links keep independent diagnostics.
package dispatch
