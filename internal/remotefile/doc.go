// Package remotefile maps file-handle semantics onto packet exchanges.
//
// Ownership boundary:
// - the File contract shared by both ends of the bridge
// - Remote: file calls issued as request/response packet exchanges
// - Buffer: the local in-memory File variant
// - Host: the serving loop that answers a peer's file requests
//
// The bridge shares its Stream with the command dispatcher: every
// operation is one synchronous exchange and at most one request is ever
// outstanding.
package remotefile
