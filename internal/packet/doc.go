// Package packet owns the wire framing for the fixture link.
//
// Ownership boundary:
// - byte-stuffed framing with an explicit zero terminator
// - formatted (printf/scanf style) message payloads
//
// One Stream is bound to one byte stream. Command dispatch and
// remote-file exchanges share the Stream, so at most one frame is ever
// in flight and the Stream is strictly single-caller.
package packet
