// Package streamtest provides in-memory byte streams for exercising the
// packet codec and the protocols layered on it.
package streamtest

import (
	"bytes"
	"errors"
)

var ErrBroken = errors.New("streamtest: broken stream")

// Loopback buffers writes and reads them back in order. Tests must
// write before they read; an empty Loopback reports io.EOF.
type Loopback struct {
	buf bytes.Buffer
}

func NewLoopback() *Loopback { return &Loopback{} }

func (l *Loopback) Read(p []byte) (int, error)  { return l.buf.Read(p) }
func (l *Loopback) Write(p []byte) (int, error) { return l.buf.Write(p) }

// Fixed replays canned bytes and records everything written, for exact
// wire-level assertions.
type Fixed struct {
	rd *bytes.Reader
	wr bytes.Buffer
}

func NewFixed(read []byte) *Fixed {
	return &Fixed{rd: bytes.NewReader(read)}
}

func (f *Fixed) Read(p []byte) (int, error)  { return f.rd.Read(p) }
func (f *Fixed) Write(p []byte) (int, error) { return f.wr.Write(p) }

// Written returns everything the code under test wrote so far.
func (f *Fixed) Written() []byte { return f.wr.Bytes() }

// Drained reports whether all canned read bytes were consumed.
func (f *Fixed) Drained() bool { return f.rd.Len() == 0 }

// Feed replaces the canned read bytes.
func (f *Fixed) Feed(read []byte) { f.rd = bytes.NewReader(read) }

// Broken fails every read and write, for transport-error paths.
type Broken struct{}

func (Broken) Read(p []byte) (int, error)  { return 0, ErrBroken }
func (Broken) Write(p []byte) (int, error) { return 0, ErrBroken }
