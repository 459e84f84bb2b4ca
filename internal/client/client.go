// Package client implements the host side of the fixture protocol:
// version, firmware dump/update, reload, baud, and diagnostics against
// a fixture on the other end of a packet stream.
package client

import (
	"errors"
	"fmt"

	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/danmuck/fixturectl/internal/remotefile"
	"github.com/rs/zerolog"
)

// Progress reports bulk-transfer position, as remotefile.Progress.
type Progress = remotefile.Progress

var (
	// ErrFixture reports an "error" result frame from the fixture.
	ErrFixture = errors.New("client: fixture reported error")
)

// Stats are the fixture's diagnostics counters as reported on the wire.
type Stats struct {
	EncodingErrors  int
	UnknownCommands int
}

// Client drives one fixture over one packet stream. All operations are
// synchronous request/response exchanges.
type Client struct {
	stream *packet.Stream
	log    zerolog.Logger
}

func New(stream *packet.Stream, log zerolog.Logger) *Client {
	return &Client{stream: stream, log: log}
}

// Reset flushes the link with empty packets, which the fixture skips
// without counting, then probes it with a version request.
func (c *Client) Reset() error {
	for i := 0; i < 3; i++ {
		if err := c.stream.WritePacket(nil); err != nil {
			return err
		}
	}
	_, err := c.Version()
	return err
}

func (c *Client) Version() (int, error) {
	if err := c.stream.Printf("version"); err != nil {
		return 0, err
	}
	var v int
	if _, err := c.stream.Scanf("%d", &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Dump retrieves the running firmware image.
func (c *Client) Dump(progress Progress) ([]byte, error) {
	return c.dump("dump", progress)
}

// DumpAll retrieves the full staging flash.
func (c *Client) DumpAll(progress Progress) ([]byte, error) {
	return c.dump("dump_all", progress)
}

func (c *Client) dump(command string, progress Progress) ([]byte, error) {
	// Raw frame, not a format string: the command name goes on the wire
	// verbatim.
	if err := c.stream.WritePacket([]byte(command)); err != nil {
		return nil, err
	}
	data, err := remotefile.Host(c.stream, remotefile.NewBuffer(nil), progress)
	if err != nil {
		return nil, err
	}
	if err := c.result(); err != nil {
		return nil, err
	}
	c.log.Info().Str("command", command).Int("bytes", len(data)).Msg("dump complete")
	return data, nil
}

// Update stages image on the fixture. Reload makes it the running one.
func (c *Client) Update(image []byte, progress Progress) error {
	if err := c.stream.Printf("update"); err != nil {
		return err
	}
	if _, err := remotefile.Host(c.stream, remotefile.NewBuffer(image), progress); err != nil {
		return err
	}
	if err := c.result(); err != nil {
		return err
	}
	c.log.Info().Int("bytes", len(image)).Msg("update complete")
	return nil
}

func (c *Client) Reload() error {
	if err := c.stream.Printf("reload"); err != nil {
		return err
	}
	return c.result()
}

// Baud asks the fixture to switch its link rate. On success the caller
// must switch its own side of the link before the next exchange.
func (c *Client) Baud(rate int) error {
	if err := c.stream.Printf("baud"); err != nil {
		return err
	}
	if err := c.stream.Printf("%d", rate); err != nil {
		return err
	}
	return c.result()
}

func (c *Client) Stats() (Stats, error) {
	if err := c.stream.Printf("stats"); err != nil {
		return Stats{}, err
	}
	var st Stats
	if _, err := c.stream.Scanf("encoding_errors: %d, unknown_commands %d",
		&st.EncodingErrors, &st.UnknownCommands); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (c *Client) result() error {
	var buf [64]byte
	n, err := c.stream.ReadPacket(buf[:])
	if err != nil {
		return err
	}
	if n > len(buf) {
		n = len(buf)
	}
	if string(buf[:n]) != "ok" {
		return fmt.Errorf("%w: %q", ErrFixture, buf[:n])
	}
	return nil
}
