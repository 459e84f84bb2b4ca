package dispatch

import (
	"context"
	"errors"

	"github.com/danmuck/fixturectl/internal/observability"
	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/rs/zerolog"
)

// commandBufLen bounds one command name frame.
const commandBufLen = 64

// Stats are the dispatcher's diagnostics counters.
type Stats struct {
	FramingErrors   uint64
	UnknownCommands uint64
}

// Context is what a handler runs with: the shared stream and a snapshot
// of the counters at dispatch time.
type Context struct {
	Stream *packet.Stream
	Stats  Stats
}

// HandlerFunc runs one matched command. The handler may perform any
// number of further packet exchanges on the stream before returning.
type HandlerFunc func(c *Context)

// Dispatcher matches decoded command frames against a static table and
// runs the matched handler. It shares its Stream with the handlers, so
// everything on the link is strictly sequential.
type Dispatcher struct {
	stream   *packet.Stream
	commands map[string]HandlerFunc
	stats    Stats
	log      zerolog.Logger
}

func New(stream *packet.Stream, commands map[string]HandlerFunc, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		stream:   stream,
		commands: commands,
		log:      log,
	}
}

// Run reads command frames until the context is done or the transport
// fails. Framing errors and unknown commands are counted and the loop
// continues; empty frames are link flushes and are skipped without
// counting. A transport error ends the loop because frame alignment
// can no longer be trusted.
//
// Frame reads block without a deadline, so cancellation is only
// observed between frames.
func (d *Dispatcher) Run(ctx context.Context) error {
	buf := make([]byte, commandBufLen)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := d.stream.ReadPacket(buf)
		if errors.Is(err, packet.ErrFraming) {
			d.stats.FramingErrors++
			observability.RecordFramingError()
			d.log.Warn().Msg("malformed frame")
			continue
		}
		if err != nil {
			observability.RecordTransportError()
			return err
		}
		observability.RecordFrameRead()
		if n == 0 {
			continue
		}
		if n > len(buf) {
			n = len(buf)
		}

		name := string(buf[:n])
		handler, ok := d.commands[name]
		if !ok {
			d.stats.UnknownCommands++
			observability.RecordUnknownCommand()
			d.log.Warn().Str("command", name).Msg("unknown command")
			continue
		}

		observability.RecordCommand(name)
		d.log.Debug().Str("command", name).Msg("dispatch")
		handler(&Context{Stream: d.stream, Stats: d.stats})
	}
}

// Stats returns the current counters. Only meaningful from the Run
// goroutine, which includes handlers.
func (d *Dispatcher) Stats() Stats { return d.stats }
