package fixture

import (
	"time"

	"github.com/danmuck/fixturectl/internal/dispatch"
	"github.com/danmuck/fixturectl/internal/remotefile"
)

// RateSetter changes the link rate after a baud command is
// acknowledged. Serial transports implement it; others leave it nil.
type RateSetter interface {
	SetRate(baud int) error
}

// rateSwitchDelay lets the peer receive the ack at the old rate.
const rateSwitchDelay = 50 * time.Millisecond

// Commands builds the dispatch table for one fixture. rate may be nil
// when the transport has no configurable rate; baud then reports an
// error to the host.
func Commands(t *Tester, rate RateSetter) map[string]dispatch.HandlerFunc {
	return map[string]dispatch.HandlerFunc{
		"version":  t.handleVersion,
		"dump":     t.handleDump,
		"dump_all": t.handleDumpAll,
		"update":   t.handleUpdate,
		"reload":   t.handleReload,
		"baud":     t.baudHandler(rate),
		"stats":    t.handleStats,
	}
}

func (t *Tester) handleVersion(c *dispatch.Context) {
	t.reply(c, "%d", t.version)
}

func (t *Tester) handleDump(c *dispatch.Context) {
	file := remotefile.NewRemote(c.Stream)
	err := t.FirmwareDump(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	t.result(c, err)
}

func (t *Tester) handleDumpAll(c *dispatch.Context) {
	file := remotefile.NewRemote(c.Stream)
	err := t.FirmwareDumpAll(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	t.result(c, err)
}

func (t *Tester) handleUpdate(c *dispatch.Context) {
	file := remotefile.NewRemote(c.Stream)
	err := t.FirmwareUpdate(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	t.result(c, err)
}

func (t *Tester) handleReload(c *dispatch.Context) {
	t.Reprogram()
	t.reply(c, "ok")
}

func (t *Tester) handleStats(c *dispatch.Context) {
	t.reply(c, "encoding_errors: %d, unknown_commands %d",
		c.Stats.FramingErrors, c.Stats.UnknownCommands)
}

func (t *Tester) baudHandler(rate RateSetter) dispatch.HandlerFunc {
	return func(c *dispatch.Context) {
		var baud int
		n, _ := c.Stream.Scanf("%d", &baud)
		if n != 1 || rate == nil {
			t.reply(c, "error")
			return
		}
		t.reply(c, "ok")
		time.Sleep(rateSwitchDelay)
		if err := rate.SetRate(baud); err != nil {
			t.log.Warn().Err(err).Int("baud", baud).Msg("rate change failed")
		}
	}
}

func (t *Tester) reply(c *dispatch.Context, format string, args ...any) {
	if err := c.Stream.Printf(format, args...); err != nil {
		t.log.Warn().Err(err).Msg("reply failed")
	}
}

func (t *Tester) result(c *dispatch.Context, err error) {
	if err != nil {
		t.log.Warn().Err(err).Msg("operation failed")
		t.reply(c, "error")
		return
	}
	t.reply(c, "ok")
}
