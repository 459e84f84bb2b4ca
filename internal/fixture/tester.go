package fixture

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/fixturectl/internal/observability"
	"github.com/danmuck/fixturectl/internal/remotefile"
	"github.com/rs/zerolog"
)

// chunkLen is the transfer unit for bulk firmware moves.
const chunkLen = 256

// Tester models the fixture: a version register, the image it is
// running, and the staging flash behind it.
type Tester struct {
	version int
	flash   []byte // staged image
	active  []byte // running image
	log     zerolog.Logger
}

func NewTester(version int, image []byte, log zerolog.Logger) *Tester {
	t := &Tester{version: version, log: log}
	t.flash = append(t.flash, image...)
	t.active = append(t.active, image...)
	return t
}

func (t *Tester) Version() int { return t.version }

// FirmwareDump streams the running image to f.
func (t *Tester) FirmwareDump(f remotefile.File) error {
	return t.dump(f, t.active)
}

// FirmwareDumpAll streams the full staging flash to f.
func (t *Tester) FirmwareDumpAll(f remotefile.File) error {
	return t.dump(f, t.flash)
}

func (t *Tester) dump(f remotefile.File, image []byte) error {
	for pos := 0; pos < len(image); pos += chunkLen {
		end := min(pos+chunkLen, len(image))
		n, err := f.Write(image[pos:end])
		if err != nil {
			return fmt.Errorf("fixture: dump at %d: %w", pos, err)
		}
		if n != end-pos {
			return fmt.Errorf("fixture: dump at %d: short write %d", pos, n)
		}
		observability.RecordTransfer("dump", n)
	}
	return nil
}

// FirmwareUpdate replaces the staged image with the contents of f. The
// running image is untouched until Reprogram.
func (t *Tester) FirmwareUpdate(f remotefile.File) error {
	staged := make([]byte, 0, len(t.flash))
	chunk := make([]byte, chunkLen)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			staged = append(staged, chunk[:n]...)
			observability.RecordTransfer("update", n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("fixture: update at %d: %w", len(staged), err)
		}
	}
	t.flash = staged
	t.log.Info().Int("bytes", len(staged)).Msg("firmware staged")
	return nil
}

// Reprogram loads the staged image as the running one.
func (t *Tester) Reprogram() {
	t.active = append(t.active[:0], t.flash...)
	t.log.Info().Int("bytes", len(t.active)).Msg("fixture reprogrammed")
}

// Active returns the running image.
func (t *Tester) Active() []byte { return t.active }

// Flash returns the staging flash contents.
func (t *Tester) Flash() []byte { return t.flash }
