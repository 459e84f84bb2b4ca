// Package testlog wires zerolog output into the test runner.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// Start returns a logger that writes through t.Log, tagged with the
// test name.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).
		Level(zerolog.DebugLevel).
		With().Str("test", t.Name()).Logger()
}
