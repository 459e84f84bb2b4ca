package packet

import "fmt"

// scanBufLen bounds one formatted response. Longer frames are truncated
// but still consumed in full, so the wire stays synchronized.
const scanBufLen = 64

// Printf renders the formatted text and sends it as one packet. Small
// renderings reuse a stream-owned buffer; longer ones spill to a fresh
// allocation through append. The integer verb is %d.
func (s *Stream) Printf(format string, args ...any) error {
	out := fmt.Appendf(s.fmtBuf[:0], format, args...)
	return s.WritePacket(out)
}

// Scanf reads one packet and parses it with fmt.Sscanf semantics. A
// failed frame read returns (0, err). A short match returns the matched
// count together with the scan error; callers that only gate on the
// count may ignore it.
func (s *Stream) Scanf(format string, args ...any) (int, error) {
	var buf [scanBufLen]byte
	actual, err := s.ReadPacket(buf[:])
	if err != nil {
		return 0, err
	}
	if actual > len(buf) {
		actual = len(buf)
	}
	n, err := fmt.Sscanf(string(buf[:actual]), format, args...)
	if err != nil {
		return n, fmt.Errorf("packet: scan %q: %w", format, err)
	}
	return n, nil
}
