package sensor

import (
	"bytes"
	"fmt"
	"strings"
)

// MaxLineBytes bounds a single unterminated line.
const MaxLineBytes = 1024

// LineBuffer frames a byte stream into newline-terminated text lines.
// Invalid UTF-8 is dropped and surrounding whitespace trimmed; blank lines
// are skipped. Not safe for concurrent use.
type LineBuffer struct {
	buf []byte
}

// Write appends received bytes.
func (b *LineBuffer) Write(p []byte) {
	b.buf = append(b.buf, p...)
}

// Lines returns every complete line buffered so far. If the pending
// partial line exceeds MaxLineBytes it is discarded with an ErrTransient.
func (b *LineBuffer) Lines() ([]string, error) {
	var lines []string
	for {
		i := bytes.IndexByte(b.buf, '\n')
		if i < 0 {
			break
		}
		if line := decode(b.buf[:i]); line != "" {
			lines = append(lines, line)
		}
		b.buf = b.buf[i+1:]
	}

	if len(b.buf) > MaxLineBytes {
		n := len(b.buf)
		b.Reset()
		return lines, fmt.Errorf("%w: unterminated line of %d bytes discarded", ErrTransient, n)
	}
	if len(b.buf) == 0 {
		b.buf = nil
	}
	return lines, nil
}

// Reset drops any partial line.
func (b *LineBuffer) Reset() {
	b.buf = nil
}

// Pending returns the number of buffered bytes.
func (b *LineBuffer) Pending() int {
	return len(b.buf)
}

func decode(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}
