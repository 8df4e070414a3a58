package sensor

import "errors"

// FakeRead is one scripted ReadLines result.
type FakeRead struct {
	Lines []string
	Err   error
}

// FakeSource is a test double that hands out a scripted FakeConn.
type FakeSource struct {
	// Conn is returned by Open. A fresh FakeConn is created if nil.
	Conn *FakeConn

	// OpenError, if set, will be returned by Open.
	OpenError error

	// Opens counts calls to Open.
	Opens int
}

// NewFakeSource creates a source whose connection replays reads.
func NewFakeSource(reads ...FakeRead) *FakeSource {
	return &FakeSource{Conn: &FakeConn{Name: "/dev/fake0", Reads: reads}}
}

// Open returns the scripted connection.
func (f *FakeSource) Open() (Conn, error) {
	f.Opens++
	if f.OpenError != nil {
		return nil, f.OpenError
	}
	if f.Conn == nil {
		f.Conn = &FakeConn{Name: "/dev/fake0"}
	}
	f.Conn.Closed = false
	return f.Conn, nil
}

// FakeConn replays scripted reads. Once the script is exhausted ReadLines
// returns no lines.
type FakeConn struct {
	Name  string
	Reads []FakeRead

	index int

	// Resets counts ResetInput calls.
	Resets int

	// Closed tracks if Close was called.
	Closed bool
}

// Push appends lines as one more read.
func (f *FakeConn) Push(lines ...string) {
	f.Reads = append(f.Reads, FakeRead{Lines: lines})
}

// ReadLines returns the next scripted read.
func (f *FakeConn) ReadLines() ([]string, error) {
	if f.Closed {
		return nil, errors.New("fake: read on closed connection")
	}
	if f.index >= len(f.Reads) {
		return nil, nil
	}
	r := f.Reads[f.index]
	f.index++
	return r.Lines, r.Err
}

// ResetInput counts the reset.
func (f *FakeConn) ResetInput() error {
	f.Resets++
	return nil
}

// Port returns the fake device name.
func (f *FakeConn) Port() string { return f.Name }

// Close marks the connection as closed.
func (f *FakeConn) Close() error {
	f.Closed = true
	return nil
}
