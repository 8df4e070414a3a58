package camera

import "time"

// FakeSource is a test double that opens FakeConns.
type FakeSource struct {
	// OpenError, if set, will be returned by Open.
	OpenError error

	// Opened records the device index of every successful Open.
	Opened []int

	// Conn is the last connection handed out.
	Conn *FakeConn

	// Errors is copied into each new FakeConn.
	Errors []error
}

// Open implements Source.
func (f *FakeSource) Open(index int) (Conn, error) {
	if f.OpenError != nil {
		return nil, f.OpenError
	}
	f.Opened = append(f.Opened, index)
	f.Conn = &FakeConn{Width: 640, Height: 480, Errors: append([]error(nil), f.Errors...)}
	return f.Conn, nil
}

// FakeConn produces numbered frames. Scripted Errors are returned first,
// one per read.
type FakeConn struct {
	Width, Height int
	Errors        []error

	// Reads counts ReadFrame calls.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	seq uint64
}

// ReadFrame implements Conn.
func (c *FakeConn) ReadFrame() (Frame, error) {
	c.Reads++
	if len(c.Errors) > 0 {
		err := c.Errors[0]
		c.Errors = c.Errors[1:]
		if err != nil {
			return Frame{}, err
		}
	}
	c.seq++
	return Frame{Width: c.Width, Height: c.Height, Seq: c.seq, At: time.Now()}, nil
}

// Close implements Conn.
func (c *FakeConn) Close() error {
	c.Closed = true
	return nil
}
