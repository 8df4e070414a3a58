// Package sensor provides line-oriented access to the ultrasonic sensor with
// hardware abstraction. The serial implementation talks to a USB serial port.
// The fake implementation allows testing without hardware.
package sensor

import (
	"errors"
	"fmt"
	"log"
)

var (
	// ErrConnectionLost marks errors after which the connection is unusable
	// (device unplugged, permission revoked, port closed).
	ErrConnectionLost = errors.New("sensor connection lost")
	// ErrTransient marks errors that only cost the current input buffer.
	ErrTransient = errors.New("sensor transient error")
	// ErrNoPort is returned when no port is configured and probing found none.
	ErrNoPort = errors.New("no serial port found")
)

// Source opens a connection to the sensor.
type Source interface {
	Open() (Conn, error)
}

// Conn is an open sensor connection. Reads never block the caller for long.
type Conn interface {
	// ReadLines drains the complete lines received so far, in order.
	// Errors wrap ErrConnectionLost or ErrTransient.
	ReadLines() ([]string, error)
	// ResetInput discards buffered, unread input.
	ResetInput() error
	// Port names the underlying device.
	Port() string
	Close() error
}

// Status is the human-readable state of a link.
type Status struct {
	Connected bool
	Port      string
	Message   string
}

// Link owns at most one open connection and applies the error policy:
// transient errors are logged and the input buffer is reset, lost
// connections are closed and reported through Status.
type Link struct {
	src    Source
	conn   Conn
	status Status
}

// NewLink creates an unconnected link.
func NewLink(src Source) *Link {
	return &Link{src: src, status: Status{Message: "not connected"}}
}

// Connect closes any open connection and opens a new one.
func (l *Link) Connect() error {
	l.Close()
	if l.src == nil {
		l.status = Status{Message: "no sensor source configured"}
		return ErrNoPort
	}

	conn, err := l.src.Open()
	if err != nil {
		l.status = Status{Message: fmt.Sprintf("serial open failed: %v", err)}
		log.Printf("sensor: open failed: %v", err)
		return err
	}

	l.conn = conn
	l.status = Status{Connected: true, Port: conn.Port(), Message: "connected to " + conn.Port()}
	log.Printf("sensor: connected to %s", conn.Port())
	return nil
}

// Poll returns the lines available now. It never returns an error: failures
// are folded into Status.
func (l *Link) Poll() []string {
	if l.conn == nil {
		return nil
	}

	lines, err := l.conn.ReadLines()
	if err == nil {
		return lines
	}

	if errors.Is(err, ErrConnectionLost) {
		log.Printf("sensor: connection to %s lost: %v", l.conn.Port(), err)
		port := l.conn.Port()
		l.closeConn()
		l.status = Status{Port: port, Message: fmt.Sprintf("serial disconnected: %v", err)}
		return lines
	}

	log.Printf("sensor: read error on %s: %v", l.conn.Port(), err)
	if rerr := l.conn.ResetInput(); rerr != nil {
		log.Printf("sensor: reset input on %s: %v", l.conn.Port(), rerr)
	}
	return lines
}

// Close releases the connection, ignoring errors.
func (l *Link) Close() {
	if l.conn == nil {
		return
	}
	port := l.conn.Port()
	l.closeConn()
	l.status = Status{Port: port, Message: "disconnected"}
}

func (l *Link) closeConn() {
	_ = l.conn.Close()
	l.conn = nil
}

// Connected reports whether a connection is open.
func (l *Link) Connected() bool {
	return l.conn != nil
}

// Status returns the current link status.
func (l *Link) Status() Status {
	return l.status
}
