package sensor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Defaults for the Arduino sketch.
const (
	DefaultBaud        = 9600
	DefaultReadTimeout = time.Millisecond
	maxReadPerPoll     = 4096
)

// port is the subset of serial.Port the source uses.
type port interface {
	Read(p []byte) (int, error)
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// SerialSource opens a USB serial port. With an empty Port it probes the
// candidate ports and takes the first.
type SerialSource struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration

	listPorts func() ([]string, error)
	openPort  func(name string, mode *serial.Mode) (port, error)
}

// NewSerialSource creates a source for the given port (empty to probe).
func NewSerialSource(portName string, baud int) *SerialSource {
	return &SerialSource{
		Port:        portName,
		Baud:        baud,
		ReadTimeout: DefaultReadTimeout,
		listPorts:   serial.GetPortsList,
		openPort: func(name string, mode *serial.Mode) (port, error) {
			return serial.Open(name, mode)
		},
	}
}

// Candidates lists ports that look like USB serial adapters.
func (s *SerialSource) Candidates() ([]string, error) {
	names, err := s.listPorts()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return FilterCandidates(names), nil
}

// Open implements Source.
func (s *SerialSource) Open() (Conn, error) {
	name := s.Port
	if name == "" {
		cands, err := s.Candidates()
		if err != nil {
			return nil, err
		}
		if len(cands) == 0 {
			return nil, ErrNoPort
		}
		name = cands[0]
	}

	baud := s.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := s.openPort(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	// Reads must return promptly so the frame loop never stalls.
	if err := p.SetReadTimeout(s.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("reset input on %s: %w", name, err)
	}

	return &serialConn{name: name, port: p, buf: make([]byte, 256)}, nil
}

// FilterCandidates keeps USB serial device names, sorted and deduplicated.
func FilterCandidates(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		if seen[n] || !isCandidate(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func isCandidate(name string) bool {
	for _, marker := range []string{"usbmodem", "usbserial", "ttyUSB", "ttyACM"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return strings.HasPrefix(name, "COM")
}

// NextCandidate returns the candidate after current, wrapping around.
// If current is not a candidate the first one is returned.
func NextCandidate(cands []string, current string) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	for i, c := range cands {
		if c == current {
			return cands[(i+1)%len(cands)], true
		}
	}
	return cands[0], true
}

type serialConn struct {
	name  string
	port  port
	buf   []byte
	lines LineBuffer
}

func (c *serialConn) ReadLines() ([]string, error) {
	total := 0
	for total < maxReadPerPoll {
		n, err := c.port.Read(c.buf)
		if err != nil {
			return nil, classify(err)
		}
		if n == 0 {
			break
		}
		c.lines.Write(c.buf[:n])
		total += n
	}
	return c.lines.Lines()
}

func (c *serialConn) ResetInput() error {
	c.lines.Reset()
	return c.port.ResetInputBuffer()
}

func (c *serialConn) Port() string { return c.name }

func (c *serialConn) Close() error { return c.port.Close() }

// classify wraps err with ErrConnectionLost or ErrTransient.
func classify(err error) error {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		switch pe.Code() {
		case serial.PortClosed, serial.PortNotFound, serial.PermissionDenied, serial.InvalidSerialPort:
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrPermission) || errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"device disconnected", "permission denied", "no such device", "input/output error", "bad file descriptor"} {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
