// Package camera provides the webcam preview feed behind a capability
// interface. Frame acquisition is a collaborator: this build ships no
// capture backend, only the Unavailable source and a Fake for tests.
package camera

import (
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrUnavailable is returned by sources that cannot capture on this build.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrConnectionLost marks errors after which the device is unusable.
	ErrConnectionLost = errors.New("camera connection lost")
	// ErrNoFrame marks a missed frame; the device stays open.
	ErrNoFrame = errors.New("camera frame not ready")
)

// Frame is one captured image. Pixel data is not retained: the preview is
// drawn from the frame geometry and sequence only.
type Frame struct {
	Width  int
	Height int
	Seq    uint64
	At     time.Time
}

// Source opens a camera device.
type Source interface {
	Open(index int) (Conn, error)
}

// Conn is an open camera.
type Conn interface {
	// ReadFrame returns the next frame. Errors wrap ErrNoFrame or ErrConnectionLost.
	ReadFrame() (Frame, error)
	Close() error
}

// Unavailable is a Source that always fails with ErrUnavailable.
type Unavailable struct{}

// Open implements Source.
func (Unavailable) Open(index int) (Conn, error) {
	return nil, fmt.Errorf("%w: no capture backend for device %d", ErrUnavailable, index)
}

// Status is the human-readable state of a feed.
type Status struct {
	Connected bool
	Index     int
	Message   string
}

// Feed polls one camera at its own rate, independent of the frame loop.
type Feed struct {
	src      Source
	index    int
	interval time.Duration

	conn   Conn
	next   time.Time
	last   Frame
	have   bool
	misses int
	status Status
}

// NewFeed creates an unconnected feed for device index polled every interval.
func NewFeed(src Source, index int, interval time.Duration) *Feed {
	return &Feed{
		src:      src,
		index:    index,
		interval: interval,
		status:   Status{Index: index, Message: "camera not connected"},
	}
}

// Connect closes any open device and opens the configured one.
func (f *Feed) Connect() error {
	f.Close()
	if f.src == nil {
		f.status = Status{Index: f.index, Message: "camera unavailable"}
		return ErrUnavailable
	}

	conn, err := f.src.Open(f.index)
	if err != nil {
		f.status = Status{Index: f.index, Message: fmt.Sprintf("camera %d: %v", f.index, err)}
		log.Printf("camera: open %d failed: %v", f.index, err)
		return err
	}

	f.conn = conn
	f.next = time.Time{}
	f.status = Status{Connected: true, Index: f.index, Message: fmt.Sprintf("camera %d connected", f.index)}
	log.Printf("camera: connected to device %d", f.index)
	return nil
}

// SetIndex selects the device used by the next Connect.
func (f *Feed) SetIndex(index int) {
	f.index = index
	if f.conn == nil {
		f.status.Index = index
	}
}

// Index returns the selected device.
func (f *Feed) Index() int {
	return f.index
}

// Poll reads at most one frame, and only if the camera interval has
// elapsed since the last read. It returns the latest frame, if any.
func (f *Feed) Poll(now time.Time) (Frame, bool) {
	if f.conn == nil || now.Before(f.next) {
		return f.last, f.have
	}
	f.next = now.Add(f.interval)

	frame, err := f.conn.ReadFrame()
	switch {
	case err == nil:
		f.last = frame
		f.have = true
	case errors.Is(err, ErrConnectionLost):
		log.Printf("camera: device %d lost: %v", f.index, err)
		f.closeConn()
		f.status = Status{Index: f.index, Message: fmt.Sprintf("camera disconnected: %v", err)}
	default:
		f.misses++
	}
	return f.last, f.have
}

// Misses returns the number of frames missed since the feed was created.
func (f *Feed) Misses() int {
	return f.misses
}

// Close releases the device, ignoring errors.
func (f *Feed) Close() {
	if f.conn == nil {
		return
	}
	f.closeConn()
	f.status = Status{Index: f.index, Message: "camera disconnected"}
}

func (f *Feed) closeConn() {
	_ = f.conn.Close()
	f.conn = nil
	f.have = false
}

// Connected reports whether a device is open.
func (f *Feed) Connected() bool {
	return f.conn != nil
}

// Status returns the current feed status.
func (f *Feed) Status() Status {
	return f.status
}
