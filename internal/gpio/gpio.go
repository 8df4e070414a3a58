// Package gpio provides the optional proximity switch input with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the proximity switch.
type Reader interface {
	// Read returns true while an object is near the switch.
	// The raw line is active-low: raw 0 = near.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// EdgeDetector turns level samples into rising-edge triggers.
type EdgeDetector struct {
	last bool
}

// Update records a sample and reports whether it is a false-to-true edge.
func (d *EdgeDetector) Update(near bool) bool {
	rising := near && !d.last
	d.last = near
	return rising
}
