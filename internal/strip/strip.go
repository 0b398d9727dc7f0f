// Package strip defines the addressable light strip the animation draws on
// and provides in-memory and byte-stream implementations of it.
package strip

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrIndexRange is returned when an element index is outside the strip.
var ErrIndexRange = errors.New("strip: index out of range")

// Driver is an addressable strip of Len() elements. Hue, saturation and
// value are all in [0, 1]; conversion to the device colour format is the
// driver's job.
type Driver interface {
	Len() int
	Start() error
	SetHSV(i int, h, s, v float64) error
}

// Shower is implemented by drivers that latch a whole frame at once rather
// than updating elements as they are set.
type Shower interface {
	Show() error
}

// Show latches the frame if d supports it.
func Show(d Driver) error {
	if s, ok := d.(Shower); ok {
		return s.Show()
	}
	return nil
}

// HSV is one element's colour.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Color converts to a go-colorful colour. Hue wraps, saturation and value
// are clamped to [0, 1].
func (c HSV) Color() colorful.Color {
	h := math.Mod(c.H, 1)
	if h < 0 {
		h++
	}
	return colorful.Hsv(h*360, clamp01(c.S), clamp01(c.V)).Clamped()
}

// RGB returns 8-bit channel values.
func (c HSV) RGB() (r, g, b uint8) {
	return c.Color().RGB255()
}

// Hex returns the colour as #rrggbb.
func (c HSV) Hex() string {
	return c.Color().Hex()
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexRange, i, n)
	}
	return nil
}
