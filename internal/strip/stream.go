package strip

import (
	"fmt"
	"io"
	"strings"
)

// ColorOrder is the order in which a device expects the three channels.
type ColorOrder int

const (
	OrderRGB ColorOrder = iota
	OrderRBG
	OrderGRB
	OrderGBR
	OrderBRG
	OrderBGR
)

var orderNames = []string{"RGB", "RBG", "GRB", "GBR", "BRG", "BGR"}

func (o ColorOrder) String() string {
	if int(o) < 0 || int(o) >= len(orderNames) {
		return "UNKNOWN"
	}
	return orderNames[o]
}

// ParseColorOrder parses names like "grb" or "BGR".
func ParseColorOrder(s string) (ColorOrder, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range orderNames {
		if n == name {
			return ColorOrder(i), nil
		}
	}
	return OrderRGB, fmt.Errorf("unknown color order %q", s)
}

// Arrange puts r, g, b into the device's channel order.
func (o ColorOrder) Arrange(r, g, b uint8) [3]uint8 {
	switch o {
	case OrderRBG:
		return [3]uint8{r, b, g}
	case OrderGRB:
		return [3]uint8{g, r, b}
	case OrderGBR:
		return [3]uint8{g, b, r}
	case OrderBRG:
		return [3]uint8{b, r, g}
	case OrderBGR:
		return [3]uint8{b, g, r}
	default:
		return [3]uint8{r, g, b}
	}
}

// Stream is a Driver that encodes each shown frame as 3 bytes per element in
// the configured channel order and writes it to an io.Writer, e.g. a serial
// device or a pipe to a strip controller.
type Stream struct {
	w      io.Writer
	order  ColorOrder
	pixels []HSV
	buf    []byte
}

// NewStream creates a Stream of n elements writing to w.
func NewStream(w io.Writer, n int, order ColorOrder) *Stream {
	return &Stream{
		w:      w,
		order:  order,
		pixels: make([]HSV, n),
		buf:    make([]byte, 0, 3*n),
	}
}

// Len implements Driver.
func (s *Stream) Len() int {
	return len(s.pixels)
}

// Start implements Driver. It clears the strip by writing a dark frame.
func (s *Stream) Start() error {
	for i := range s.pixels {
		s.pixels[i] = HSV{}
	}
	if err := s.Show(); err != nil {
		return fmt.Errorf("start strip: %w", err)
	}
	return nil
}

// SetHSV implements Driver.
func (s *Stream) SetHSV(i int, h, sat, v float64) error {
	if err := checkIndex(i, len(s.pixels)); err != nil {
		return err
	}
	s.pixels[i] = HSV{H: h, S: sat, V: v}
	return nil
}

// Show implements Shower.
func (s *Stream) Show() error {
	s.buf = s.Encode(s.buf[:0])
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Encode appends the current frame's device bytes to dst.
func (s *Stream) Encode(dst []byte) []byte {
	for _, p := range s.pixels {
		r, g, b := p.RGB()
		ch := s.order.Arrange(r, g, b)
		dst = append(dst, ch[0], ch[1], ch[2])
	}
	return dst
}
