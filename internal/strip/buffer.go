package strip

import "sync"

// Buffer is an in-memory Driver. It keeps the current frame, counts writes
// and optionally hands a copy of every shown frame to OnShow.
type Buffer struct {
	mu      sync.Mutex
	pixels  []HSV
	started bool
	writes  int
	shows   int

	// OnShow receives a copy of the frame on every Show.
	OnShow func(frame []HSV)
}

// NewBuffer creates a dark buffer of n elements.
func NewBuffer(n int) *Buffer {
	return &Buffer{pixels: make([]HSV, n)}
}

// Len implements Driver.
func (b *Buffer) Len() int {
	return len(b.pixels)
}

// Start implements Driver.
func (b *Buffer) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = true
	for i := range b.pixels {
		b.pixels[i] = HSV{}
	}
	return nil
}

// SetHSV implements Driver.
func (b *Buffer) SetHSV(i int, h, s, v float64) error {
	if err := checkIndex(i, len(b.pixels)); err != nil {
		return err
	}
	b.mu.Lock()
	b.pixels[i] = HSV{H: h, S: s, V: v}
	b.writes++
	b.mu.Unlock()
	return nil
}

// Show implements Shower.
func (b *Buffer) Show() error {
	b.mu.Lock()
	b.shows++
	var frame []HSV
	if b.OnShow != nil {
		frame = make([]HSV, len(b.pixels))
		copy(frame, b.pixels)
	}
	b.mu.Unlock()

	if frame != nil {
		b.OnShow(frame)
	}
	return nil
}

// Frame returns a copy of the current pixels.
func (b *Buffer) Frame() []HSV {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]HSV, len(b.pixels))
	copy(out, b.pixels)
	return out
}

// At returns element i.
func (b *Buffer) At(i int) HSV {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pixels[i]
}

// Started reports whether Start has been called.
func (b *Buffer) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Writes returns the number of SetHSV calls so far.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Shows returns the number of Show calls so far.
func (b *Buffer) Shows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}
