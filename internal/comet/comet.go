// Package comet composites a moving bright trail over the starfield.
//
// A comet is drawn once per sub-frame on top of a freshly rendered
// starfield, sliding fully on at one end of the strip and fully off at the
// other. Each lit position also leaves a little afterglow in the star
// beneath it.
package comet

import (
	"iter"
	"time"

	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/randsrc"
	"github.com/litescript/ls-starfield/internal/strip"
)

// Direction is the sign of the head's movement along the strip.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Params describe one comet. They are drawn once at launch and fixed for
// the whole traversal.
type Params struct {
	Direction      Direction
	Trail          int
	StepDelay      time.Duration
	HeadBrightness float64

	Hue          float64
	Saturation   float64
	AfterglowMax float64
}

// Draw picks random comet parameters for a strip of n elements. The draw
// order is trail length, direction, step delay, head brightness.
func Draw(cfg config.Config, n int, src randsrc.Source) Params {
	trail := src.IntRange(cfg.CometMinTrail, cfg.CometMaxTrail)
	if trail > n {
		trail = n
	}

	dir := Backward
	if src.IntRange(0, 1) == 0 {
		dir = Forward
	}

	delay := src.Uniform(cfg.CometMinSpeed.Seconds(), cfg.CometMaxSpeed.Seconds())
	head := src.Uniform(cfg.CometHeadBrightMin, cfg.CometHeadBrightMax)

	return Params{
		Direction:      dir,
		Trail:          trail,
		StepDelay:      time.Duration(delay * float64(time.Second)),
		HeadBrightness: head,
		Hue:            cfg.CometHue,
		Saturation:     cfg.CometSat,
		AfterglowMax:   cfg.AfterglowMax,
	}
}

// Bounds returns the head's first position, the exclusive end position and
// the step for a strip of n elements. The range lets the trail slide fully
// on and fully off the strip.
func (p Params) Bounds(n int) (start, end, step int) {
	if p.Direction == Backward {
		return n + p.Trail, -p.Trail, -1
	}
	return -p.Trail, n + p.Trail, 1
}

// Steps returns the number of sub-frames of a traversal over n elements.
func (p Params) Steps(n int) int {
	return n + 2*p.Trail
}

// Frac is the falloff fraction at trail offset k: 1 at the head, 1/trail at
// the tail.
func Frac(trail, k int) float64 {
	return float64(trail-k) / float64(trail)
}

// Brightness is the value drawn at trail offset k: head × frac².
func Brightness(head float64, trail, k int) float64 {
	f := Frac(trail, k)
	return head * f * f
}

// Pixel is one lit trail position within a sub-frame.
type Pixel struct {
	Pos    int
	Offset int
	Frac   float64
	Color  strip.HSV
	Glow   float64 // added to the star's brightness at Pos
}

// Frame is one sub-frame of a traversal.
type Frame struct {
	Head   int
	Pixels []Pixel // on-strip positions only, head first
}

// Frames yields every sub-frame of the traversal over n elements, in order.
func (p Params) Frames(n int) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		start, end, step := p.Bounds(n)
		for head := start; head != end; head += step {
			if !yield(p.frame(head, n)) {
				return
			}
		}
	}
}

func (p Params) frame(head, n int) Frame {
	fr := Frame{Head: head}
	for k := 0; k < p.Trail; k++ {
		pos := head - k*int(p.Direction)
		if pos < 0 || pos >= n {
			continue
		}
		frac := Frac(p.Trail, k)
		v := Brightness(p.HeadBrightness, p.Trail, k)
		fr.Pixels = append(fr.Pixels, Pixel{
			Pos:    pos,
			Offset: k,
			Frac:   frac,
			// head more coloured, tail whiter
			Color: strip.HSV{H: p.Hue, S: p.Saturation * frac, V: v},
			Glow:  v * p.AfterglowMax,
		})
	}
	return fr
}
