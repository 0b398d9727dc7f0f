// Package starfield holds the per-element twinkle state of the strip.
//
// Every element is a star that eases its brightness linearly toward a
// target. Targets are occasionally resampled from a distribution skewed
// toward dim values, so most stars are faint and a few are bright.
package starfield

import (
	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/randsrc"
	"github.com/litescript/ls-starfield/internal/strip"
)

// Star is the state of one strip element. Hue and Saturation are fixed
// after Init; Current and Target stay within [StarMinBright, StarMaxBright].
type Star struct {
	Current    float64
	Target     float64
	Hue        float64 // fraction of 360°
	Saturation float64
}

// Field owns the stars of a strip.
type Field struct {
	cfg   config.Config
	src   randsrc.Source
	stars []Star
}

// New creates a field of cfg.NumLEDs dark stars. Call Init before the first
// Update or Render.
func New(cfg config.Config, src randsrc.Source) *Field {
	return &Field{
		cfg:   cfg,
		src:   src,
		stars: make([]Star, cfg.NumLEDs),
	}
}

// NewWithStars creates a field from explicit star records. The field takes
// ownership of stars.
func NewWithStars(cfg config.Config, src randsrc.Source, stars []Star) *Field {
	return &Field{cfg: cfg, src: src, stars: stars}
}

// RandomBrightness draws a brightness in [lo, hi] biased toward lo: a
// uniform draw is squared before being mapped onto the range.
func RandomBrightness(src randsrc.Source, lo, hi float64) float64 {
	x := src.Uniform(0, 1)
	return lo + x*x*(hi-lo)
}

func (f *Field) randomBrightness() float64 {
	return RandomBrightness(f.src, f.cfg.StarMinBright, f.cfg.StarMaxBright)
}

// Init gives every star a random brightness, target and slight colour
// variation around a cool white.
func (f *Field) Init() {
	half := f.cfg.StarHueSpread / 2
	for i := range f.stars {
		s := &f.stars[i]
		s.Current = f.randomBrightness()
		s.Target = f.randomBrightness()
		s.Hue = (config.StarBaseHue + f.src.Uniform(-half, half)) / 360.0
		s.Saturation = f.src.Uniform(0, f.cfg.StarSaturationMax)
	}
}

// Update advances every star by one frame: occasionally pick a new target,
// then step the brightness toward it by StarFadeSpeed without overshooting.
func (f *Field) Update() {
	speed := f.cfg.StarFadeSpeed
	for i := range f.stars {
		s := &f.stars[i]
		if f.src.Float64() < f.cfg.StarNewTargetChance {
			s.Target = f.randomBrightness()
		}
		s.Current = ease(s.Current, s.Target, speed)
	}
}

func ease(cur, tgt, step float64) float64 {
	switch {
	case cur < tgt:
		cur += step
		if cur > tgt {
			cur = tgt
		}
	case cur > tgt:
		cur -= step
		if cur < tgt {
			cur = tgt
		}
	}
	return cur
}

// Render returns the colour of star i. i must be in range.
func (f *Field) Render(i int) (h, s, v float64) {
	st := &f.stars[i]
	return st.Hue, st.Saturation, st.Current
}

// RenderTo writes every star to d.
func (f *Field) RenderTo(d strip.Driver) error {
	for i := range f.stars {
		h, s, v := f.Render(i)
		if err := d.SetHSV(i, h, s, v); err != nil {
			return err
		}
	}
	return nil
}

// Boost raises star i's brightness by delta, capped at StarMaxBright. The
// target is left alone, so the star eases back down on later updates.
func (f *Field) Boost(i int, delta float64) {
	s := &f.stars[i]
	s.Current = min(s.Current+delta, f.cfg.StarMaxBright)
}

// Len returns the number of stars.
func (f *Field) Len() int {
	return len(f.stars)
}

// Star returns a copy of star i.
func (f *Field) Star(i int) Star {
	return f.stars[i]
}

// Stars returns a copy of all stars.
func (f *Field) Stars() []Star {
	out := make([]Star, len(f.stars))
	copy(out, f.stars)
	return out
}
