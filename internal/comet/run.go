package comet

import (
	"fmt"
	"time"

	"github.com/litescript/ls-starfield/internal/strip"
)

// Background is what a comet paints over and leaves afterglow in.
type Background interface {
	RenderTo(d strip.Driver) error
	Boost(i int, delta float64)
}

// SleepFunc blocks for d.
type SleepFunc func(d time.Duration)

// Execute runs the whole traversal: for every sub-frame it redraws the
// background, paints the trail over it, applies afterglow, shows the frame
// and sleeps StepDelay. It always runs to completion unless the driver
// fails.
func (p Params) Execute(bg Background, d strip.Driver, sleep SleepFunc) error {
	for fr := range p.Frames(d.Len()) {
		if err := bg.RenderTo(d); err != nil {
			return fmt.Errorf("comet background at head %d: %w", fr.Head, err)
		}
		for _, px := range fr.Pixels {
			if err := d.SetHSV(px.Pos, px.Color.H, px.Color.S, px.Color.V); err != nil {
				return fmt.Errorf("comet pixel %d: %w", px.Pos, err)
			}
			bg.Boost(px.Pos, px.Glow)
		}
		if err := strip.Show(d); err != nil {
			return fmt.Errorf("comet show: %w", err)
		}
		sleep(p.StepDelay)
	}
	return nil
}
