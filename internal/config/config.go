// Package config holds the animation parameters and loads them from TOML or
// YAML files.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-starfield/internal/strip"
)

// Config holds every tunable of the animation. It is immutable once the
// animation starts.
type Config struct {
	NumLEDs int

	// Starfield
	StarMinBright       float64
	StarMaxBright       float64
	StarFadeSpeed       float64 // brightness change per frame
	StarNewTargetChance float64 // per star, per frame
	StarSaturationMax   float64
	StarHueSpread       float64 // degrees around 220°
	FrameDelay          time.Duration

	// Comets
	CometBaseChance    float64 // per twinkle frame
	CometMinTrail      int
	CometMaxTrail      int
	CometMinSpeed      time.Duration // delay between comet steps
	CometMaxSpeed      time.Duration
	CometHeadBrightMin float64
	CometHeadBrightMax float64
	AfterglowMax       float64
	CometHue           float64
	CometSat           float64

	// Driver
	ColorOrder strip.ColorOrder
}

// StarBaseHue is the centre of the star hue distribution, in degrees.
const StarBaseHue = 220.0

// DefaultConfig returns the parameters for a 66-LED strip.
func DefaultConfig() Config {
	return Config{
		NumLEDs: 66,

		StarMinBright:       0.02,
		StarMaxBright:       0.8,
		StarFadeSpeed:       0.01,
		StarNewTargetChance: 0.01,
		StarSaturationMax:   0.05,
		StarHueSpread:       20,
		FrameDelay:          50 * time.Millisecond, // ~20 FPS

		CometBaseChance:    0.00015,
		CometMinTrail:      3,
		CometMaxTrail:      8,
		CometMinSpeed:      15 * time.Millisecond,
		CometMaxSpeed:      35 * time.Millisecond,
		CometHeadBrightMin: 0.6,
		CometHeadBrightMax: 1.0,
		AfterglowMax:       0.4,
		CometHue:           StarBaseHue / 360.0,
		CometSat:           0.1,

		ColorOrder: strip.OrderBGR,
	}
}

// Validate reports parameter sets that are internally inconsistent.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.NumLEDs >= 1, "num_leds must be at least 1, got %d", c.NumLEDs)
	check(c.StarMinBright >= 0 && c.StarMinBright <= c.StarMaxBright && c.StarMaxBright <= 1,
		"star brightness range [%v, %v] must satisfy 0 <= min <= max <= 1", c.StarMinBright, c.StarMaxBright)
	check(c.StarFadeSpeed > 0, "star_fade_speed must be positive, got %v", c.StarFadeSpeed)
	check(isProbability(c.StarNewTargetChance), "star_new_target_chance %v not in [0, 1]", c.StarNewTargetChance)
	check(c.StarSaturationMax >= 0 && c.StarSaturationMax <= 1, "star_saturation_max %v not in [0, 1]", c.StarSaturationMax)
	check(c.StarHueSpread >= 0, "star_hue_spread must not be negative, got %v", c.StarHueSpread)
	check(c.FrameDelay >= 0, "twinkle_frame_delay must not be negative, got %v", c.FrameDelay)

	check(isProbability(c.CometBaseChance), "comet_base_chance %v not in [0, 1]", c.CometBaseChance)
	check(c.CometMinTrail >= 1 && c.CometMinTrail <= c.CometMaxTrail,
		"comet trail range [%d, %d] must satisfy 1 <= min <= max", c.CometMinTrail, c.CometMaxTrail)
	check(c.CometMinSpeed >= 0 && c.CometMinSpeed <= c.CometMaxSpeed,
		"comet speed range [%v, %v] must satisfy 0 <= min <= max", c.CometMinSpeed, c.CometMaxSpeed)
	check(c.CometHeadBrightMin >= 0 && c.CometHeadBrightMin <= c.CometHeadBrightMax && c.CometHeadBrightMax <= 1,
		"comet head brightness range [%v, %v] must satisfy 0 <= min <= max <= 1", c.CometHeadBrightMin, c.CometHeadBrightMax)
	check(c.AfterglowMax >= 0, "afterglow_max must not be negative, got %v", c.AfterglowMax)
	check(c.CometHue >= 0 && c.CometHue <= 1, "comet_hue %v not in [0, 1]", c.CometHue)
	check(c.CometSat >= 0 && c.CometSat <= 1, "comet_sat %v not in [0, 1]", c.CometSat)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
