package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-starfield/internal/strip"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// fileConfig mirrors Config with optional fields; keys absent from the file
// keep their defaults.
type fileConfig struct {
	NumLEDs *int `toml:"num_leds" yaml:"num_leds"`

	StarMinBright       *float64  `toml:"star_min_bright" yaml:"star_min_bright"`
	StarMaxBright       *float64  `toml:"star_max_bright" yaml:"star_max_bright"`
	StarFadeSpeed       *float64  `toml:"star_fade_speed" yaml:"star_fade_speed"`
	StarNewTargetChance *float64  `toml:"star_new_target_chance" yaml:"star_new_target_chance"`
	StarSaturationMax   *float64  `toml:"star_saturation_max" yaml:"star_saturation_max"`
	StarHueSpread       *float64  `toml:"star_hue_spread" yaml:"star_hue_spread"`
	FrameDelay          *Duration `toml:"twinkle_frame_delay" yaml:"twinkle_frame_delay"`

	CometBaseChance    *float64  `toml:"comet_base_chance" yaml:"comet_base_chance"`
	CometMinTrail      *int      `toml:"comet_min_trail" yaml:"comet_min_trail"`
	CometMaxTrail      *int      `toml:"comet_max_trail" yaml:"comet_max_trail"`
	CometMinSpeed      *Duration `toml:"comet_min_speed" yaml:"comet_min_speed"`
	CometMaxSpeed      *Duration `toml:"comet_max_speed" yaml:"comet_max_speed"`
	CometHeadBrightMin *float64  `toml:"comet_head_bright_min" yaml:"comet_head_bright_min"`
	CometHeadBrightMax *float64  `toml:"comet_head_bright_max" yaml:"comet_head_bright_max"`
	AfterglowMax       *float64  `toml:"afterglow_max" yaml:"afterglow_max"`
	CometHue           *float64  `toml:"comet_hue" yaml:"comet_hue"`
	CometSat           *float64  `toml:"comet_sat" yaml:"comet_sat"`

	ColorOrder *string `toml:"color_order" yaml:"color_order"`
}

// Load reads path on top of DefaultConfig and validates the result. The
// format is chosen by extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &raw)
	case ".yaml", ".yml":
		err = decodeYAML(data, &raw)
	default:
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	cfg := DefaultConfig()
	if err := raw.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, raw *fileConfig) error {
	meta, err := toml.Decode(string(data), raw)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, raw *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (f fileConfig) apply(cfg *Config) error {
	setInt(&cfg.NumLEDs, f.NumLEDs)

	setFloat(&cfg.StarMinBright, f.StarMinBright)
	setFloat(&cfg.StarMaxBright, f.StarMaxBright)
	setFloat(&cfg.StarFadeSpeed, f.StarFadeSpeed)
	setFloat(&cfg.StarNewTargetChance, f.StarNewTargetChance)
	setFloat(&cfg.StarSaturationMax, f.StarSaturationMax)
	setFloat(&cfg.StarHueSpread, f.StarHueSpread)
	setDuration(&cfg.FrameDelay, f.FrameDelay)

	setFloat(&cfg.CometBaseChance, f.CometBaseChance)
	setInt(&cfg.CometMinTrail, f.CometMinTrail)
	setInt(&cfg.CometMaxTrail, f.CometMaxTrail)
	setDuration(&cfg.CometMinSpeed, f.CometMinSpeed)
	setDuration(&cfg.CometMaxSpeed, f.CometMaxSpeed)
	setFloat(&cfg.CometHeadBrightMin, f.CometHeadBrightMin)
	setFloat(&cfg.CometHeadBrightMax, f.CometHeadBrightMax)
	setFloat(&cfg.AfterglowMax, f.AfterglowMax)
	setFloat(&cfg.CometHue, f.CometHue)
	setFloat(&cfg.CometSat, f.CometSat)

	if f.ColorOrder != nil {
		order, err := strip.ParseColorOrder(*f.ColorOrder)
		if err != nil {
			return fmt.Errorf("color_order: %w", err)
		}
		cfg.ColorOrder = order
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// Duration accepts either a Go duration string ("50ms") or a bare number of
// seconds (0.05).
type Duration struct {
	time.Duration
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		return d.parse(x)
	case int64:
		d.Duration = time.Duration(x) * time.Second
	case float64:
		d.Duration = secondsToDuration(x)
	default:
		return fmt.Errorf("invalid duration %v (%T)", v, v)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = secondsToDuration(secs)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
