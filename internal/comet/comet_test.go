package comet

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/randsrc"
	"github.com/litescript/ls-starfield/internal/starfield"
	"github.com/litescript/ls-starfield/internal/strip"
)

func testParams(dir Direction, trail int, head float64) Params {
	cfg := config.DefaultConfig()
	return Params{
		Direction:      dir,
		Trail:          trail,
		StepDelay:      20 * time.Millisecond,
		HeadBrightness: head,
		Hue:            cfg.CometHue,
		Saturation:     cfg.CometSat,
		AfterglowMax:   cfg.AfterglowMax,
	}
}

func TestDraw(t *testing.T) {
	cfg := config.DefaultConfig()

	// trail, direction, delay, head
	p := Draw(cfg, 66, randsrc.NewSequence(0.5, 0.7, 0.5, 0.25))

	if p.Trail != 6 {
		t.Errorf("Trail = %d, want 6", p.Trail)
	}
	if p.Direction != Backward {
		t.Errorf("Direction = %v, want backward", p.Direction)
	}
	if d := p.StepDelay - 25*time.Millisecond; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("StepDelay = %v, want 25ms", p.StepDelay)
	}
	if math.Abs(p.HeadBrightness-0.7) > 1e-12 {
		t.Errorf("HeadBrightness = %v, want 0.7", p.HeadBrightness)
	}
	if p.Hue != cfg.CometHue || p.Saturation != cfg.CometSat || p.AfterglowMax != cfg.AfterglowMax {
		t.Errorf("colour params = %+v, want config values", p)
	}
}

func TestDraw_TrailClampedToStrip(t *testing.T) {
	cfg := config.DefaultConfig()
	p := Draw(cfg, 2, randsrc.NewSequence(0.99, 0.1, 0, 0))
	if p.Trail != 2 {
		t.Errorf("Trail = %d, want 2", p.Trail)
	}
	if p.Direction != Forward {
		t.Errorf("Direction = %v, want forward", p.Direction)
	}
}

func TestDraw_Ranges(t *testing.T) {
	cfg := config.DefaultConfig()
	src := randsrc.New(9)
	dirs := map[Direction]int{}

	for i := 0; i < 1000; i++ {
		p := Draw(cfg, cfg.NumLEDs, src)
		if p.Trail < cfg.CometMinTrail || p.Trail > cfg.CometMaxTrail {
			t.Fatalf("Trail = %d out of range", p.Trail)
		}
		if p.StepDelay < cfg.CometMinSpeed || p.StepDelay > cfg.CometMaxSpeed {
			t.Fatalf("StepDelay = %v out of range", p.StepDelay)
		}
		if p.HeadBrightness < cfg.CometHeadBrightMin || p.HeadBrightness > cfg.CometHeadBrightMax {
			t.Fatalf("HeadBrightness = %v out of range", p.HeadBrightness)
		}
		dirs[p.Direction]++
	}
	if dirs[Forward] == 0 || dirs[Backward] == 0 {
		t.Errorf("directions drawn = %v, want both", dirs)
	}
}

func TestBounds(t *testing.T) {
	start, end, step := testParams(Forward, 4, 1).Bounds(10)
	if start != -4 || end != 14 || step != 1 {
		t.Errorf("forward Bounds = (%d, %d, %d), want (-4, 14, 1)", start, end, step)
	}

	start, end, step = testParams(Backward, 4, 1).Bounds(10)
	if start != 14 || end != -4 || step != -1 {
		t.Errorf("backward Bounds = (%d, %d, %d), want (14, -4, -1)", start, end, step)
	}
}

func heads(p Params, n int) []int {
	var out []int
	for fr := range p.Frames(n) {
		out = append(out, fr.Head)
	}
	return out
}

func TestFrames_FullTraversal(t *testing.T) {
	const n, trail = 10, 4

	var want []int
	for h := -trail; h <= n+trail-1; h++ {
		want = append(want, h)
	}
	fwd := testParams(Forward, trail, 1)
	if diff := cmp.Diff(want, heads(fwd, n)); diff != "" {
		t.Errorf("forward heads mismatch (-want +got):\n%s", diff)
	}
	if fwd.Steps(n) != len(want) {
		t.Errorf("Steps = %d, want %d", fwd.Steps(n), len(want))
	}

	want = want[:0]
	for h := n + trail; h > -trail; h-- {
		want = append(want, h)
	}
	if diff := cmp.Diff(want, heads(testParams(Backward, trail, 1), n)); diff != "" {
		t.Errorf("backward heads mismatch (-want +got):\n%s", diff)
	}
}

func TestFrames_EveryPositionLitAndCleared(t *testing.T) {
	const n = 10
	for _, dir := range []Direction{Forward, Backward} {
		p := testParams(dir, 3, 1)
		var first, last Frame
		lit := make(map[int]bool)
		i := 0
		for fr := range p.Frames(n) {
			if i == 0 {
				first = fr
			}
			last = fr
			for _, px := range fr.Pixels {
				if px.Pos < 0 || px.Pos >= n {
					t.Fatalf("%v: pixel %d off strip", dir, px.Pos)
				}
				lit[px.Pos] = true
			}
			i++
		}
		if len(first.Pixels) != 0 {
			t.Errorf("%v: first frame has %d lit pixels, want 0", dir, len(first.Pixels))
		}
		// backward stops one step early, with its tail end still on element 0
		if wantLast := map[Direction]int{Forward: 0, Backward: 1}[dir]; len(last.Pixels) != wantLast {
			t.Errorf("%v: last frame has %d lit pixels, want %d", dir, len(last.Pixels), wantLast)
		}
		if len(lit) != n {
			t.Errorf("%v: lit %d positions, want %d", dir, len(lit), n)
		}
	}
}

func TestFrames_EarlyStop(t *testing.T) {
	count := 0
	for range testParams(Forward, 3, 1).Frames(10) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestFrames_TrailShape(t *testing.T) {
	const (
		head = 0.9
		n    = 12
	)
	for _, dir := range []Direction{Forward, Backward} {
		for trail := 1; trail <= 8; trail++ {
			p := testParams(dir, trail, head)
			for fr := range p.Frames(n) {
				prev := math.Inf(1)
				for _, px := range fr.Pixels {
					want := head * math.Pow(float64(trail-px.Offset)/float64(trail), 2)
					if math.Abs(px.Color.V-want) > 1e-12 {
						t.Errorf("%v trail %d head %d offset %d: V = %v, want %v",
							dir, trail, fr.Head, px.Offset, px.Color.V, want)
					}
					if got := Brightness(head, trail, px.Offset); got != px.Color.V {
						t.Errorf("Brightness(%v, %d, %d) = %v, frame wrote %v", head, trail, px.Offset, got, px.Color.V)
					}
					// pixels are listed head first, so values fall along the trail
					if px.Color.V >= prev {
						t.Errorf("%v trail %d head %d: V not decreasing at offset %d", dir, trail, fr.Head, px.Offset)
					}
					prev = px.Color.V
				}
			}
		}
	}
}

func frameAt(t *testing.T, p Params, n, head int) Frame {
	t.Helper()
	for fr := range p.Frames(n) {
		if fr.Head == head {
			return fr
		}
	}
	t.Fatalf("no frame with head %d", head)
	return Frame{}
}

func TestFrames_EnteringStrip(t *testing.T) {
	p := testParams(Forward, 4, 0.8)
	approx := cmpopts.EquateApprox(0, 1e-12)

	// entering: the head is the only on-strip element at head 0
	got := frameAt(t, p, 10, 0)
	want := []Pixel{{
		Pos: 0, Offset: 0, Frac: 1,
		Color: strip.HSV{H: p.Hue, S: p.Saturation, V: 0.8},
		Glow:  0.8 * p.AfterglowMax,
	}}
	if diff := cmp.Diff(want, got.Pixels, approx); diff != "" {
		t.Errorf("head 0 pixels mismatch (-want +got):\n%s", diff)
	}

	// tail end reaches position 0 at head 3: frac 0.25, brightness 0.05
	got = frameAt(t, p, 10, 3)
	if len(got.Pixels) != 4 {
		t.Fatalf("head 3 has %d pixels, want 4", len(got.Pixels))
	}
	tail := got.Pixels[3]
	if tail.Pos != 0 || tail.Offset != 3 {
		t.Errorf("tail pixel = %+v, want pos 0 offset 3", tail)
	}
	if math.Abs(tail.Frac-0.25) > 1e-12 || math.Abs(tail.Color.V-0.05) > 1e-12 {
		t.Errorf("tail frac, value = %v, %v, want 0.25, 0.05", tail.Frac, tail.Color.V)
	}
	if math.Abs(tail.Color.S-p.Saturation*0.25) > 1e-12 {
		t.Errorf("tail saturation = %v, want %v", tail.Color.S, p.Saturation*0.25)
	}
	for i, px := range got.Pixels {
		if px.Pos != 3-i {
			t.Errorf("pixel %d at pos %d, want %d", i, px.Pos, 3-i)
		}
	}
}

func TestFrames_BackwardTrailFollowsHead(t *testing.T) {
	fr := frameAt(t, testParams(Backward, 3, 1), 10, 5)
	var got []int
	for _, px := range fr.Pixels {
		got = append(got, px.Pos)
	}
	if diff := cmp.Diff([]int{5, 6, 7}, got); diff != "" {
		t.Errorf("backward trail positions (-want +got):\n%s", diff)
	}
}

// recordingDriver remembers the frame that was shown on every Show.
type recordingDriver struct {
	*strip.Buffer
	shown [][]strip.HSV
}

func newRecordingDriver(n int) *recordingDriver {
	d := &recordingDriver{Buffer: strip.NewBuffer(n)}
	d.OnShow = func(f []strip.HSV) { d.shown = append(d.shown, f) }
	return d
}

func testField(n int, current float64) (*starfield.Field, config.Config) {
	cfg := config.DefaultConfig()
	cfg.NumLEDs = n
	stars := make([]starfield.Star, n)
	for i := range stars {
		stars[i] = starfield.Star{Current: current, Target: current, Hue: 0.6, Saturation: 0.02}
	}
	return starfield.NewWithStars(cfg, randsrc.NewSequence(), stars), cfg
}

func TestExecute(t *testing.T) {
	const n = 10
	field, cfg := testField(n, 0.1)
	p := testParams(Forward, 4, 0.8)
	d := newRecordingDriver(n)

	var sleeps []time.Duration
	err := p.Execute(field, d, func(dur time.Duration) { sleeps = append(sleeps, dur) })
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	steps := p.Steps(n)
	if len(d.shown) != steps || len(sleeps) != steps {
		t.Fatalf("shown %d frames, slept %d times, want %d", len(d.shown), len(sleeps), steps)
	}
	for _, s := range sleeps {
		if s != p.StepDelay {
			t.Fatalf("slept %v, want %v", s, p.StepDelay)
		}
	}

	// the last frame has the trail fully off-strip: pure starfield
	last := d.shown[len(d.shown)-1]
	for i, px := range last {
		if px.H != 0.6 {
			t.Errorf("last frame element %d still painted by comet: %+v", i, px)
		}
	}

	// every star got afterglow below the ceiling; targets stay put
	for i := 0; i < n; i++ {
		s := field.Star(i)
		if s.Current <= 0.1 {
			t.Errorf("star %d Current = %v, want afterglow above 0.1", i, s.Current)
		}
		if s.Current > cfg.StarMaxBright {
			t.Errorf("star %d Current = %v above ceiling", i, s.Current)
		}
		if s.Target != 0.1 {
			t.Errorf("star %d Target = %v, want 0.1", i, s.Target)
		}
	}
}

func TestExecute_CometOverwritesBackground(t *testing.T) {
	const n = 10
	field, _ := testField(n, 0.1)
	p := testParams(Forward, 4, 0.8)
	d := newRecordingDriver(n)

	if err := p.Execute(field, d, func(time.Duration) {}); err != nil {
		t.Fatal(err)
	}

	// frame index for head 3 is 3 - (-4) = 7
	frame := d.shown[7]
	if got := frame[0]; math.Abs(got.V-0.05) > 1e-12 || got.H != p.Hue {
		t.Errorf("pos 0 at head 3 = %+v, want comet tail with V 0.05", got)
	}
	if got := frame[3]; math.Abs(got.V-0.8) > 1e-12 {
		t.Errorf("pos 3 at head 3 = %+v, want comet head with V 0.8", got)
	}
	if got := frame[4]; got.H != 0.6 {
		t.Errorf("pos 4 at head 3 = %+v, want background star", got)
	}
}

func TestExecute_AfterglowBound(t *testing.T) {
	const n = 6
	field, cfg := testField(n, 0.75)
	p := testParams(Backward, 3, 1)
	d := newRecordingDriver(n)

	if err := p.Execute(field, d, func(time.Duration) {}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if got := field.Star(i).Current; got != cfg.StarMaxBright {
			t.Errorf("star %d Current = %v, want clamp at %v", i, got, cfg.StarMaxBright)
		}
	}
}

type failingDriver struct {
	*strip.Buffer
	failAt int
}

func (f *failingDriver) SetHSV(i int, h, s, v float64) error {
	if f.Writes() >= f.failAt {
		return strip.ErrIndexRange
	}
	return f.Buffer.SetHSV(i, h, s, v)
}

func TestExecute_DriverError(t *testing.T) {
	field, _ := testField(5, 0.1)
	d := &failingDriver{Buffer: strip.NewBuffer(5), failAt: 12}

	err := testParams(Forward, 3, 1).Execute(field, d, func(time.Duration) {})
	if err == nil {
		t.Fatal("Execute should return the driver error")
	}
}
