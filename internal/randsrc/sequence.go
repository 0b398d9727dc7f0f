package randsrc

// Sequence is a scripted Source. Every draw consumes the next unit value
// (expected in [0, 1)) and maps it onto the requested range, so a test can
// state draws as fractions regardless of which method consumes them.
// Values repeat from the start once exhausted.
type Sequence struct {
	values []float64
	next   int
	drawn  int
}

// NewSequence returns a Sequence over values. With no values every draw is 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) unit() float64 {
	s.drawn++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	return s.unit()
}

// Uniform implements Source.
func (s *Sequence) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.unit()
}

// IntRange implements Source.
func (s *Sequence) IntRange(lo, hi int) int {
	u := s.unit()
	if hi <= lo {
		return lo
	}
	n := lo + int(u*float64(hi-lo+1))
	if n > hi {
		n = hi
	}
	return n
}

// Drawn reports how many draws have been consumed.
func (s *Sequence) Drawn() int {
	return s.drawn
}
