package strip

// Multi mirrors every call onto several drivers of the same length. The
// first error stops the fan-out and is returned.
type Multi []Driver

// Len implements Driver. It reports the shortest member.
func (m Multi) Len() int {
	if len(m) == 0 {
		return 0
	}
	n := m[0].Len()
	for _, d := range m[1:] {
		if l := d.Len(); l < n {
			n = l
		}
	}
	return n
}

// Start implements Driver.
func (m Multi) Start() error {
	for _, d := range m {
		if err := d.Start(); err != nil {
			return err
		}
	}
	return nil
}

// SetHSV implements Driver.
func (m Multi) SetHSV(i int, h, s, v float64) error {
	for _, d := range m {
		if err := d.SetHSV(i, h, s, v); err != nil {
			return err
		}
	}
	return nil
}

// Show implements Shower.
func (m Multi) Show() error {
	for _, d := range m {
		if err := Show(d); err != nil {
			return err
		}
	}
	return nil
}
