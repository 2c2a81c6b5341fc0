package sim

// Sequence supplies driving times one at a time. Next returns false once the
// sequence is exhausted; exhaustion is not an error.
type Sequence interface {
	Next() (float64, bool)
}

// SequenceFunc adapts a generator function into a Sequence. Use it for
// unbounded streams.
type SequenceFunc func() (float64, bool)

// Next calls f.
func (f SequenceFunc) Next() (float64, bool) {
	return f()
}

// sliceSequence walks a fixed slice of values.
type sliceSequence struct {
	values []float64
	pos    int
}

// SliceSequence returns a finite Sequence over values. The slice is not copied.
func SliceSequence(values ...float64) Sequence {
	return &sliceSequence{values: values}
}

func (s *sliceSequence) Next() (float64, bool) {
	if s.pos >= len(s.values) {
		return 0, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// peekSequence buffers one value so the engine can look at the next service
// duration without consuming it.
type peekSequence struct {
	src      Sequence
	buffered bool
	value    float64
	done     bool
}

func (p *peekSequence) peek() (float64, bool) {
	if p.buffered {
		return p.value, true
	}
	if p.done {
		return 0, false
	}
	v, ok := p.src.Next()
	if !ok {
		p.done = true
		return 0, false
	}
	p.value, p.buffered = v, true
	return v, true
}

func (p *peekSequence) next() (float64, bool) {
	v, ok := p.peek()
	if ok {
		p.buffered = false
	}
	return v, ok
}
