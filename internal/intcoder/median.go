package intcoder

// Median5 is the streaming median predictor used for X/Y/Z delta
// prediction in point10 and point14. It keeps five values in sorted order
// and reports the middle one in O(1); each Add replaces whichever extreme
// element fell on the opposite side of the previous insertion, which keeps
// the five-element window roughly current without a full resort. This is
// not a strict FIFO window over the last five raw inputs — it is the exact
// amortized-O(1) scheme the reference predictor uses, and the per-field
// codecs depend on reproducing its specific sequence of comparisons (not
// just "a" median-of-5) to stay bit-exact against it.
type Median5 struct {
	values [5]int32
	high   bool
}

// NewMedian5 returns a Median5 with all five slots at 0 and the high flag
// set, matching the predictor's initial state.
func NewMedian5() *Median5 {
	return &Median5{high: true}
}

// Add inserts v into the sorted window, evicting one of the current
// extremes depending on which side of center the previous insertion fell.
func (m *Median5) Add(v int32) {
	vs := &m.values
	if m.high {
		if v < vs[2] {
			vs[4] = vs[3]
			vs[3] = vs[2]
			switch {
			case v < vs[0]:
				vs[2] = vs[1]
				vs[1] = vs[0]
				vs[0] = v
			case v < vs[1]:
				vs[2] = vs[1]
				vs[1] = v
			default:
				vs[2] = v
			}
		} else {
			if v < vs[3] {
				vs[4] = vs[3]
				vs[3] = v
			} else {
				vs[4] = v
			}
			m.high = false
		}
	} else {
		if vs[2] < v {
			vs[0] = vs[1]
			vs[1] = vs[2]
			switch {
			case v < vs[3]:
				vs[2] = v
			case v < vs[4]:
				vs[2] = vs[3]
				vs[3] = v
			default:
				vs[2] = vs[3]
				vs[3] = vs[4]
				vs[4] = v
			}
		} else {
			if v < vs[1] {
				vs[0] = vs[1]
				vs[1] = v
			} else {
				vs[0] = v
			}
			m.high = true
		}
	}
}

// Value returns the current median.
func (m *Median5) Value() int32 {
	return m.values[2]
}
