package rangecoder

// BitModel is an adaptive two-symbol probability model. Its prob0 value is
// recomputed on a geometric update cadence that starts aggressive (every 4
// observations) and relaxes to once every 64, matching the cadence a freshly
// created model needs to converge quickly and a long-lived one needs to stay
// cheap.
//
// The zero value is not ready to use; call NewBitModel.
type BitModel struct {
	bit0Count   uint32
	bitCount    uint32
	bit0Prob    uint32
	updateCycle uint32
	untilUpdate uint32
}

// NewBitModel returns a BitModel initialized to the equiprobable state.
func NewBitModel() *BitModel {
	m := &BitModel{}
	m.Reset()
	return m
}

// Reset restores the model to its initial equiprobable state.
func (m *BitModel) Reset() {
	m.bit0Count = 1
	m.bitCount = 2
	m.bit0Prob = 1 << (BMLengthShift - 1)
	m.updateCycle = 4
	m.untilUpdate = 4
}

func (m *BitModel) update() {
	m.bitCount += m.updateCycle
	if m.bitCount > BMMaxCount {
		m.bitCount = (m.bitCount + 1) >> 1
		m.bit0Count = (m.bit0Count + 1) >> 1
		if m.bit0Count == m.bitCount {
			m.bitCount++
		}
	}

	scale := uint32(0x80000000) / m.bitCount
	m.bit0Prob = (m.bit0Count * scale) >> (31 - BMLengthShift)

	m.updateCycle = (5 * m.updateCycle) >> 2
	if m.updateCycle > 64 {
		m.updateCycle = 64
	}
	m.untilUpdate = m.updateCycle
}

// SymbolModel is an adaptive n-symbol probability model backed by a
// cumulative distribution table scaled to DMLengthShift bits of precision.
// The first update comes after (n+6)/2 symbols; the cadence then grows by
// 5/4 each update, capped at 8*(n+6); counts halve whenever the running
// total exceeds DMMaxCount.
//
// The zero value is not ready to use; call NewSymbolModel.
type SymbolModel struct {
	symbols      uint32
	lastSymbol   uint32
	counts       []uint32
	distribution []uint32
	totalCount   uint32
	updateCycle  uint32
	untilUpdate  uint32
}

// NewSymbolModel returns a SymbolModel over the given symbol count,
// optionally seeded with an initial per-symbol frequency table (used by the
// GPS-time sequence-multiplier codec). A nil table starts every symbol at
// frequency 1.
func NewSymbolModel(symbols uint32, initial []uint32) *SymbolModel {
	m := &SymbolModel{
		symbols:      symbols,
		lastSymbol:   symbols - 1,
		counts:       make([]uint32, symbols),
		distribution: make([]uint32, symbols+1),
	}
	m.Reset(initial)
	return m
}

// Reset restores the model to its initial state, optionally from a supplied
// frequency table.
func (m *SymbolModel) Reset(initial []uint32) {
	for k := range m.counts {
		if initial != nil {
			m.counts[k] = initial[k]
		} else {
			m.counts[k] = 1
		}
	}
	m.totalCount = 0
	m.updateCycle = m.symbols
	m.rebuild()
	m.updateCycle = (m.symbols + 6) >> 1
	m.untilUpdate = m.updateCycle
}

func (m *SymbolModel) rebuild() {
	m.totalCount += m.updateCycle
	if m.totalCount > DMMaxCount {
		m.totalCount = 0
		for n := range m.counts {
			m.counts[n] = (m.counts[n] + 1) >> 1
			m.totalCount += m.counts[n]
		}
	}

	scale := uint32(0x80000000) / m.totalCount
	sum := uint32(0)
	for k := uint32(0); k < m.symbols; k++ {
		m.distribution[k] = (scale * sum) >> (31 - DMLengthShift)
		sum += m.counts[k]
	}
	m.distribution[m.symbols] = 1 << DMLengthShift

	m.updateCycle = (5 * m.updateCycle) >> 2
	maxCycle := (m.symbols + 6) << 3
	if m.updateCycle > maxCycle {
		m.updateCycle = maxCycle
	}
	m.untilUpdate = m.updateCycle
}

// bump increments the observed symbol's frequency count. Called by the
// encoder/decoder after every EncodeSymbol/DecodeSymbol.
func (m *SymbolModel) bump(sym uint32) {
	m.counts[sym]++
	m.untilUpdate--
	if m.untilUpdate == 0 {
		m.rebuild()
	}
}
