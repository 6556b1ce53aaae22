package rangecoder

import (
	"math/rand"
	"testing"
)

func TestBitModelRoundTrip(t *testing.T) {
	enc := NewEncoder()
	em := NewBitModel()
	bits := make([]int, 2000)
	rng := rand.New(rand.NewSource(1))
	for i := range bits {
		if rng.Intn(10) == 0 {
			bits[i] = 1
		}
		enc.EncodeBit(em, bits[i])
	}
	buf := enc.Done()

	dec := NewDecoder(buf)
	dm := NewBitModel()
	for i, want := range bits {
		got := dec.DecodeBit(dm)
		if got != want {
			t.Fatalf("bit %d: got %d want %d", i, got, want)
		}
	}
}

func TestSymbolModelRoundTrip(t *testing.T) {
	const symbols = 17 // more than 16 symbols; decoded by the same linear scan
	enc := NewEncoder()
	em := NewSymbolModel(symbols, nil)
	syms := make([]uint32, 3000)
	rng := rand.New(rand.NewSource(2))
	for i := range syms {
		syms[i] = uint32(rng.Intn(symbols))
		enc.EncodeSymbol(em, syms[i])
	}
	buf := enc.Done()

	dec := NewDecoder(buf)
	dm := NewSymbolModel(symbols, nil)
	for i, want := range syms {
		got := dec.DecodeSymbol(dm)
		if got != want {
			t.Fatalf("symbol %d: got %d want %d", i, got, want)
		}
	}
}

func TestDirectBitsRoundTrip(t *testing.T) {
	enc := NewEncoder()
	vals := []struct {
		v uint32
		n uint
	}{
		{0x3, 2}, {0x1FF, 9}, {0x7FFFF, 19}, {0xABCDE, 20}, {0xFFFFFFFF, 32},
	}
	for _, tc := range vals {
		enc.EncodeDirectBits(tc.v, tc.n)
	}
	buf := enc.Done()

	dec := NewDecoder(buf)
	for i, tc := range vals {
		got := dec.DecodeDirectBits(tc.n)
		want := tc.v
		if tc.n < 32 {
			want &= (uint32(1) << tc.n) - 1
		}
		if got != want {
			t.Fatalf("case %d: got %#x want %#x", i, got, want)
		}
	}
}

func TestMixedStreamRoundTrip(t *testing.T) {
	enc := NewEncoder()
	bm := NewBitModel()
	sm := NewSymbolModel(6, nil)
	rng := rand.New(rand.NewSource(3))

	type op struct {
		kind int // 0 = bit, 1 = symbol, 2 = direct
		v    uint32
	}
	ops := make([]op, 5000)
	for i := range ops {
		switch rng.Intn(3) {
		case 0:
			ops[i] = op{0, uint32(rng.Intn(2))}
			enc.EncodeBit(bm, int(ops[i].v))
		case 1:
			ops[i] = op{1, uint32(rng.Intn(6))}
			enc.EncodeSymbol(sm, ops[i].v)
		default:
			ops[i] = op{2, uint32(rng.Intn(1 << 10))}
			enc.EncodeDirectBits(ops[i].v, 10)
		}
	}
	buf := enc.Done()

	dec := NewDecoder(buf)
	bm2 := NewBitModel()
	sm2 := NewSymbolModel(6, nil)
	for i, o := range ops {
		switch o.kind {
		case 0:
			if got := uint32(dec.DecodeBit(bm2)); got != o.v {
				t.Fatalf("op %d: bit got %d want %d", i, got, o.v)
			}
		case 1:
			if got := dec.DecodeSymbol(sm2); got != o.v {
				t.Fatalf("op %d: symbol got %d want %d", i, got, o.v)
			}
		default:
			if got := dec.DecodeDirectBits(10); got != o.v {
				t.Fatalf("op %d: direct got %d want %d", i, got, o.v)
			}
		}
	}
}
