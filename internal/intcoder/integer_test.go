package intcoder

import (
	"math/rand"
	"testing"

	"github.com/hobu-io/golaz/rangecoder"
)

func TestIntegerCompressorRoundTrip(t *testing.T) {
	enc := rangecoder.NewEncoder()
	ic := New(32, 4)

	rng := rand.New(rand.NewSource(42))
	predicted := make([]int32, 2000)
	real := make([]int32, 2000)
	ctx := make([]uint32, 2000)
	prev := int32(0)
	for i := range predicted {
		predicted[i] = prev
		delta := int32(rng.Intn(2001) - 1000)
		if rng.Intn(20) == 0 {
			delta = int32(rng.Intn(1<<20)) - (1 << 19)
		}
		real[i] = prev + delta
		prev = real[i]
		ctx[i] = uint32(rng.Intn(4))
		ic.Compress(enc, predicted[i], real[i], ctx[i])
	}
	buf := enc.Done()

	dec := rangecoder.NewDecoder(buf)
	dc := New(32, 4)
	for i := range predicted {
		got := dc.Decompress(dec, predicted[i], ctx[i])
		if got != real[i] {
			t.Fatalf("sample %d: got %d want %d", i, got, real[i])
		}
	}
}

func TestMedian5TracksCenter(t *testing.T) {
	m := NewMedian5()
	for _, v := range []int32{1, 2, 3, 4, 5} {
		m.Add(v)
	}
	if got := m.Value(); got < 1 || got > 5 {
		t.Fatalf("median out of range of inputs: %d", got)
	}

	m2 := NewMedian5()
	for i := 0; i < 100; i++ {
		m2.Add(10)
	}
	if got := m2.Value(); got != 10 {
		t.Fatalf("steady-state median: got %d want 10", got)
	}
}
