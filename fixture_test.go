package laz

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// fixturePath locates a canonical reference LAZ file on disk. No fixture
// ships with this module (no network fetch of third-party corpora happens
// here), so TestAgainstCanonicalFixture only runs when a developer has
// placed one locally.
func fixturePath() string {
	return filepath.Join("testdata", "autzen_trim.laz")
}

// TestAgainstCanonicalFixture decodes a real LASzip-written file and
// re-encodes it, checking that the original point stream survives exactly.
// This does not assert byte-for-byte file identity (this module's VLR
// padding, GeneratingSoftware string, and chunk boundaries need not match
// LASzip's own choices bit for bit), only that every decoded point survives
// a decode/re-encode/decode round trip unchanged.
func TestAgainstCanonicalFixture(t *testing.T) {
	path := fixturePath()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("skipping: canonical fixture not present at %s", path)
	}

	rd, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}

	var want []Point
	for {
		pt, err := rd.ReadPoint()
		if err != nil {
			break
		}
		want = append(want, pt)
	}
	if len(want) == 0 {
		t.Fatalf("fixture decoded zero points")
	}

	f := &memFile{}
	w, err := NewWriter(f, Options{Format: rd.Format, ExtraBytes: 0})
	if err != nil {
		t.Fatalf("opening writer: %v", err)
	}
	for _, pt := range want {
		if err := w.WritePoint(pt); err != nil {
			t.Fatalf("re-encoding point: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	rd2, err := NewReader(&memFile{buf: f.Bytes()})
	if err != nil {
		t.Fatalf("reopening re-encoded stream: %v", err)
	}
	for i, wantPt := range want {
		got, err := rd2.ReadPoint()
		if err != nil {
			t.Fatalf("reading point %d back: %v", i, err)
		}
		pointsEqual(t, rd.Format, 0, wantPt, got)
	}
}
