package hasher

import (
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestHash32_Stable(t *testing.T) {
	a := Hash32([]byte("cover bytes"))
	b := Hash32([]byte("cover bytes"))
	if a != b {
		t.Fatalf("hash not stable: %08x vs %08x", a, b)
	}
	if a == Hash32([]byte("cover bytez")) {
		t.Fatal("different content hashed equal")
	}
}

func TestHash32_Folded(t *testing.T) {
	data := []byte("folded")
	full := xxhash.Sum64(data)
	want := uint32(full>>32) ^ uint32(full)
	if got := Hash32(data); got != want {
		t.Fatalf("Hash32 = %08x, want %08x", got, want)
	}
}

func TestContentHash_Length(t *testing.T) {
	full := ContentHash([]byte("x"), 0)
	if len(full) != 16 {
		t.Fatalf("full hash length = %d, want 16", len(full))
	}
	if short := ContentHash([]byte("x"), 8); short != full[:8] {
		t.Fatalf("truncated hash %q is not a prefix of %q", short, full)
	}
}
