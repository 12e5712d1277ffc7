package chain

import (
	"testing"
)

func TestHashHexRoundTrip(t *testing.T) {
	h := HashBytes([]byte("regnode"))
	parsed, err := ParseHash(h.Hex())
	if err != nil {
		t.Fatal("ParseHash", err)
	}
	if parsed != h {
		t.Fatal("ParseHash(h.Hex()) != h")
	}
}

func TestHashHexIsReversed(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = byte(i)
	}
	hex := h.Hex()
	// display order leads with the last internal byte (0x1f)
	if hex[:2] != "1f" {
		t.Fatalf("expected display hex to start with 1f, got %s", hex[:2])
	}
	if len(hex) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(hex))
	}
}

func TestDoubleSha256KnownVector(t *testing.T) {
	// double-SHA256 of "hello" (well-known vector)
	h := HashBytes([]byte("hello"))
	want := "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50"
	if got := EncodeHex(h[:]); got != want {
		t.Fatalf("double-sha256 mismatch:\n  expected %s\n  got      %s", want, got)
	}
}

func TestParseHashRejectsBadInput(t *testing.T) {
	if _, err := ParseHash("zz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Fatal("expected error for short input")
	}
}
