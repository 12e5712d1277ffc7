package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash is a block or transaction id: double-SHA256 of the serialized
// bytes, stored in internal (little-endian) byte order.
type Hash [32]byte

func Sha256(bytes []byte) []byte {
	result := sha256.Sum256(bytes)
	return result[:]
}

func DoubleSha256(bytes []byte) []byte {
	hash := sha256.Sum256(bytes)
	result := sha256.Sum256(hash[:])
	return result[:]
}

// HashBytes hashes serialized block-header or transaction bytes.
func HashBytes(b []byte) (h Hash) {
	copy(h[:], DoubleSha256(b))
	return
}

// Hex returns the display form: reversed byte order, as returned by
// node RPC calls and carried in ZMQ notification bodies.
func (h Hash) Hex() string {
	return hex.EncodeToString(h.Reversed())
}

// Reversed returns the hash in display byte order, so that
// hex.EncodeToString(h.Reversed()) == h.Hex().
func (h Hash) Reversed() []byte {
	r := make([]byte, 32)
	for i := 0; i < 32; i++ {
		r[i] = h[31-i]
	}
	return r
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash parses a display-order hex string back into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != 32 {
		return h, fmt.Errorf("ParseHash: expected 32 bytes, got %d", len(b))
	}
	for i := 0; i < 32; i++ {
		h[i] = b[31-i]
	}
	return h, nil
}

func reverseInPlace(a []byte) {
	// https://github.com/golang/go/wiki/SliceTricks#reversing
	for left, right := 0, len(a)-1; left < right; left, right = left+1, right-1 {
		a[left], a[right] = a[right], a[left]
	}
}
