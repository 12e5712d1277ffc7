package chain

import (
	"bytes"
	"testing"
)

func TestVarUintEncoding(t *testing.T) {
	cases := []struct {
		value uint64
		bytes int
	}{
		{0, 1},
		{252, 1},
		{253, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, c := range cases {
		w := &Writer{}
		w.var_uint(c.value)
		if len(w.Bytes()) != c.bytes {
			t.Fatalf("var_uint(%d): expected %d bytes, got %d", c.value, c.bytes, len(w.Bytes()))
		}
		s := NewStream(w.Bytes())
		if got := s.var_uint(); got != c.value {
			t.Fatalf("var_uint(%d): read back %d", c.value, got)
		}
	}
}

func TestWriterStreamIntegers(t *testing.T) {
	w := &Writer{}
	w.uint16le(0x0201)
	w.uint32le(0x04030201)
	w.uint64le(0x0807060504030201)
	w.bytes([]byte{0xaa, 0xbb})

	// little-endian on the wire
	want := []byte{
		0x01, 0x02,
		0x01, 0x02, 0x03, 0x04,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0xaa, 0xbb,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("wire bytes mismatch:\n  expected %x\n  got      %x", want, w.Bytes())
	}

	s := NewStream(w.Bytes())
	if got := s.uint16le(); got != 0x0201 {
		t.Fatalf("uint16le: got %x", got)
	}
	if got := s.uint32le(); got != 0x04030201 {
		t.Fatalf("uint32le: got %x", got)
	}
	if got := s.uint64le(); got != 0x0807060504030201 {
		t.Fatalf("uint64le: got %x", got)
	}
	if got := s.bytes(2); !bytes.Equal(got, []byte{0xaa, 0xbb}) {
		t.Fatalf("bytes: got %x", got)
	}
}

func TestTxEncodeDecode(t *testing.T) {
	tx := Tx{
		Version: 1,
		VIn: []TxIn{{
			TxID:     HashBytes([]byte("prev")),
			VOut:     1,
			Script:   []byte{0x01, 0x02, 0x03},
			Sequence: 0xffffffff,
		}},
		VOut: []TxOut{
			{Value: 5000, Script: []byte{0x51}},
			{Value: 2500, Script: []byte{0x52}},
		},
		LockTime: 7,
	}
	decoded, err := DecodeTx(tx.Encode())
	if err != nil {
		t.Fatal("DecodeTx", err)
	}
	if decoded.TxID() != tx.TxID() {
		t.Fatal("decoded tx has a different txid")
	}
	if len(decoded.VIn) != 1 || len(decoded.VOut) != 2 || decoded.LockTime != 7 {
		t.Fatalf("decoded tx structure mismatch: %+v", decoded)
	}
}

func TestDecodeTxRejectsBadInput(t *testing.T) {
	// truncated at every length must error, never panic
	tx := Tx{
		Version:  1,
		VIn:      []TxIn{{TxID: HashBytes([]byte("prev")), VOut: 0, Sequence: 0xffffffff}},
		VOut:     []TxOut{{Value: 5000, Script: []byte{0x51}}},
		LockTime: 0,
	}
	encoded := tx.Encode()
	for n := 0; n < len(encoded); n++ {
		if _, err := DecodeTx(encoded[:n]); err == nil {
			t.Fatalf("expected error decoding %d of %d bytes", n, len(encoded))
		}
	}

	// trailing bytes are rejected too
	if _, err := DecodeTx(append(encoded, 0x00)); err == nil {
		t.Fatal("expected error for trailing bytes")
	}

	// an absurd input count must not allocate forever
	if _, err := DecodeTx([]byte{1, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Fatal("expected error for oversized input count")
	}
}

func TestBlockEncodeDecode(t *testing.T) {
	block := GenesisBlock(&RegTestChain)
	decoded, err := DecodeBlock(block.Encode())
	if err != nil {
		t.Fatal("DecodeBlock", err)
	}
	if decoded.Header.Hash() != block.Header.Hash() {
		t.Fatal("decoded block has a different hash")
	}
	if len(decoded.Tx) != 1 || !decoded.Tx[0].IsCoinbase() {
		t.Fatal("decoded block lost its coinbase")
	}

	if _, err := DecodeBlock(block.Encode()[:50]); err == nil {
		t.Fatal("expected error decoding a truncated block")
	}
}

func TestMerkleRoot(t *testing.T) {
	a := HashBytes([]byte("a"))
	b := HashBytes([]byte("b"))
	c := HashBytes([]byte("c"))

	single := MerkleRoot([]Hash{a})
	if single != a {
		t.Fatal("merkle root of one txid should be that txid")
	}

	// odd levels duplicate the last node: [a b c] == [a b c c]
	odd := MerkleRoot([]Hash{a, b, c})
	padded := MerkleRoot([]Hash{a, b, c, c})
	if odd != padded {
		t.Fatal("odd merkle level should behave as if the last node were duplicated")
	}

	if MerkleRoot([]Hash{a, b}) == MerkleRoot([]Hash{b, a}) {
		t.Fatal("merkle root should depend on txid order")
	}
}
