package chain

import (
	"fmt"
)

type Block struct {
	Header BlockHeader
	Tx     []Tx
}

type BlockHeader struct {
	Version    uint32
	PrevBlock  Hash
	MerkleRoot Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Hash is the block id: double-SHA256 of the 80 serialized header bytes.
func (b *BlockHeader) Hash() Hash {
	return HashBytes(b.Encode())
}

func (b *BlockHeader) Encode() []byte {
	w := &Writer{}
	w.uint32le(b.Version)
	w.bytes(b.PrevBlock[:])
	w.bytes(b.MerkleRoot[:])
	w.uint32le(b.Timestamp)
	w.uint32le(b.Bits)
	w.uint32le(b.Nonce)
	return w.Bytes()
}

func (b *Block) Encode() []byte {
	w := &Writer{}
	w.bytes(b.Header.Encode())
	w.var_uint(uint64(len(b.Tx)))
	for i := range b.Tx {
		w.bytes(b.Tx[i].Encode())
	}
	return w.Bytes()
}

// DecodeBlock decodes serialized block bytes, rejecting truncated or
// trailing input.
func DecodeBlock(blockBytes []byte) (Block, error) {
	s := NewStream(blockBytes)
	b := readBlock(s)
	if !s.complete() {
		return Block{}, fmt.Errorf("block decode: truncated or malformed (%d bytes)", len(blockBytes))
	}
	return b, nil
}

func readBlock(s *Stream) (b Block) {
	b.Header = readHeader(s)
	numTx := s.var_uint()
	for i := uint64(0); i < numTx && s.valid(); i++ {
		b.Tx = append(b.Tx, readTx(s))
	}
	return
}

func readHeader(s *Stream) (b BlockHeader) {
	b.Version = s.uint32le()
	copy(b.PrevBlock[:], s.bytes(32))
	copy(b.MerkleRoot[:], s.bytes(32))
	b.Timestamp = s.uint32le()
	b.Bits = s.uint32le()
	b.Nonce = s.uint32le()
	return
}

// MerkleRoot computes the merkle root over the block's transaction ids,
// duplicating the last node at odd levels as Bitcoin does.
func MerkleRoot(txids []Hash) Hash {
	if len(txids) == 0 {
		return Hash{}
	}
	level := make([]Hash, len(txids))
	copy(level, txids)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var pair [64]byte
			copy(pair[:32], level[i][:])
			copy(pair[32:], level[i+1][:])
			next = append(next, HashBytes(pair[:]))
		}
		level = next
	}
	return level[0]
}
