package chain

import (
	"fmt"
)

const (
	CoinbaseVOut = 0xffffffff
)

// CoinbaseTxID is the null prevout id used by coinbase inputs.
var CoinbaseTxID = Hash{}

type Tx struct {
	Version  uint32
	VIn      []TxIn
	VOut     []TxOut
	LockTime uint32
}

type TxIn struct {
	TxID     Hash
	VOut     uint32
	Script   []byte // varied length
	Sequence uint32
}

type TxOut struct {
	Value  int64 // koinu
	Script []byte
}

func (tx *Tx) IsCoinbase() bool {
	return len(tx.VIn) == 1 && tx.VIn[0].TxID == CoinbaseTxID && tx.VIn[0].VOut == CoinbaseVOut
}

// TxID is the double-SHA256 of the serialized transaction.
func (tx *Tx) TxID() Hash {
	return HashBytes(tx.Encode())
}

func (tx *Tx) Encode() []byte {
	w := &Writer{}
	w.uint32le(tx.Version)
	w.var_uint(uint64(len(tx.VIn)))
	for _, in := range tx.VIn {
		w.bytes(in.TxID[:])
		w.uint32le(in.VOut)
		w.var_uint(uint64(len(in.Script)))
		w.bytes(in.Script)
		w.uint32le(in.Sequence)
	}
	w.var_uint(uint64(len(tx.VOut)))
	for _, out := range tx.VOut {
		w.uint64le(uint64(out.Value))
		w.var_uint(uint64(len(out.Script)))
		w.bytes(out.Script)
	}
	w.uint32le(tx.LockTime)
	return w.Bytes()
}

// DecodeTx decodes serialized transaction bytes, rejecting truncated
// or trailing input. Safe on untrusted bytes (sendrawtransaction).
func DecodeTx(txBytes []byte) (Tx, error) {
	s := NewStream(txBytes)
	tx := readTx(s)
	if !s.complete() {
		return Tx{}, fmt.Errorf("transaction decode: truncated or malformed (%d bytes)", len(txBytes))
	}
	return tx, nil
}

func readTx(s *Stream) (tx Tx) {
	tx.Version = s.uint32le()
	tx_in := s.var_uint()
	for i := uint64(0); i < tx_in && s.valid(); i++ {
		tx.VIn = append(tx.VIn, readTxIn(s))
	}
	tx_out := s.var_uint()
	for i := uint64(0); i < tx_out && s.valid(); i++ {
		tx.VOut = append(tx.VOut, readTxOut(s))
	}
	tx.LockTime = s.uint32le()
	return
}

func readTxIn(s *Stream) (in TxIn) {
	copy(in.TxID[:], s.bytes(32))
	in.VOut = s.uint32le()
	script_len := s.var_uint()
	in.Script = s.bytes(script_len)
	in.Sequence = s.uint32le()
	return
}

func readTxOut(s *Stream) (out TxOut) {
	out.Value = int64(s.uint64le())
	script_len := s.var_uint()
	out.Script = s.bytes(script_len)
	return
}
