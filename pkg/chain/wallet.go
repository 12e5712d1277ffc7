package chain

import (
	"fmt"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type outpoint struct {
	txid Hash
	vout uint32
}

type walletUTXO struct {
	op     outpoint
	value  int64
	script []byte
}

// Wallet tracks keys and spendable outputs for one node. It learns
// about outputs by scanning connected blocks (wire it up with
// Chain.OnConnect). Payments are structurally valid transactions; the
// regtest chain does not verify signatures, so the scriptSig carries
// the spending pubkey only.
type Wallet struct {
	params *ChainParams

	mu      sync.Mutex
	keys    map[Address]*secp256k1.PrivateKey
	scripts map[string]Address // locking script -> our address
	utxos   map[outpoint]walletUTXO
	spent   map[outpoint]bool // spent by us, not yet seen in a block
}

func NewWallet(params *ChainParams) *Wallet {
	return &Wallet{
		params:  params,
		keys:    make(map[Address]*secp256k1.PrivateKey),
		scripts: make(map[string]Address),
		utxos:   make(map[outpoint]walletUTXO),
		spent:   make(map[outpoint]bool),
	}
}

// NewAddress generates a fresh keypair and returns its P2PKH address.
func (w *Wallet) NewAddress() (Address, error) {
	addr, priv, err := NewKeyPairAddress(w.params)
	if err != nil {
		return "", err
	}
	script, err := P2PKHScript(addr, w.params)
	if err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys[addr] = priv
	w.scripts[string(script)] = addr
	return addr, nil
}

// ProcessBlock scans a connected block for outputs paying to wallet
// addresses and inputs spending wallet outputs. Safe to register
// directly with Chain.OnConnect.
func (w *Wallet) ProcessBlock(b *Block) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range b.Tx {
		tx := &b.Tx[i]
		for _, in := range tx.VIn {
			op := outpoint{in.TxID, in.VOut}
			delete(w.utxos, op)
			delete(w.spent, op)
		}
		txid := tx.TxID()
		for vout, out := range tx.VOut {
			if _, ours := w.scripts[string(out.Script)]; ours {
				op := outpoint{txid, uint32(vout)}
				w.utxos[op] = walletUTXO{op: op, value: out.Value, script: out.Script}
			}
		}
	}
}

// Balance sums spendable outputs in koinu.
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total int64
	for op, u := range w.utxos {
		if !w.spent[op] {
			total += u.value
		}
	}
	return total
}

// BuildPayment selects wallet outputs covering amount and builds a
// transaction paying `to`, with any change going to a fresh address.
// Selected outputs are marked spent so a later payment cannot reuse
// them before the transaction confirms.
func (w *Wallet) BuildPayment(to Address, amount int64) (Tx, error) {
	if amount <= 0 {
		return Tx{}, fmt.Errorf("payment amount must be positive")
	}
	payScript, err := P2PKHScript(to, w.params)
	if err != nil {
		return Tx{}, err
	}
	changeAddr, err := w.NewAddress()
	if err != nil {
		return Tx{}, err
	}
	changeScript, err := P2PKHScript(changeAddr, w.params)
	if err != nil {
		return Tx{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var selected []walletUTXO
	var total int64
	for op, u := range w.utxos {
		if w.spent[op] {
			continue
		}
		selected = append(selected, u)
		total += u.value
		if total >= amount {
			break
		}
	}
	if total < amount {
		return Tx{}, fmt.Errorf("insufficient funds: have %d koinu, need %d", total, amount)
	}

	tx := Tx{Version: 1}
	for _, u := range selected {
		addr := w.scripts[string(u.script)]
		pubkey := w.keys[addr].PubKey().SerializeCompressed()
		script := make([]byte, 0, 34)
		script = append(script, byte(len(pubkey)))
		script = append(script, pubkey...)
		tx.VIn = append(tx.VIn, TxIn{
			TxID:     u.op.txid,
			VOut:     u.op.vout,
			Script:   script,
			Sequence: 0xffffffff,
		})
	}
	tx.VOut = append(tx.VOut, TxOut{Value: amount, Script: payScript})
	if change := total - amount; change > 0 {
		tx.VOut = append(tx.VOut, TxOut{Value: change, Script: changeScript})
	}

	for _, u := range selected {
		w.spent[u.op] = true
	}
	return tx, nil
}

// ReleasePayment returns the inputs of a payment built with
// BuildPayment to the spendable set. Call it when the transaction is
// rejected before reaching the mempool, otherwise its outputs stay
// reserved forever.
func (w *Wallet) ReleasePayment(tx Tx) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, in := range tx.VIn {
		delete(w.spent, outpoint{in.TxID, in.VOut})
	}
}
