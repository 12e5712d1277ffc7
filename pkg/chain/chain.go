package chain

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// Chain event types delivered to Subscribe channels.
// A TX event is emitted for every transaction accepted into the
// mempool and for every transaction in a connected block; a Block
// event is emitted after the TX events of the block it belongs to.
type EventType int

const (
	TxEvent EventType = iota + 1
	BlockEvent
)

type Event struct {
	Type EventType
	ID   string // display-order hex, as returned by RPC
}

// BlockIndex persists connected blocks. The chain writes through to
// it on every connect, including blocks arriving via peer relay.
type BlockIndex interface {
	AddBlock(hash string, height int64, prev string, time uint32, txids []string) error
}

type blockEntry struct {
	block  Block
	height int64
}

// Chain is a minimal regtest chain state machine: a linear chain of
// blocks from a fixed genesis, a mempool, and in-process peer relay.
// It accepts blocks and transactions, connects them to local state,
// and emits ordered events for each acceptance.
type Chain struct {
	params *ChainParams

	mu           sync.Mutex
	blocks       map[Hash]*blockEntry
	hashByHeight []Hash
	tip          Hash
	mempool      map[Hash]*Tx
	mempoolOrder []Hash
	confirmedTx  map[Hash]bool

	listeners []chan<- Event
	onConnect []func(*Block) // synchronous, called under lock (wallet scan)
	peers     []*Chain
	index     BlockIndex
}

func NewChain(params *ChainParams) *Chain {
	c := &Chain{
		params:      params,
		blocks:      make(map[Hash]*blockEntry),
		mempool:     make(map[Hash]*Tx),
		confirmedTx: make(map[Hash]bool),
	}
	genesis := GenesisBlock(params)
	hash := genesis.Header.Hash()
	c.blocks[hash] = &blockEntry{block: genesis, height: 0}
	c.hashByHeight = []Hash{hash}
	c.tip = hash
	c.confirmedTx[genesis.Tx[0].TxID()] = true
	return c
}

// Subscribe registers a channel for chain events. Sends are blocking,
// so use a buffered channel sized for the expected event rate.
func (c *Chain) Subscribe(ch chan<- Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, ch)
}

// OnConnect registers a callback invoked synchronously for each
// connected block, before the block's events are emitted.
func (c *Chain) OnConnect(fn func(*Block)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// AddPeer wires one-way relay to another in-process chain. Accepted
// blocks and transactions are forwarded; the receiving chain ignores
// anything it already knows, which terminates relay loops.
func (c *Chain) AddPeer(p *Chain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers = append(c.peers, p)
}

// SetIndex attaches a persistent block index. Already-connected blocks
// are written through so a late-attached index is complete.
func (c *Chain) SetIndex(idx BlockIndex) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = idx
	for height, hash := range c.hashByHeight {
		if err := c.writeIndex(c.blocks[hash], int64(height)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) writeIndex(entry *blockEntry, height int64) error {
	if c.index == nil {
		return nil
	}
	txids := make([]string, len(entry.block.Tx))
	for i := range entry.block.Tx {
		txids[i] = entry.block.Tx[i].TxID().Hex()
	}
	return c.index.AddBlock(entry.block.Header.Hash().Hex(), height,
		entry.block.Header.PrevBlock.Hex(), entry.block.Header.Timestamp, txids)
}

func (c *Chain) BestBlockHash() Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip
}

func (c *Chain) BlockCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.hashByHeight)) - 1 // genesis is height 0
}

func (c *Chain) BlockHashAtHeight(height int64) (Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height < 0 || height >= int64(len(c.hashByHeight)) {
		return Hash{}, fmt.Errorf("block height out of range: %d", height)
	}
	return c.hashByHeight[height], nil
}

func (c *Chain) GetBlock(hash Hash) (Block, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.blocks[hash]
	if !ok {
		return Block{}, 0, false
	}
	return entry.block, entry.height, true
}

// Mempool returns the txids of unconfirmed transactions in acceptance order.
func (c *Chain) Mempool() []Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Hash, len(c.mempoolOrder))
	copy(out, c.mempoolOrder)
	return out
}

// HasTx reports whether a txid is known, confirmed or in the mempool.
func (c *Chain) HasTx(txid Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasTx(txid)
}

func (c *Chain) hasTx(txid Hash) bool {
	if c.confirmedTx[txid] {
		return true
	}
	_, ok := c.mempool[txid]
	return ok
}

// AcceptTx validates a transaction and adds it to the mempool,
// emitting a TX event and relaying to peers. Accepting a transaction
// that is already known is not an error and emits nothing.
func (c *Chain) AcceptTx(tx Tx) error {
	txid := tx.TxID()

	c.mu.Lock()
	if c.hasTx(txid) {
		c.mu.Unlock()
		return nil
	}
	if err := c.checkTx(&tx); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mempool[txid] = &tx
	c.mempoolOrder = append(c.mempoolOrder, txid)
	c.emit(Event{Type: TxEvent, ID: txid.Hex()})
	peers := c.peerList()
	c.mu.Unlock()

	for _, p := range peers {
		p.AcceptTx(tx)
	}
	return nil
}

func (c *Chain) checkTx(tx *Tx) error {
	if tx.IsCoinbase() {
		return fmt.Errorf("coinbase transactions cannot enter the mempool")
	}
	if len(tx.VIn) == 0 || len(tx.VOut) == 0 {
		return fmt.Errorf("transaction must have inputs and outputs")
	}
	for _, in := range tx.VIn {
		if !c.hasTx(in.TxID) {
			return fmt.Errorf("input spends unknown transaction: %s", in.TxID.Hex())
		}
	}
	return nil
}

// AcceptBlock validates a block against the current tip, connects it,
// emits one TX event per transaction followed by a Block event, and
// relays to peers. A block that is already connected is ignored.
func (c *Chain) AcceptBlock(block Block) error {
	hash := block.Header.Hash()

	c.mu.Lock()
	if _, known := c.blocks[hash]; known {
		c.mu.Unlock()
		return nil
	}
	if err := c.checkBlock(&block); err != nil {
		c.mu.Unlock()
		return err
	}

	// persist before connecting, so a failed index write leaves the
	// in-memory chain untouched and index and chain never diverge
	height := int64(len(c.hashByHeight))
	entry := &blockEntry{block: block, height: height}
	if err := c.writeIndex(entry, height); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("block index write: %v", err)
	}

	// connect
	c.blocks[hash] = entry
	c.hashByHeight = append(c.hashByHeight, hash)
	c.tip = hash
	for i := range block.Tx {
		txid := block.Tx[i].TxID()
		c.confirmedTx[txid] = true
		if _, ok := c.mempool[txid]; ok {
			delete(c.mempool, txid)
			c.removeFromMempoolOrder(txid)
		}
	}
	for _, fn := range c.onConnect {
		fn(&entry.block)
	}
	// tx notifications first, then the block, matching accept order
	for i := range block.Tx {
		c.emit(Event{Type: TxEvent, ID: block.Tx[i].TxID().Hex()})
	}
	c.emit(Event{Type: BlockEvent, ID: hash.Hex()})
	peers := c.peerList()
	c.mu.Unlock()

	for _, p := range peers {
		p.AcceptBlock(block)
	}
	return nil
}

func (c *Chain) checkBlock(block *Block) error {
	if block.Header.PrevBlock != c.tip {
		return fmt.Errorf("block does not extend the current tip: prev %s, tip %s",
			block.Header.PrevBlock.Hex(), c.tip.Hex())
	}
	if len(block.Tx) == 0 {
		return fmt.Errorf("block has no transactions")
	}
	if !block.Tx[0].IsCoinbase() {
		return fmt.Errorf("first transaction must be coinbase")
	}
	for i := 1; i < len(block.Tx); i++ {
		if block.Tx[i].IsCoinbase() {
			return fmt.Errorf("coinbase at position %d", i)
		}
	}
	txids := make([]Hash, len(block.Tx))
	for i := range block.Tx {
		txids[i] = block.Tx[i].TxID()
	}
	if MerkleRoot(txids) != block.Header.MerkleRoot {
		return fmt.Errorf("merkle root mismatch")
	}
	return nil
}

func (c *Chain) removeFromMempoolOrder(txid Hash) {
	for i, id := range c.mempoolOrder {
		if id == txid {
			c.mempoolOrder = append(c.mempoolOrder[:i], c.mempoolOrder[i+1:]...)
			return
		}
	}
}

func (c *Chain) peerList() []*Chain {
	peers := make([]*Chain, len(c.peers))
	copy(peers, c.peers)
	return peers
}

func (c *Chain) emit(e Event) {
	for _, ch := range c.listeners {
		ch <- e
	}
}

// Generate mines n blocks paying the subsidy to payTo, accepting each
// in turn. Pending mempool transactions are included in the next block
// mined. Returns the new block hashes in order.
func (c *Chain) Generate(n int, payTo Address) ([]Hash, error) {
	hashes := make([]Hash, 0, n)
	for i := 0; i < n; i++ {
		block, err := c.buildBlockTemplate(payTo)
		if err != nil {
			return hashes, err
		}
		if err := c.AcceptBlock(block); err != nil {
			return hashes, err
		}
		hashes = append(hashes, block.Header.Hash())
	}
	return hashes, nil
}

func (c *Chain) buildBlockTemplate(payTo Address) (Block, error) {
	script, err := P2PKHScript(payTo, c.params)
	if err != nil {
		return Block{}, err
	}

	c.mu.Lock()
	prev := c.tip
	height := int64(len(c.hashByHeight))
	txs := []Tx{coinbaseTx(height, script, c.params.block_subsidy)}
	for _, txid := range c.mempoolOrder {
		txs = append(txs, *c.mempool[txid])
	}
	c.mu.Unlock()

	txids := make([]Hash, len(txs))
	for i := range txs {
		txids[i] = txs[i].TxID()
	}
	return Block{
		Header: BlockHeader{
			Version:    1,
			PrevBlock:  prev,
			MerkleRoot: MerkleRoot(txids),
			Timestamp:  uint32(time.Now().Unix()),
			Bits:       0x207fffff,
			Nonce:      0,
		},
		Tx: txs,
	}, nil
}

// coinbaseTx builds the subsidy transaction for a new block. The
// script encodes the height plus a random extranonce so coinbases at
// the same height on different nodes never collide.
func coinbaseTx(height int64, payToScript []byte, subsidy int64) Tx {
	extranonce := make([]byte, 8)
	rand.Read(extranonce)
	script := &Writer{}
	script.var_uint(uint64(height))
	script.bytes(extranonce)
	return Tx{
		Version: 1,
		VIn: []TxIn{{
			TxID:     CoinbaseTxID,
			VOut:     CoinbaseVOut,
			Script:   script.Bytes(),
			Sequence: 0xffffffff,
		}},
		VOut: []TxOut{{
			Value:  subsidy,
			Script: payToScript,
		}},
	}
}
