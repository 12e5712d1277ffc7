package regnode

import (
	"github.com/dogecoinfoundation/regnode/pkg/chain"
	"github.com/shopspring/decimal"
)

// API is the node control surface consumed by the JSON-RPC server,
// the web admin and the test harness.
type API interface {
	GetNewAddress() (string, error)
	Generate(n int) ([]string, error)
	SendToAddress(address string, amount decimal.Decimal) (string, error)
	SendRawTransaction(txHex string) (string, error)
	GetBlockCount() (int64, error)
	GetBestBlockHash() (string, error)
	GetBlockHash(height int64) (string, error)
	GetRawMempool() ([]string, error)
	GetBalance() (decimal.Decimal, error)
	GetBlockchainInfo() (BlockchainInfo, error)
}

type BlockchainInfo struct {
	Chain         string `json:"chain"`
	Blocks        int64  `json:"blocks"`
	BestBlockHash string `json:"bestblockhash"`
}

// interface guard ensures Node implements API
var _ API = &Node{}

// Node assembles the chain state machine, the wallet and the block
// index store into one regtest node instance.
type Node struct {
	Chain  *chain.Chain
	Wallet *chain.Wallet

	config Config
	bus    MessageBus
	params *chain.ChainParams

	// the address newly mined subsidies are paid to
	miningAddress chain.Address
}

type BlockIndex = chain.BlockIndex

func NewNode(config Config, bus MessageBus, index BlockIndex) (*Node, error) {
	params := chain.ChainFromName(config.Node.Network)
	c := chain.NewChain(params)
	w := chain.NewWallet(params)
	c.OnConnect(w.ProcessBlock)
	if index != nil {
		if err := c.SetIndex(index); err != nil {
			return nil, NewErr(NotAvailable, "block index: %v", err)
		}
	}
	addr, err := w.NewAddress()
	if err != nil {
		return nil, NewErr(WalletError, "mining address: %v", err)
	}
	return &Node{
		Chain:         c,
		Wallet:        w,
		config:        config,
		bus:           bus,
		params:        params,
		miningAddress: addr,
	}, nil
}

// ConnectPeer wires two-way block and transaction relay with another
// in-process node.
func (n *Node) ConnectPeer(other *Node) {
	n.Chain.AddPeer(other.Chain)
	other.Chain.AddPeer(n.Chain)
}

func (n *Node) GetNewAddress() (string, error) {
	addr, err := n.Wallet.NewAddress()
	if err != nil {
		return "", NewErr(WalletError, "getnewaddress: %v", err)
	}
	return string(addr), nil
}

func (n *Node) Generate(count int) ([]string, error) {
	if count < 1 {
		return nil, NewErr(BadRequest, "generate: count must be >= 1")
	}
	hashes, err := n.Chain.Generate(count, n.miningAddress)
	if err != nil {
		return nil, NewErr(BadBlock, "generate: %v", err)
	}
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.Hex()
	}
	n.bus.Send(CHAIN_BLOCK, out)
	return out, nil
}

func (n *Node) SendToAddress(address string, amount decimal.Decimal) (string, error) {
	addr := chain.Address(address)
	if !chain.ValidateP2PKH(addr, n.params) {
		return "", NewErr(BadRequest, "sendtoaddress: invalid address: %s", address)
	}
	koinu, err := chain.DecimalToKoinu(amount)
	if err != nil {
		return "", NewErr(BadRequest, "sendtoaddress: %v", err)
	}
	tx, err := n.Wallet.BuildPayment(addr, koinu)
	if err != nil {
		return "", NewErr(WalletError, "sendtoaddress: %v", err)
	}
	if err := n.Chain.AcceptTx(tx); err != nil {
		n.Wallet.ReleasePayment(tx)
		return "", NewErr(BadTxn, "sendtoaddress: %v", err)
	}
	txid := tx.TxID().Hex()
	n.bus.Send(CHAIN_TX, txid)
	return txid, nil
}

func (n *Node) SendRawTransaction(txHex string) (string, error) {
	raw, err := chain.ParseHex(txHex)
	if err != nil {
		return "", NewErr(BadRequest, "sendrawtransaction: invalid hex: %v", err)
	}
	tx, err := chain.DecodeTx(raw)
	if err != nil {
		return "", NewErr(BadTxn, "sendrawtransaction: %v", err)
	}
	if err := n.Chain.AcceptTx(tx); err != nil {
		return "", NewErr(BadTxn, "sendrawtransaction: %v", err)
	}
	txid := tx.TxID().Hex()
	n.bus.Send(CHAIN_TX, txid)
	return txid, nil
}

func (n *Node) GetBlockCount() (int64, error) {
	return n.Chain.BlockCount(), nil
}

func (n *Node) GetBestBlockHash() (string, error) {
	return n.Chain.BestBlockHash().Hex(), nil
}

func (n *Node) GetBlockHash(height int64) (string, error) {
	hash, err := n.Chain.BlockHashAtHeight(height)
	if err != nil {
		return "", NewErr(NotFound, "getblockhash: %v", err)
	}
	return hash.Hex(), nil
}

func (n *Node) GetRawMempool() ([]string, error) {
	pool := n.Chain.Mempool()
	out := make([]string, len(pool))
	for i, h := range pool {
		out[i] = h.Hex()
	}
	return out, nil
}

func (n *Node) GetBalance() (decimal.Decimal, error) {
	return chain.KoinuToDecimal(n.Wallet.Balance()), nil
}

func (n *Node) GetBlockchainInfo() (BlockchainInfo, error) {
	return BlockchainInfo{
		Chain:         n.config.Node.Network,
		Blocks:        n.Chain.BlockCount(),
		BestBlockHash: n.Chain.BestBlockHash().Hex(),
	}, nil
}
