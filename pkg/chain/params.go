package chain

type ChainParams struct {
	p2pkh_address_prefix byte
	p2sh_address_prefix  byte
	pkey_prefix          byte
	// block subsidy in koinu; regtest keeps it constant (no halving)
	block_subsidy int64
}

var MainChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x1e, // D
	p2sh_address_prefix:  0x16, // 9 or A
	pkey_prefix:          0x9e, // Q or 6
	block_subsidy:        500_000 * OneCoinKoinu,
}

var TestChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x71, // n
	p2sh_address_prefix:  0xc4, // 2
	pkey_prefix:          0xf1, // 9 or c
	block_subsidy:        500_000 * OneCoinKoinu,
}

var RegTestChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x6f,
	p2sh_address_prefix:  0xc4, // 2
	pkey_prefix:          0xef,
	block_subsidy:        50 * OneCoinKoinu,
}

func ChainFromName(network string) *ChainParams {
	switch network {
	case "main":
		return &MainChain
	case "test":
		return &TestChain
	default:
		return &RegTestChain
	}
}

// GenesisBlock builds the fixed first block for a chain. Every node on
// the same network derives the same genesis hash, so freshly started
// nodes agree on a common tip before any blocks are relayed.
func GenesisBlock(params *ChainParams) Block {
	coinbase := Tx{
		Version: 1,
		VIn: []TxIn{{
			TxID:     CoinbaseTxID,
			VOut:     CoinbaseVOut,
			Script:   []byte("regnode genesis"),
			Sequence: 0xffffffff,
		}},
		VOut: []TxOut{{
			Value:  params.block_subsidy,
			Script: []byte{}, // unspendable
		}},
	}
	block := Block{
		Header: BlockHeader{
			Version:    1,
			PrevBlock:  Hash{},
			Timestamp:  1386325540,
			Bits:       0x207fffff,
			Nonce:      0,
		},
		Tx: []Tx{coinbase},
	}
	block.Header.MerkleRoot = MerkleRoot([]Hash{coinbase.TxID()})
	return block
}
