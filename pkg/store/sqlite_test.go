package store

import (
	"testing"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
)

func newTestStore(t *testing.T) SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal("NewSQLiteStore", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStoreAddAndQuery(t *testing.T) {
	s := newTestStore(t)

	err := s.AddBlock("aa11", 1, "genesis", 1000, []string{"tx-one", "tx-two"})
	if err != nil {
		t.Fatal("AddBlock", err)
	}
	err = s.AddBlock("bb22", 2, "aa11", 1001, []string{"tx-three"})
	if err != nil {
		t.Fatal("AddBlock", err)
	}

	hash, err := s.GetBlockHash(1)
	if err != nil {
		t.Fatal("GetBlockHash", err)
	}
	if hash != "aa11" {
		t.Fatal("wrong hash at height 1:", hash)
	}

	count, err := s.GetBlockCount()
	if err != nil {
		t.Fatal("GetBlockCount", err)
	}
	if count != 2 {
		t.Fatal("expected block count 2, got", count)
	}

	txids, err := s.GetBlockTxIDs("aa11")
	if err != nil {
		t.Fatal("GetBlockTxIDs", err)
	}
	if len(txids) != 2 || txids[0] != "tx-one" || txids[1] != "tx-two" {
		t.Fatal("txids out of order or missing:", txids)
	}

	block, err := s.FindBlockForTx("tx-three")
	if err != nil {
		t.Fatal("FindBlockForTx", err)
	}
	if block != "bb22" {
		t.Fatal("wrong block for tx-three:", block)
	}
}

func TestStoreAddBlockIdempotent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		err := s.AddBlock("aa11", 1, "genesis", 1000, []string{"tx-one"})
		if err != nil {
			t.Fatal("AddBlock attempt", i, err)
		}
	}
	count, err := s.GetBlockCount()
	if err != nil {
		t.Fatal("GetBlockCount", err)
	}
	if count != 1 {
		t.Fatal("re-adding a block should not change the count:", count)
	}
	txids, err := s.GetBlockTxIDs("aa11")
	if err != nil {
		t.Fatal("GetBlockTxIDs", err)
	}
	if len(txids) != 1 {
		t.Fatal("re-adding a block should not duplicate txids:", txids)
	}
}

func TestStoreNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBlockHash(42)
	if !regnode.IsNotFoundError(err) {
		t.Fatal("expected not-found for missing height, got", err)
	}
	_, err = s.FindBlockForTx("no-such-tx")
	if !regnode.IsNotFoundError(err) {
		t.Fatal("expected not-found for missing tx, got", err)
	}
}
