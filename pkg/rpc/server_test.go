package rpc

import (
	"net/http/httptest"
	"testing"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) (*httptest.Server, *regnode.Node) {
	t.Helper()
	conf := regnode.TestConfig(0)
	bus := regnode.NewMessageBus()
	node, err := regnode.NewNode(conf, bus, nil)
	if err != nil {
		t.Fatal("NewNode", err)
	}
	server, err := NewServer(conf, node)
	if err != nil {
		t.Fatal("NewServer", err)
	}
	ts := httptest.NewServer(server.createRouter())
	t.Cleanup(ts.Close)
	return ts, node
}

func TestRPCRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	client := NewClientURL(ts.URL, "regnode", "regnode")

	// Test getblockcount on a fresh chain
	height, err := client.GetBlockCount()
	if err != nil {
		t.Fatal("getblockcount", err)
	}
	if height != 0 {
		t.Fatal("expected height 0, got", height)
	}

	// Test generate
	hashes, err := client.Generate(3)
	if err != nil {
		t.Fatal("generate", err)
	}
	if len(hashes) != 3 {
		t.Fatal("expected 3 hashes, got", len(hashes))
	}

	// Test getbestblockhash
	best, err := client.GetBestBlockHash()
	if err != nil {
		t.Fatal("getbestblockhash", err)
	}
	if best != hashes[2] {
		t.Fatal("best hash should be the last generated block")
	}

	// Test getblockhash
	hash, err := client.GetBlockHash(1)
	if err != nil {
		t.Fatal("getblockhash", err)
	}
	if hash != hashes[0] {
		t.Fatal("getblockhash(1) mismatch")
	}

	// Test getnewaddress + sendtoaddress
	addr, err := client.GetNewAddress()
	if err != nil {
		t.Fatal("getnewaddress", err)
	}
	txid, err := client.SendToAddress(addr, decimal.RequireFromString("1.5"))
	if err != nil {
		t.Fatal("sendtoaddress", err)
	}
	if len(txid) != 64 {
		t.Fatal("expected 64-char txid, got", txid)
	}

	// Test getrawmempool
	pool, err := client.GetRawMempool()
	if err != nil {
		t.Fatal("getrawmempool", err)
	}
	if len(pool) != 1 || pool[0] != txid {
		t.Fatal("expected the sent tx in the mempool:", pool)
	}

	// Test getblockchaininfo
	info, err := client.GetBlockchainInfo()
	if err != nil {
		t.Fatal("getblockchaininfo", err)
	}
	if info.Blocks != 3 || info.BestBlockHash != best {
		t.Fatalf("getblockchaininfo mismatch: %+v", info)
	}
}

func TestRPCErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	client := NewClientURL(ts.URL, "regnode", "regnode")

	// unknown method
	var out string
	err := client.request("frobnicate", []any{}, &out)
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for unknown method, got", err)
	}

	// missing parameter
	err = client.request("generate", []any{}, &out)
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for missing parameter, got", err)
	}

	// invalid address
	_, err = client.SendToAddress("definitely-not-an-address", decimal.NewFromInt(1))
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for bad address, got", err)
	}

	// truncated raw transaction: valid hex, not a valid encoding.
	// Must come back as an rpc error, not tear down the handler.
	_, err = client.SendRawTransaction("01")
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for truncated raw tx, got", err)
	}
	_, err = client.SendRawTransaction("zz")
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for non-hex raw tx, got", err)
	}
	// the server must still answer afterwards
	if _, err := client.GetBlockCount(); err != nil {
		t.Fatal("server stopped answering after bad raw tx:", err)
	}

	// insufficient funds (fresh wallet)
	ts2, _ := newTestServer(t)
	client2 := NewClientURL(ts2.URL, "regnode", "regnode")
	addr, err := client2.GetNewAddress()
	if err != nil {
		t.Fatal("getnewaddress", err)
	}
	_, err = client2.SendToAddress(addr, decimal.NewFromInt(1))
	if !regnode.IsError(err, regnode.RPCError) {
		t.Fatal("expected rpc-error for insufficient funds, got", err)
	}
}

func TestRPCAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	var height int64
	bad := NewClientURL(ts.URL, "regnode", "wrong-password")
	if err := bad.request("getblockcount", []any{}, &height); err == nil {
		t.Fatal("expected auth failure with wrong password")
	}

	good := NewClientURL(ts.URL, "regnode", "regnode")
	if err := good.request("getblockcount", []any{}, &height); err != nil {
		t.Fatal("expected auth success, got", err)
	}
}
