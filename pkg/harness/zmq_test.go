package harness_test

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/dogecoinfoundation/regnode/pkg/harness"
	"github.com/dogecoinfoundation/regnode/pkg/publisher"
	"github.com/dogecoinfoundation/regnode/pkg/subscriber"
	"github.com/shopspring/decimal"
)

const zmqEndpoint = "tcp://127.0.0.1:28332"

// TestZMQNotifications drives two nodes and asserts the notification
// contract: one message per accepted event, per-topic sequence numbers
// counting up from 0, and notification bodies matching the hashes the
// RPC calls returned.
func TestZMQNotifications(t *testing.T) {
	if !publisher.ZMQEnabled {
		t.Skip("regnode built without zmq (nozmq tag), skipping zmq tests")
	}

	// node 0 publishes, node 1 does not
	h, err := harness.StartNodes([]harness.NodeOptions{
		{ZMQPubHashTx: zmqEndpoint, ZMQPubHashBlock: zmqEndpoint},
		{},
	})
	if err != nil {
		if regnode.IsError(err, regnode.NotAvailable) {
			t.Skip("zmq transport not available, skipping zmq tests:", err)
		}
		t.Fatal("StartNodes", err)
	}
	defer h.Teardown()

	sub, err := subscriber.NewZMQSubscriber(zmqEndpoint)
	if err != nil {
		if regnode.IsError(err, regnode.NotAvailable) {
			t.Skip("zmq transport not available, skipping zmq tests:", err)
		}
		t.Fatal("NewZMQSubscriber", err)
	}
	defer sub.Close()
	if err := sub.Subscribe(publisher.TopicHashBlock, publisher.TopicHashTx); err != nil {
		t.Fatal("Subscribe", err)
	}
	// PUB/SUB joining is asynchronous: give the subscription time to
	// reach the publisher before triggering the first notifications
	time.Sleep(500 * time.Millisecond)

	genhashes, err := h.Nodes[0].Generate(1)
	if err != nil {
		t.Fatal("generate on node 0", err)
	}
	if err := h.SyncAll(); err != nil {
		t.Fatal("sync_all", err)
	}

	t.Log("Wait for tx")
	msg := receive(t, sub)
	if topic(msg) != "hashtx" {
		t.Fatalf("expected topic hashtx, got %q", topic(msg))
	}
	// Must be sequence 0 on hashtx
	if seq := sequence(t, msg); seq != 0 {
		t.Fatalf("expected hashtx sequence 0, got %d", seq)
	}

	t.Log("Wait for block")
	msg = receive(t, sub)
	if topic(msg) != "hashblock" {
		t.Fatalf("expected topic hashblock, got %q", topic(msg))
	}
	// Must be sequence 0 on hashblock
	if seq := sequence(t, msg); seq != 0 {
		t.Fatalf("expected hashblock sequence 0, got %d", seq)
	}
	// blockhash from generate must be equal to the hash received over zmq
	if blkhash := bodyHex(msg); blkhash != genhashes[0] {
		t.Fatalf("hashblock body mismatch: generate returned %s, zmq delivered %s", genhashes[0], blkhash)
	}

	t.Log("Generate 10 blocks (and 10 coinbase txes)")
	n := 10
	genhashes, err = h.Nodes[1].Generate(n)
	if err != nil {
		t.Fatal("generate on node 1", err)
	}
	if err := h.SyncAll(); err != nil {
		t.Fatal("sync_all", err)
	}

	var zmqHashes []string
	blockcount := uint32(0)
	for x := 0; x < n*2; x++ {
		msg := receive(t, sub)
		if topic(msg) == "hashblock" {
			zmqHashes = append(zmqHashes, bodyHex(msg))
			if seq := sequence(t, msg); seq != blockcount+1 {
				t.Fatalf("expected hashblock sequence %d, got %d", blockcount+1, seq)
			}
			blockcount++
		}
	}
	if len(zmqHashes) != n {
		t.Fatalf("expected %d hashblock messages, got %d", n, len(zmqHashes))
	}
	for x := 0; x < n; x++ {
		// blockhash from generate must be equal to the hash
		// received over zmq
		if genhashes[x] != zmqHashes[x] {
			t.Fatalf("hashblock %d mismatch: generate returned %s, zmq delivered %s", x, genhashes[x], zmqHashes[x])
		}
	}

	// Test tx from a second node
	addr, err := h.Nodes[0].GetNewAddress()
	if err != nil {
		t.Fatal("getnewaddress on node 0", err)
	}
	hashRPC, err := h.Nodes[1].SendToAddress(addr, decimal.NewFromInt(1))
	if err != nil {
		t.Fatal("sendtoaddress on node 1", err)
	}
	if err := h.SyncAll(); err != nil {
		t.Fatal("sync_all", err)
	}

	// Now we should receive a zmq msg because the tx was broadcast
	msg = receive(t, sub)
	if topic(msg) != "hashtx" {
		t.Fatalf("expected topic hashtx, got %q", topic(msg))
	}
	if seq := sequence(t, msg); seq != blockcount+1 {
		t.Fatalf("expected hashtx sequence %d, got %d", blockcount+1, seq)
	}
	// txid from sendtoaddress must be equal to the hash received over zmq
	if hashZMQ := bodyHex(msg); hashZMQ != hashRPC {
		t.Fatalf("hashtx body mismatch: sendtoaddress returned %s, zmq delivered %s", hashRPC, hashZMQ)
	}
}

// receive blocks for the next notification, failing the test on
// timeout (reported distinctly) or any transport error.
func receive(t *testing.T, sub *subscriber.ZMQSubscriber) [][]byte {
	t.Helper()
	msg, err := sub.Receive()
	if err != nil {
		if regnode.IsTimeoutError(err) {
			t.Fatal("timed out waiting for zmq message:", err)
		}
		t.Fatal("zmq receive:", err)
	}
	if len(msg) < 3 {
		t.Fatalf("expected 3 message parts, got %d", len(msg))
	}
	return msg
}

func topic(msg [][]byte) string {
	return string(msg[0])
}

func bodyHex(msg [][]byte) string {
	return hex.EncodeToString(msg[1])
}

func sequence(t *testing.T, msg [][]byte) uint32 {
	t.Helper()
	last := msg[len(msg)-1]
	if len(last) != 4 {
		t.Fatalf("expected 4-byte sequence, got %d bytes", len(last))
	}
	return binary.LittleEndian.Uint32(last)
}
