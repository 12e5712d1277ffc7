package harness

import (
	"fmt"
	"time"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/dogecoinfoundation/regnode/pkg/publisher"
	"github.com/dogecoinfoundation/regnode/pkg/rpc"
	"github.com/dogecoinfoundation/regnode/pkg/store"
	"github.com/tjstebbing/conductor"
)

const (
	// RPC ports are allocated sequentially from here, one per node
	baseRPCPort = 18443

	syncTimeout  = 30 * time.Second
	syncInterval = 50 * time.Millisecond
)

// NodeOptions carries per-node startup flags, the way the reference
// test framework passes extra_args to each node.
type NodeOptions struct {
	ZMQPubHashTx    string
	ZMQPubHashBlock string
}

// TestNode is one running in-process node: its RPC client (the test's
// view of it) plus the internals the harness manages.
type TestNode struct {
	*rpc.Client

	Node      *regnode.Node
	config    regnode.Config
	conductor *conductor.Conductor
	store     store.SQLiteStore
	shutdown  chan bool
}

// Harness provisions N interconnected nodes and tears them down again.
type Harness struct {
	Nodes []*TestNode
}

// StartNodes starts len(opts) nodes on sequential RPC ports, connects
// them all as peers, and waits for every service to come up. On any
// startup error the nodes already running are stopped.
func StartNodes(opts []NodeOptions) (*Harness, error) {
	h := &Harness{}
	for i, opt := range opts {
		node, err := startNode(baseRPCPort+i, opt)
		if err != nil {
			h.Teardown()
			return nil, fmt.Errorf("start node %d: %v", i, err)
		}
		h.Nodes = append(h.Nodes, node)
	}
	// full mesh: every node relays to every other
	for i := 0; i < len(h.Nodes); i++ {
		for j := i + 1; j < len(h.Nodes); j++ {
			h.Nodes[i].Node.ConnectPeer(h.Nodes[j].Node)
		}
	}
	return h, nil
}

func startNode(rpcPort int, opt NodeOptions) (*TestNode, error) {
	conf := regnode.TestConfig(rpcPort)
	conf.ZMQ.PubHashTx = opt.ZMQPubHashTx
	conf.ZMQ.PubHashBlock = opt.ZMQPubHashBlock

	c := conductor.NewConductor()

	bus := regnode.NewMessageBus()
	c.Service("MessageBus", bus)

	idx, err := store.NewSQLiteStore(conf.Store.DBFile)
	if err != nil {
		return nil, err
	}

	node, err := regnode.NewNode(conf, bus, idx)
	if err != nil {
		idx.Close()
		return nil, err
	}

	if conf.ZMQ.PubHashTx != "" || conf.ZMQ.PubHashBlock != "" {
		pub, err := publisher.NewZMQPublisher(bus, conf)
		if err != nil {
			idx.Close()
			return nil, err
		}
		node.Chain.Subscribe(pub.ReceiveFromNode)
		c.Service("ZMQ Publisher", pub)
	}

	server, err := rpc.NewServer(conf, node)
	if err != nil {
		idx.Close()
		return nil, err
	}
	c.Service("RPC Server", server)

	shutdown := c.Start()

	tn := &TestNode{
		Client:    rpc.NewClient(conf),
		Node:      node,
		config:    conf,
		conductor: c,
		store:     idx,
		shutdown:  shutdown,
	}
	// verify the node answers before handing it to the test
	if _, err := tn.GetBlockCount(); err != nil {
		tn.Stop()
		return nil, fmt.Errorf("node not answering on port %d: %v", rpcPort, err)
	}
	return tn, nil
}

// Stop shuts the node's services down and closes its block index.
func (n *TestNode) Stop() {
	n.conductor.Stop()
	<-n.shutdown
	n.store.Close()
}

// Teardown stops every node. Always runs from a deferred call so the
// nodes are released on success, assertion failure or timeout alike.
func (h *Harness) Teardown() {
	for _, n := range h.Nodes {
		n.Stop()
	}
	h.Nodes = nil
}

// SyncAll blocks until all nodes agree on the best block hash and on
// mempool contents, the equivalent of the reference framework's
// sync_all. Fails rather than hanging if convergence takes too long.
func (h *Harness) SyncAll() error {
	deadline := time.Now().Add(syncTimeout)
	for {
		synced, err := h.inSync()
		if err != nil {
			return err
		}
		if synced {
			return nil
		}
		if time.Now().After(deadline) {
			return regnode.NewErr(regnode.Timeout, "sync_all: nodes did not converge within %s", syncTimeout)
		}
		time.Sleep(syncInterval)
	}
}

func (h *Harness) inSync() (bool, error) {
	if len(h.Nodes) < 2 {
		return true, nil
	}
	tip, err := h.Nodes[0].GetBestBlockHash()
	if err != nil {
		return false, err
	}
	pool, err := h.Nodes[0].GetRawMempool()
	if err != nil {
		return false, err
	}
	for _, n := range h.Nodes[1:] {
		ntip, err := n.GetBestBlockHash()
		if err != nil {
			return false, err
		}
		if ntip != tip {
			return false, nil
		}
		npool, err := n.GetRawMempool()
		if err != nil {
			return false, err
		}
		if !sameTxSet(pool, npool) {
			return false, nil
		}
	}
	return true, nil
}

func sameTxSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, txid := range a {
		set[txid] = true
	}
	for _, txid := range b {
		if !set[txid] {
			return false
		}
	}
	return true
}
