package main

import (
	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/dogecoinfoundation/regnode/pkg/messages"
	"github.com/dogecoinfoundation/regnode/pkg/publisher"
	"github.com/dogecoinfoundation/regnode/pkg/rpc"
	"github.com/dogecoinfoundation/regnode/pkg/store"
	"github.com/dogecoinfoundation/regnode/pkg/webadmin"
	"github.com/tjstebbing/conductor"
)

func Server(conf regnode.Config) {

	c := conductor.NewConductor(
		conductor.HookSignals(),
		conductor.Noisy(),
	)

	// Start the MessageBus Service
	bus := regnode.NewMessageBus()
	c.Service("MessageBus", bus)

	// Set up all configured bus loggers
	messages.SetUpLoggers(c, bus, conf)

	// Setup the block index store
	idx, err := store.NewSQLiteStore(conf.Store.DBFile)
	if err != nil {
		panic(err)
	}
	defer idx.Close()

	// Assemble the node
	node, err := regnode.NewNode(conf, bus, idx)
	if err != nil {
		panic(err)
	}

	// Start the ZMQ notification publisher, when configured and
	// compiled in
	if conf.ZMQ.PubHashTx != "" || conf.ZMQ.PubHashBlock != "" {
		if !publisher.ZMQEnabled {
			panic("zmq endpoints configured but regnode was built with the nozmq tag")
		}
		pub, err := publisher.NewZMQPublisher(bus, conf)
		if err != nil {
			panic(err)
		}
		node.Chain.Subscribe(pub.ReceiveFromNode)
		c.Service("ZMQ Publisher", pub)
	}

	// Start the JSON-RPC control server
	server, err := rpc.NewServer(conf, node)
	if err != nil {
		panic(err)
	}
	c.Service("RPC Server", server)

	// Start the web admin API
	admin, err := webadmin.NewWebAdmin(conf, node)
	if err != nil {
		panic(err)
	}
	c.Service("Web Admin", admin)

	<-c.Start()
}
