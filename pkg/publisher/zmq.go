//go:build !nozmq

package publisher

import (
	"context"
	"fmt"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/dogecoinfoundation/regnode/pkg/chain"
	"github.com/pebbe/zmq4"
)

// ZMQPublisher emits block and transaction notifications over a ZMQ
// PUB socket, the way Dogecoin Core's -zmqpubhashblock/-zmqpubhashtx
// feature does. Each enabled topic carries its own sequence counter.
//
// Delivery is ZMQ PUB/SUB best-effort: a subscriber that connects
// late or falls behind misses messages, and there is no gap recovery.
// Within one connection messages arrive in emission order.
type ZMQPublisher struct {
	bus  regnode.MessageBus
	conf regnode.Config

	// ReceiveFromNode is fed by the chain's event stream; buffer it
	// generously so block bursts never stall the chain.
	ReceiveFromNode chan chain.Event

	endpoints map[string]string // topic -> endpoint
	seq       map[string]*topicSequence
}

// NewZMQPublisher configures a publisher from the node config. Topics
// without a configured endpoint are disabled: their events are
// silently discarded and their counters never advance.
func NewZMQPublisher(bus regnode.MessageBus, conf regnode.Config) (*ZMQPublisher, error) {
	endpoints := map[string]string{}
	if conf.ZMQ.PubHashTx != "" {
		endpoints[TopicHashTx] = conf.ZMQ.PubHashTx
	}
	if conf.ZMQ.PubHashBlock != "" {
		endpoints[TopicHashBlock] = conf.ZMQ.PubHashBlock
	}
	if len(endpoints) == 0 {
		return nil, regnode.NewErr(regnode.NotAvailable, "zmq publisher: no endpoints configured")
	}
	p := &ZMQPublisher{
		bus:             bus,
		conf:            conf,
		ReceiveFromNode: make(chan chain.Event, 1000),
		endpoints:       endpoints,
		seq:             map[string]*topicSequence{},
	}
	for topic := range endpoints {
		p.seq[topic] = &topicSequence{}
	}
	return p, nil
}

// Enabled reports whether a topic will be published.
func (p *ZMQPublisher) Enabled(topic string) bool {
	_, ok := p.endpoints[topic]
	return ok
}

// Implements conductor.Service. The PUB socket is bound before the
// service reports ready, so subscribers connecting after startup
// observe sequence numbers from 0.
func (p *ZMQPublisher) Run(started, stopped chan bool, stop chan context.Context) error {
	sock, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return err
	}
	// one socket bound once per distinct endpoint; both topics usually
	// share tcp://host:port the way Core does
	bound := map[string]bool{}
	for topic, endpoint := range p.endpoints {
		if bound[endpoint] {
			continue
		}
		if err := sock.Bind(endpoint); err != nil {
			sock.Close()
			return fmt.Errorf("zmq publisher: bind %s for %s: %v", endpoint, topic, err)
		}
		bound[endpoint] = true
	}
	p.bus.Send(regnode.SYS_STARTUP, fmt.Sprintf("ZMQ publisher: bound %d endpoint(s)", len(bound)))

	go func() {
		started <- true
		for {
			select {
			case <-stop:
				sock.Close()
				stopped <- true
				return
			case e := <-p.ReceiveFromNode:
				topic := topicFor(e.Type)
				if topic == "" || !p.Enabled(topic) {
					continue
				}
				if err := p.emit(sock, topic, e.ID); err != nil {
					p.bus.Send(regnode.SYS_ERR, fmt.Sprintf("ZMQ publisher: %v", err))
				}
			}
		}
	}()
	return nil
}

// emit sends one notification and advances the topic's counter. The
// counter moves only on a successful send, keeping delivered sequence
// numbers consecutive.
func (p *ZMQPublisher) emit(sock *zmq4.Socket, topic string, hashHex string) error {
	seq := p.seq[topic]
	frames, err := buildFrames(topic, hashHex, seq.n)
	if err != nil {
		return err
	}
	if _, err := sock.SendMessage(frames[0], frames[1], frames[2]); err != nil {
		return fmt.Errorf("send %s %s: %v", topic, hashHex, err)
	}
	seq.Next()
	p.bus.Send(regnode.ZMQ_PUBLISHED, fmt.Sprintf("%s %s", topic, hashHex))
	return nil
}

func topicFor(t chain.EventType) string {
	switch t {
	case chain.TxEvent:
		return TopicHashTx
	case chain.BlockEvent:
		return TopicHashBlock
	default:
		return ""
	}
}
