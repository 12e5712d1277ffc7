//go:build nozmq

package publisher

import (
	"context"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/dogecoinfoundation/regnode/pkg/chain"
)

// Built with the nozmq tag: the notification feature is compiled out.
// Callers must check ZMQEnabled (or handle the NotAvailable error) and
// treat the feature as untestable rather than broken.
const ZMQEnabled = false

type ZMQPublisher struct {
	ReceiveFromNode chan chain.Event
}

func NewZMQPublisher(bus regnode.MessageBus, conf regnode.Config) (*ZMQPublisher, error) {
	return nil, regnode.NewErr(regnode.NotAvailable, "zmq publisher: not compiled in (nozmq)")
}

func (p *ZMQPublisher) Enabled(topic string) bool {
	return false
}

func (p *ZMQPublisher) Run(started, stopped chan bool, stop chan context.Context) error {
	return regnode.NewErr(regnode.NotAvailable, "zmq publisher: not compiled in (nozmq)")
}
