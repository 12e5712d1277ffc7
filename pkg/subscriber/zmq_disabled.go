//go:build nozmq

package subscriber

import (
	regnode "github.com/dogecoinfoundation/regnode/pkg"
)

// Built with the nozmq tag: no subscription transport is available.

type ZMQSubscriber struct{}

func NewZMQSubscriber(endpoint string) (*ZMQSubscriber, error) {
	return nil, regnode.NewErr(regnode.NotAvailable, "zmq subscriber: not compiled in (nozmq)")
}

func (z *ZMQSubscriber) Subscribe(topics ...string) error {
	return regnode.NewErr(regnode.NotAvailable, "zmq subscriber: not compiled in (nozmq)")
}

func (z *ZMQSubscriber) Receive() ([][]byte, error) {
	return nil, regnode.NewErr(regnode.NotAvailable, "zmq subscriber: not compiled in (nozmq)")
}

func (z *ZMQSubscriber) Close() {}
