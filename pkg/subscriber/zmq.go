//go:build !nozmq

package subscriber

import (
	"syscall"
	"time"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/pebbe/zmq4"
)

// ReceiveTimeout bounds every blocking Receive call; a node that emits
// nothing for this long is treated as broken rather than hanging the
// caller forever.
const ReceiveTimeout = 60 * time.Second

// ZMQSubscriber is a SUB-socket client for node notifications, used by
// the functional tests and by external integrations. Close it on every
// exit path: the underlying context holds a file descriptor that does
// not free itself.
type ZMQSubscriber struct {
	ctx     *zmq4.Context
	sock    *zmq4.Socket
	timeout time.Duration
}

// NewZMQSubscriber connects a SUB socket to the publisher endpoint.
// Subscribe to at least one topic before expecting any messages.
func NewZMQSubscriber(endpoint string) (*ZMQSubscriber, error) {
	return newZMQSubscriber(endpoint, ReceiveTimeout)
}

// newZMQSubscriber takes the receive timeout as a parameter so tests
// can exercise the timeout path without waiting the full period.
func newZMQSubscriber(endpoint string, timeout time.Duration) (*ZMQSubscriber, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, err
	}
	sock, err := ctx.NewSocket(zmq4.SUB)
	if err != nil {
		ctx.Term()
		return nil, err
	}
	if err := sock.SetRcvtimeo(timeout); err != nil {
		sock.Close()
		ctx.Term()
		return nil, err
	}
	if err := sock.Connect(endpoint); err != nil {
		sock.Close()
		ctx.Term()
		return nil, err
	}
	return &ZMQSubscriber{ctx: ctx, sock: sock, timeout: timeout}, nil
}

// Subscribe registers interest in a topic. Call once per topic.
func (z *ZMQSubscriber) Subscribe(topics ...string) error {
	for _, topic := range topics {
		if err := z.sock.SetSubscribe(topic); err != nil {
			return err
		}
	}
	return nil
}

// Receive blocks until a full multipart message arrives and returns
// its frames: topic, body, sequence bytes. A timeout is reported as a
// regnode.Timeout error, distinct from any other failure.
func (z *ZMQSubscriber) Receive() ([][]byte, error) {
	msg, err := z.sock.RecvMessageBytes(0)
	if err != nil {
		if errno, ok := err.(zmq4.Errno); ok &&
			(errno == zmq4.Errno(syscall.EAGAIN) || errno == zmq4.Errno(syscall.ETIMEDOUT)) {
			return nil, regnode.NewErr(regnode.Timeout, "zmq receive: no message within %s", z.timeout)
		}
		return nil, err
	}
	return msg, nil
}

// Close releases the socket and terminates the transport context.
// Safe to call exactly once; defer it at acquisition.
func (z *ZMQSubscriber) Close() {
	z.sock.Close()
	z.ctx.Term()
}
