//go:build !nozmq

package subscriber

import (
	"testing"
	"time"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/pebbe/zmq4"
)

// A bound publisher that never sends: Receive must give up after the
// configured timeout and report it as a Timeout error, distinct from
// transport failures.
func TestReceiveTimeout(t *testing.T) {
	pub, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		t.Skip("zmq transport not available, skipping:", err)
	}
	defer pub.Close()
	endpoint := "tcp://127.0.0.1:28342"
	if err := pub.Bind(endpoint); err != nil {
		t.Fatal("Bind", err)
	}

	sub, err := newZMQSubscriber(endpoint, 100*time.Millisecond)
	if err != nil {
		t.Fatal("newZMQSubscriber", err)
	}
	defer sub.Close()
	if err := sub.Subscribe("hashblock"); err != nil {
		t.Fatal("Subscribe", err)
	}

	start := time.Now()
	msg, err := sub.Receive()
	if err == nil {
		t.Fatal("expected a timeout error, got message:", msg)
	}
	if !regnode.IsTimeoutError(err) {
		t.Fatal("expected a Timeout error, got", err)
	}
	// the wait must be bounded by the timeout, not the default 60s
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatal("Receive blocked far past the configured timeout:", elapsed)
	}
}

func TestDefaultReceiveTimeout(t *testing.T) {
	if ReceiveTimeout != 60*time.Second {
		t.Fatal("default receive timeout changed:", ReceiveTimeout)
	}
}
