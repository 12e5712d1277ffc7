package publisher

import (
	"encoding/hex"
	"fmt"
)

// Notification topics. A subscriber opts into a topic by name;
// non-subscribed topics are never delivered by ZMQ.
const (
	TopicHashBlock = "hashblock"
	TopicHashTx    = "hashtx"
)

// topicSequence is the per-topic notification counter. It starts at 0,
// increments by exactly 1 per emitted message and is never reset for
// the lifetime of the node process. Only the publisher's emit path
// touches it.
type topicSequence struct {
	n uint32
}

// Next returns the sequence number for the next message on this topic.
func (s *topicSequence) Next() uint32 {
	n := s.n
	s.n++
	return n
}

// buildFrames assembles the multipart notification message:
// part 0 = ASCII topic, part 1 = 32-byte hash in display byte order
// (hex-encodes to the same string RPC returns), part 2 = 4-byte
// little-endian sequence number.
func buildFrames(topic string, hashHex string, seq uint32) ([][]byte, error) {
	body, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, fmt.Errorf("publish %s: bad hash hex: %v", topic, err)
	}
	if len(body) != 32 {
		return nil, fmt.Errorf("publish %s: expected 32-byte hash, got %d bytes", topic, len(body))
	}
	seqBytes := []byte{byte(seq), byte(seq >> 8), byte(seq >> 16), byte(seq >> 24)}
	return [][]byte{[]byte(topic), body, seqBytes}, nil
}
