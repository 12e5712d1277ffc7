//go:build !nozmq

package publisher

// ZMQEnabled reports whether the notification feature was compiled in.
// Tests skip (not fail) when it is false.
const ZMQEnabled = true
