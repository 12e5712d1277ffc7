package regnode

// RegNode bus event types

// bus.Send(CHAIN_BLOCK, summary)
// bus.Send(SYS_ERR, msg)

// Interface for any event
type EventType interface {
	Type() string
}

// slice of all msg types for config funcs lookup
var EVENT_TYPES []EventType = []EventType{EVENT_ALL("ALL"),
	EVENT_SYS("SYS"),
	EVENT_CHAIN("CHAIN"),
	EVENT_ZMQ("ZMQ")}

// Special category, do not use directly, represents *
type EVENT_ALL string

func (e EVENT_ALL) Type() string {
	return "ALL"
}

// System Events
type EVENT_SYS string

func (e EVENT_SYS) Type() string {
	return "SYS"
}

const (
	SYS_STARTUP EVENT_SYS = "STARTUP"
	SYS_ERR     EVENT_SYS = "ERR"
	SYS_MSG     EVENT_SYS = "MSG"
)

// Chain events: blocks connected, transactions accepted
type EVENT_CHAIN string

func (e EVENT_CHAIN) Type() string {
	return "CHAIN"
}

const (
	CHAIN_BLOCK EVENT_CHAIN = "BLOCK"
	CHAIN_TX    EVENT_CHAIN = "TX"
)

// ZMQ publisher events (notifications actually sent on the wire)
type EVENT_ZMQ string

func (e EVENT_ZMQ) Type() string {
	return "ZMQ"
}

const (
	ZMQ_PUBLISHED EVENT_ZMQ = "PUBLISHED"
	ZMQ_DROPPED   EVENT_ZMQ = "DROPPED"
)
