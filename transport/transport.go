// Package transport carries the ghost stitching exchange between ranks
package transport

import (
	"context"
	"errors"
)

var (
	ErrClosed      = errors.New("transport closed")
	ErrInvalidRank = errors.New("invalid rank")
)

// GhostFace announces one shared face to the rank that owns the ghost cell
type GhostFace struct {
	RemoteCell  int      `json:"remote_cell"`  // Receiver's local cell (the sender's ghost cell number)
	Cell        int      `json:"cell"`         // Sender's local cell
	GlobalNodes []uint64 `json:"global_nodes"` // Face nodes in the sender's face order
}

// NodeRecord describes one sender node lying on an inter-rank boundary
type NodeRecord struct {
	GlobalNode uint64 `json:"global_node"`
	Cell       int    `json:"cell"`     // Sender cell representing the node
	Adjacent   []int  `json:"adjacent"` // Sender-local nodes adjacent to it in Cell
}

// Message is the single batched exchange payload from one rank to another.
// Tag names the conversation it belongs to, so independent exchanges can
// share one transport.
type Message struct {
	Source int          `json:"source"`
	Tag    string       `json:"tag,omitempty"`
	Faces  []GhostFace  `json:"faces,omitempty"`
	Nodes  []NodeRecord `json:"nodes,omitempty"`
}

// Transport is a rank's view of the communicator. Messages between any
// ordered pair of ranks with the same tag are delivered in the order they
// were sent.
type Transport interface {
	Rank() int
	Size() int
	// Send returns once the transport has accepted msg for dest
	Send(ctx context.Context, dest int, msg *Message) error
	// Receive blocks until the next message from source carrying tag arrives
	Receive(ctx context.Context, source int, tag string) (*Message, error)
}

func checkPeer(t Transport, peer int) error {
	if peer < 0 || peer >= t.Size() || peer == t.Rank() {
		return ErrInvalidRank
	}
	return nil
}
