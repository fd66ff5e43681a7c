package transport

import (
	"context"

	"github.com/notargets/ddmesh/utils"
)

// World is an in-process communicator: one Transport endpoint per rank, each
// meant to be driven by its own goroutine.
type World struct {
	mb *utils.MailBox[*Message]
}

// NewWorld creates a communicator of size ranks. depth bounds the number of
// undelivered messages per rank pair and tag; zero picks the rank count.
func NewWorld(size, depth int) *World {
	return &World{mb: utils.NewMailBox[*Message](size, depth)}
}

func (w *World) Size() int { return w.mb.NP }

// Endpoint returns the transport of rank
func (w *World) Endpoint(rank int) Transport {
	if rank < 0 || rank >= w.mb.NP {
		panic("rank outside world")
	}
	return &endpoint{w: w, rank: rank}
}

type endpoint struct {
	w    *World
	rank int
}

func (e *endpoint) Rank() int { return e.rank }
func (e *endpoint) Size() int { return e.w.mb.NP }

func (e *endpoint) Send(ctx context.Context, dest int, msg *Message) error {
	if err := checkPeer(e, dest); err != nil {
		return err
	}
	return e.w.mb.PostMessage(ctx, e.rank, dest, msg.Tag, msg)
}

func (e *endpoint) Receive(ctx context.Context, source int, tag string) (*Message, error) {
	if err := checkPeer(e, source); err != nil {
		return nil, err
	}
	return e.w.mb.ReceiveMessage(ctx, e.rank, source, tag)
}
