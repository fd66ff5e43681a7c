package nats

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notargets/ddmesh/transport"
)

type queueKey struct {
	source int
	tag    string
}

type senderKey struct {
	source  int
	session string
}

// inbox buffers delivered messages per source and tag. It remembers the last
// sequence number buffered from each sender session and acknowledges anything
// at or below it without buffering it again.
type inbox struct {
	rank, size, depth int

	mu     sync.Mutex
	queues map[queueKey]chan *transport.Message
	last   map[senderKey]uint64
}

func newInbox(rank, size, depth int) *inbox {
	return &inbox{
		rank:   rank,
		size:   size,
		depth:  depth,
		queues: make(map[queueKey]chan *transport.Message),
		last:   make(map[senderKey]uint64),
	}
}

func (in *inbox) queueLocked(source int, tag string) chan *transport.Message {
	key := queueKey{source: source, tag: tag}
	q, ok := in.queues[key]
	if !ok {
		q = make(chan *transport.Message, in.depth)
		in.queues[key] = q
	}
	return q
}

func (in *inbox) queue(source int, tag string) chan *transport.Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.queueLocked(source, tag)
}

// deliver buffers env's message. A nil return acknowledges it, errBusy asks
// the sender to retry.
func (in *inbox) deliver(env *envelope) error {
	if env.Msg == nil {
		return errors.New("envelope without message")
	}
	src := env.Msg.Source
	if src < 0 || src >= in.size || src == in.rank {
		return fmt.Errorf("source %d: %w", src, transport.ErrInvalidRank)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	key := senderKey{source: src, session: env.Session}
	if env.Seq != 0 && env.Seq <= in.last[key] {
		return nil
	}
	select {
	case in.queueLocked(src, env.Msg.Tag) <- env.Msg:
		if env.Seq != 0 {
			in.last[key] = env.Seq
		}
		return nil
	default:
		return errBusy
	}
}

// pending counts buffered messages over all sources and tags
func (in *inbox) pending() (n int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, q := range in.queues {
		n += len(q)
	}
	return
}
