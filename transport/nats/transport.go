// Package nats carries the ghost exchange between ranks running in separate
// processes. Each rank listens on <prefix>.rank.<n>; a message is delivered
// with a request so the sender knows the receiver buffered it. Every message
// carries the sender's session and a per destination sequence number, so a
// retry whose original request did arrive is acknowledged and dropped.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/notargets/ddmesh/transport"
)

var errBusy = errors.New("receive buffer full")

type Config struct {
	Connect        Connector          // If nil, ConnectDefault() is used
	Log            logrus.FieldLogger // Optional
	SubjectPrefix  string             // Defaults to "ddmesh"; ranks of one run must share it
	Rank, Size     int
	Depth          int           // Buffered messages per source rank and tag, defaults to 4
	RequestTimeout time.Duration // Per attempt, defaults to 2s
	RetryInterval  time.Duration // Wait between attempts, defaults to 50ms
}

// Transport is one rank's endpoint on a NATS server
type Transport struct {
	cfg     Config
	nc      *natsgo.Conn
	closeNc closeFunc
	log     logrus.FieldLogger
	sub     *natsgo.Subscription

	in      *inbox
	session string
	sendMu  []sync.Mutex // [dest]
	seq     []uint64     // [dest], last sequence number sent

	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

// envelope is the wire frame of one message
type envelope struct {
	Session string             `json:"session"`
	Seq     uint64             `json:"seq,omitempty"` // Zero disables duplicate detection
	Msg     *transport.Message `json:"msg"`
}

// replyFrame acknowledges a delivered message
type replyFrame struct {
	Err string `json:"err,omitempty"`
}

// New connects and subscribes to this rank's subject. Messages from peers
// that start earlier are retried until the subscription exists.
func New(cfg Config) (*Transport, error) {
	if cfg.Size < 1 || cfg.Rank < 0 || cfg.Rank >= cfg.Size {
		return nil, fmt.Errorf("nats: rank %d of %d: %w", cfg.Rank, cfg.Size, transport.ErrInvalidRank)
	}
	if cfg.Connect == nil {
		cfg.Connect = ConnectDefault()
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "ddmesh"
	}
	if cfg.Depth < 1 {
		cfg.Depth = 4
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	nc, closeNc, err := cfg.Connect()
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	t := &Transport{
		cfg:     cfg,
		nc:      nc,
		closeNc: closeNc,
		log:     log.WithFields(logrus.Fields{"transport": "nats", "rank": cfg.Rank}),
		in:      newInbox(cfg.Rank, cfg.Size, cfg.Depth),
		session: natsgo.NewInbox(),
		sendMu:  make([]sync.Mutex, cfg.Size),
		seq:     make([]uint64, cfg.Size),
		done:    make(chan struct{}),
	}
	if t.sub, err = nc.Subscribe(t.subject(cfg.Rank), t.handle); err != nil {
		closeNc()
		return nil, fmt.Errorf("nats: subscribe: %w", err)
	}
	if err = nc.Flush(); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("nats: flush: %w", err)
	}
	return t, nil
}

func (t *Transport) subject(rank int) string {
	return t.cfg.SubjectPrefix + ".rank." + strconv.Itoa(rank)
}

func (t *Transport) Rank() int { return t.cfg.Rank }
func (t *Transport) Size() int { return t.cfg.Size }

func (t *Transport) reply(msg *natsgo.Msg, err error) {
	var rf replyFrame
	if err != nil {
		rf.Err = err.Error()
	}
	b, _ := json.Marshal(rf)
	if err := msg.Respond(b); err != nil {
		t.log.WithError(err).Error("failed to publish reply")
	}
}

func (t *Transport) handle(msg *natsgo.Msg) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.log.WithError(err).Error("failed to decode message")
		t.reply(msg, err)
		return
	}
	t.reply(msg, t.in.deliver(&env))
}

// Send retries until dest has buffered msg or ctx ends. Sends to one
// destination are serialized so their sequence numbers arrive in order.
func (t *Transport) Send(ctx context.Context, dest int, msg *transport.Message) error {
	if t.closed.Load() {
		return transport.ErrClosed
	}
	if dest < 0 || dest >= t.cfg.Size || dest == t.cfg.Rank {
		return transport.ErrInvalidRank
	}
	t.sendMu[dest].Lock()
	defer t.sendMu[dest].Unlock()
	t.seq[dest]++
	payload, err := json.Marshal(envelope{Session: t.session, Seq: t.seq[dest], Msg: msg})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	subj := t.subject(dest)
	for attempt := 1; ; attempt++ {
		err = t.request(ctx, subj, payload)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, natsgo.ErrNoResponders), errors.Is(err, natsgo.ErrTimeout),
			errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil, errors.Is(err, errBusy):
			t.log.WithFields(logrus.Fields{"dest": dest, "seq": t.seq[dest], "attempt": attempt}).
				WithError(err).Debug("retrying send")
		default:
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return transport.ErrClosed
		case <-time.After(t.cfg.RetryInterval):
		}
	}
}

func (t *Transport) request(ctx context.Context, subj string, payload []byte) error {
	rctx, cancel := context.WithTimeout(ctx, t.cfg.RequestTimeout)
	defer cancel()
	resp, err := t.nc.RequestWithContext(rctx, subj, payload)
	if err != nil {
		return err
	}
	var rf replyFrame
	if err = json.Unmarshal(resp.Data, &rf); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	switch rf.Err {
	case "":
		return nil
	case errBusy.Error():
		return errBusy
	}
	return errors.New(rf.Err)
}

// Receive waits for the next message from source carrying tag
func (t *Transport) Receive(ctx context.Context, source int, tag string) (*transport.Message, error) {
	if source < 0 || source >= t.cfg.Size || source == t.cfg.Rank {
		return nil, transport.ErrInvalidRank
	}
	select {
	case m := <-t.in.queue(source, tag):
		return m, nil
	case <-t.done:
		return nil, transport.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close unsubscribes and releases the connection. Pending receives fail with
// transport.ErrClosed.
func (t *Transport) Close() (err error) {
	if t.closed.Swap(true) {
		return transport.ErrClosed
	}
	t.once.Do(func() { close(t.done) })
	if n := t.in.pending(); n > 0 {
		t.log.WithField("pending", n).Warn("closing with undelivered messages")
	}
	if t.sub != nil {
		err = t.sub.Unsubscribe()
	}
	t.closeNc()
	return
}
