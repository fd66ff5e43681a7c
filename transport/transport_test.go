package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial(t *testing.T) {
	var s Serial
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, 1, s.Size())
	assert.ErrorIs(t, s.Send(context.Background(), 0, &Message{}), ErrInvalidRank)
	_, err := s.Receive(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestWorld(t *testing.T) {
	ctx := context.Background()
	w := NewWorld(3, 0)
	assert.Equal(t, 3, w.Size())
	assert.Panics(t, func() { w.Endpoint(3) })

	// All to all, each rank receives in ascending source order
	var (
		wg  sync.WaitGroup
		got = make([][]int, 3)
	)
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func(ep Transport) {
			defer wg.Done()
			me := ep.Rank()
			for dest := 0; dest < ep.Size(); dest++ {
				if dest != me {
					assert.NoError(t, ep.Send(ctx, dest, &Message{Source: me,
						Nodes: []NodeRecord{{GlobalNode: uint64(10*me + dest)}}}))
				}
			}
			for src := 0; src < ep.Size(); src++ {
				if src == me {
					continue
				}
				msg, err := ep.Receive(ctx, src, "")
				if assert.NoError(t, err) {
					assert.Equal(t, src, msg.Source)
					got[me] = append(got[me], int(msg.Nodes[0].GlobalNode))
				}
			}
		}(w.Endpoint(r))
	}
	wg.Wait()
	assert.Equal(t, [][]int{{10, 20}, {1, 21}, {2, 12}}, got)

	ep := w.Endpoint(1)
	assert.ErrorIs(t, ep.Send(ctx, 1, &Message{}), ErrInvalidRank)
	_, err := ep.Receive(ctx, 5, "")
	assert.ErrorIs(t, err, ErrInvalidRank)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = ep.Receive(cctx, 0, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorld_Ordering(t *testing.T) {
	ctx := context.Background()
	w := NewWorld(2, 4)
	a, b := w.Endpoint(0), w.Endpoint(1)
	for i := 0; i < 4; i++ {
		require.NoError(t, a.Send(ctx, 1, &Message{Source: 0, Faces: []GhostFace{{Cell: i}}}))
	}
	for i := 0; i < 4; i++ {
		msg, err := b.Receive(ctx, 0, "")
		require.NoError(t, err)
		assert.Equal(t, i, msg.Faces[0].Cell)
	}
}

func TestWorld_Tags(t *testing.T) {
	ctx := context.Background()
	w := NewWorld(2, 1)
	a, b := w.Endpoint(0), w.Endpoint(1)
	require.NoError(t, a.Send(ctx, 1, &Message{Source: 0, Tag: "x", Faces: []GhostFace{{Cell: 1}}}))
	require.NoError(t, a.Send(ctx, 1, &Message{Source: 0, Tag: "y", Faces: []GhostFace{{Cell: 2}}}))

	msg, err := b.Receive(ctx, 0, "y")
	require.NoError(t, err)
	assert.Equal(t, 2, msg.Faces[0].Cell)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = b.Receive(cctx, 0, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	msg, err = b.Receive(ctx, 0, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", msg.Tag)
	assert.Equal(t, 1, msg.Faces[0].Cell)
}
