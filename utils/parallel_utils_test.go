package utils

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			// for n := 64; n < 10000; n++ {
			// n := 64
			// {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			// fmt.Printf("keys = %v, histo[%d] = %v\n", keys, n, histo)
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Test inverted bucket probe - find bucket that contains index (efficiently)
		for maxIndex := 10; maxIndex < 1000; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
	}
}

func TestMailBox(t *testing.T) {
	ctx := context.Background()
	mb := NewMailBox[int](3, 0)
	assert.Equal(t, 3, mb.Depth)

	// Per pair FIFO, independent of other senders
	require.NoError(t, mb.PostMessage(ctx, 0, 2, "", 1))
	require.NoError(t, mb.PostMessage(ctx, 1, 2, "", 10))
	require.NoError(t, mb.PostMessage(ctx, 0, 2, "", 2))
	assert.Equal(t, 3, mb.Pending(2))
	msg, err := mb.ReceiveMessage(ctx, 2, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 10, msg)
	for _, want := range []int{1, 2} {
		msg, err = mb.ReceiveMessage(ctx, 2, 0, "")
		require.NoError(t, err)
		assert.Equal(t, want, msg)
	}
	assert.Equal(t, 0, mb.Pending(2))

	require.NoError(t, mb.PostMessageToAll(ctx, 1, "", 7))
	assert.Equal(t, 1, mb.Pending(0))
	assert.Equal(t, 1, mb.Pending(2))
	assert.Equal(t, 0, mb.Pending(1))

	assert.Error(t, mb.PostMessage(ctx, 1, 1, "", 0))
	assert.Error(t, mb.PostMessage(ctx, 0, 3, "", 0))
	_, err = mb.ReceiveMessage(ctx, -1, 0, "")
	assert.Error(t, err)

	// An empty queue blocks until the context ends
	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = mb.ReceiveMessage(cctx, 0, 2, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// So does a full one
	full := NewMailBox[int](2, 1)
	require.NoError(t, full.PostMessage(ctx, 0, 1, "", 1))
	assert.ErrorIs(t, full.PostMessage(cctx, 0, 1, "", 2), context.DeadlineExceeded)
}

func TestMailBox_Tags(t *testing.T) {
	ctx := context.Background()
	mb := NewMailBox[int](2, 1)

	// Tags are separate conversations between the same pair
	require.NoError(t, mb.PostMessage(ctx, 0, 1, "a", 1))
	require.NoError(t, mb.PostMessage(ctx, 0, 1, "b", 2))
	assert.Equal(t, 2, mb.Pending(1))
	msg, err := mb.ReceiveMessage(ctx, 1, 0, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, msg)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = mb.ReceiveMessage(cctx, 1, 0, "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	msg, err = mb.ReceiveMessage(ctx, 1, 0, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, msg)
	assert.Equal(t, 0, mb.Pending(1))

	// A receiver waiting before the first post still gets the message
	got := make(chan int, 1)
	go func() {
		m, _ := mb.ReceiveMessage(ctx, 0, 1, "late")
		got <- m
	}()
	require.NoError(t, mb.PostMessage(ctx, 1, 0, "late", 5))
	select {
	case m := <-got:
		assert.Equal(t, 5, m)
	case <-time.After(5 * time.Second):
		t.Fatal("message on a fresh tag was not delivered")
	}
}
