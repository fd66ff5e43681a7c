package utils

import (
	"context"
	"fmt"
	"sync"
)

// MailBox connects NP threads with one FIFO queue per ordered (source,
// target) pair and tag, so a receiver can wait on a specific sender within
// one conversation. Queues are created on first use.
type MailBox[T any] struct {
	NP    int
	Depth int
	mu    sync.Mutex
	boxes map[mailKey]chan T
}

type mailKey struct {
	target, source int
	tag            string
}

func NewMailBox[T any](NP, depth int) *MailBox[T] {
	if depth < 1 {
		depth = NP // Worst case is all-to-all
	}
	return &MailBox[T]{
		NP:    NP,
		Depth: depth,
		boxes: make(map[mailKey]chan T),
	}
}

func (mb *MailBox[T]) checkPair(myThread, otherThread int) error {
	if myThread < 0 || myThread >= mb.NP || otherThread < 0 || otherThread >= mb.NP {
		return fmt.Errorf("thread pair (%d,%d) out of bounds [0,%d)", myThread, otherThread, mb.NP)
	}
	if myThread == otherThread {
		return fmt.Errorf("thread %d cannot message itself", myThread)
	}
	return nil
}

func (mb *MailBox[T]) box(target, source int, tag string) chan T {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	key := mailKey{target: target, source: source, tag: tag}
	ch, ok := mb.boxes[key]
	if !ok {
		ch = make(chan T, mb.Depth)
		mb.boxes[key] = ch
	}
	return ch
}

// PostMessage queues msg for targetThread under tag, blocking only while
// that queue is full
func (mb *MailBox[T]) PostMessage(ctx context.Context, myThread, targetThread int, tag string, msg T) error {
	if err := mb.checkPair(myThread, targetThread); err != nil {
		return err
	}
	select {
	case mb.box(targetThread, myThread, tag) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MailBox[T]) PostMessageToAll(ctx context.Context, myThread int, tag string, msg T) error {
	for k := 0; k < mb.NP; k++ {
		if k != myThread {
			if err := mb.PostMessage(ctx, myThread, k, tag, msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReceiveMessage waits for the next message sourceThread posted to myThread
// under tag
func (mb *MailBox[T]) ReceiveMessage(ctx context.Context, myThread, sourceThread int, tag string) (msg T, err error) {
	if err = mb.checkPair(myThread, sourceThread); err != nil {
		return
	}
	select {
	case msg = <-mb.box(myThread, sourceThread, tag):
	case <-ctx.Done():
		err = ctx.Err()
	}
	return
}

// Pending is the number of queued messages addressed to myThread, over all tags
func (mb *MailBox[T]) Pending(myThread int) (n int) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for key, ch := range mb.boxes {
		if key.target == myThread {
			n += len(ch)
		}
	}
	return
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucket(kDim int) (bucketNum, min, max int) {
	_, bucketNum, min, max = pm.getBucketWithTryCount(kDim)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(kDim int) (tryCount, bucketNum, min, max int) {
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*kDim) / float64(pm.MaxIndex))
	if bucketNum >= pm.ParallelDegree {
		bucketNum = pm.ParallelDegree - 1
	}
	for !(pm.Partitions[bucketNum][0] <= kDim && pm.Partitions[bucketNum][1] > kDim) {
		if pm.Partitions[bucketNum][0] > kDim {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetLocalK(baseK int) (k, Kmax, bn int) {
	var (
		kmin, kmax int
	)
	bn, kmin, kmax = pm.GetBucket(baseK)
	Kmax = kmax - kmin
	k = baseK - kmin
	return
}

func (pm *PartitionMap) GetGlobalK(kLocal, bn int) (kGlobal int) {
	if bn == -1 {
		kGlobal = kLocal
		return
	}
	kGlobal = pm.Partitions[bn][0] + kLocal
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
