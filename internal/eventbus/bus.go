// Package eventbus implements a partitioned in-memory event bus for pipeline
// lifecycle notifications. Events with the same key are handled in order by
// routing them to a fixed partition via consistent hashing.
package eventbus

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/serialx/hashring"

	"stellab.xyz/argus/internal/log"
)

// EventBus routes events to per-topic subscribers.
type EventBus interface {
	Publish(event *Event) error
	Subscribe(topic string, handler Handler) error
	Close() error
	GetStats() *Stats
}

// Stats is a snapshot of bus counters.
type Stats struct {
	PublishedCount int64
	ProcessedCount int64
	PartitionCount int
	QueuedCount    []int
}

// InMemoryEventBus partitions events by key over worker goroutines.
type InMemoryEventBus struct {
	partitions     []*partition
	partitionCount int
	queueSize      int
	subscribers    map[string][]Handler
	mu             sync.RWMutex
	closed         int32
	hashRing       *hashring.HashRing
	partitionNodes []string

	publishedCount int64
	processedCount int64
}

// NewInMemoryEventBus creates and starts a bus with the given partition count
// and per-partition queue size.
func NewInMemoryEventBus(partitionCount, queueSize int) EventBus {
	if partitionCount <= 0 {
		partitionCount = 1
	}
	bus := &InMemoryEventBus{
		partitionCount: partitionCount,
		queueSize:      queueSize,
		subscribers:    make(map[string][]Handler),
		partitions:     make([]*partition, partitionCount),
		partitionNodes: make([]string, partitionCount),
	}

	for i := 0; i < partitionCount; i++ {
		bus.partitionNodes[i] = "partition-" + strconv.Itoa(i)
	}
	bus.hashRing = hashring.New(bus.partitionNodes)

	for i := 0; i < partitionCount; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		bus.partitions[i] = &partition{
			id:      i,
			queue:   make(chan *Event, queueSize),
			ctx:     ctx,
			cancel:  cancel,
			handler: bus.dispatch,
		}
		go bus.runPartition(bus.partitions[i])
	}

	return bus
}

// Publish enqueues an event on the partition its key hashes to. A full
// partition queue fails the publish rather than blocking the pipeline.
func (b *InMemoryEventBus) Publish(event *Event) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return fmt.Errorf("event bus is closed")
	}

	partitionID := b.getPartitionID(event.Key)
	p := b.partitions[partitionID]

	select {
	case p.queue <- event:
		atomic.AddInt64(&b.publishedCount, 1)
		return nil
	default:
		return fmt.Errorf("partition %d queue is full", partitionID)
	}
}

// Subscribe adds a handler for a topic. A topic may have several handlers;
// they run sequentially within a partition.
func (b *InMemoryEventBus) Subscribe(topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if atomic.LoadInt32(&b.closed) == 1 {
		return fmt.Errorf("event bus is closed")
	}

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	log.GetLogger().Debugf("Subscribed to topic: %s", topic)
	return nil
}

// Close stops all partitions. Queued events are dropped.
func (b *InMemoryEventBus) Close() error {
	if !atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		return nil
	}

	for _, p := range b.partitions {
		p.cancel()
		close(p.queue)
	}

	log.GetLogger().Debug("Event bus closed")
	return nil
}

// GetStats returns a snapshot of bus counters.
func (b *InMemoryEventBus) GetStats() *Stats {
	stats := &Stats{
		PublishedCount: atomic.LoadInt64(&b.publishedCount),
		ProcessedCount: atomic.LoadInt64(&b.processedCount),
		PartitionCount: b.partitionCount,
		QueuedCount:    make([]int, b.partitionCount),
	}
	for i, p := range b.partitions {
		stats.QueuedCount[i] = len(p.queue)
	}
	return stats
}

func (b *InMemoryEventBus) getPartitionID(key string) int {
	node, ok := b.hashRing.GetNode(key)
	if !ok {
		return 0
	}
	for i, partitionNode := range b.partitionNodes {
		if partitionNode == node {
			return i
		}
	}
	return 0
}

func (b *InMemoryEventBus) dispatch(event *Event) error {
	b.mu.RLock()
	handlers := b.subscribers[event.Topic]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}
	for _, h := range handlers {
		if err := h(event); err != nil {
			return err
		}
	}
	return nil
}

func (b *InMemoryEventBus) runPartition(p *partition) {
	logger := log.GetLogger()
	for {
		select {
		case <-p.ctx.Done():
			return
		case event, ok := <-p.queue:
			if !ok {
				return
			}
			if err := p.handler(event); err != nil {
				logger.WithError(err).Errorf("Failed to handle event in partition %d", p.id)
			} else {
				atomic.AddInt64(&b.processedCount, 1)
			}
		}
	}
}
