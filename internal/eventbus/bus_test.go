package eventbus

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(4, 16)
	defer bus.Close()

	var mu sync.Mutex
	var received []*Event
	err := bus.Subscribe(TopicBatchExtracted, func(e *Event) error {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := bus.Publish(&Event{Topic: TopicBatchExtracted, Key: "run-1", Payload: i}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 3
	})

	// Same key lands on the same partition, so order is preserved.
	mu.Lock()
	defer mu.Unlock()
	for i, e := range received {
		if e.Payload != i {
			t.Errorf("event %d payload = %v, want %d", i, e.Payload, i)
		}
	}
}

func TestMultipleSubscribersPerTopic(t *testing.T) {
	bus := NewInMemoryEventBus(2, 16)
	defer bus.Close()

	var mu sync.Mutex
	counts := map[string]int{}
	for _, id := range []string{"a", "b"} {
		id := id
		bus.Subscribe(TopicRunComplete, func(e *Event) error {
			mu.Lock()
			counts[id]++
			mu.Unlock()
			return nil
		})
	}

	bus.Publish(&Event{Topic: TopicRunComplete, Key: "run-1"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return counts["a"] == 1 && counts["b"] == 1
	})
}

func TestUnsubscribedTopicIsDropped(t *testing.T) {
	bus := NewInMemoryEventBus(1, 4)
	defer bus.Close()

	if err := bus.Publish(&Event{Topic: "nobody.listens", Key: "k"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	waitFor(t, func() bool {
		return bus.GetStats().ProcessedCount == 1
	})
}

func TestPublishAfterCloseFails(t *testing.T) {
	bus := NewInMemoryEventBus(1, 4)
	bus.Close()

	if err := bus.Publish(&Event{Topic: TopicRunStart, Key: "k"}); err == nil {
		t.Error("expected error publishing to a closed bus")
	}
	if err := bus.Subscribe(TopicRunStart, func(*Event) error { return nil }); err == nil {
		t.Error("expected error subscribing to a closed bus")
	}
}

func TestStats(t *testing.T) {
	bus := NewInMemoryEventBus(3, 8)
	defer bus.Close()

	bus.Publish(&Event{Topic: "t", Key: "a"})
	bus.Publish(&Event{Topic: "t", Key: "b"})

	stats := bus.GetStats()
	if stats.PublishedCount != 2 {
		t.Errorf("PublishedCount = %d, want 2", stats.PublishedCount)
	}
	if stats.PartitionCount != 3 {
		t.Errorf("PartitionCount = %d, want 3", stats.PartitionCount)
	}
}
