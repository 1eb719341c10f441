package pipeline

import (
	"testing"
	"time"

	"stellab.xyz/argus/internal/eventbus"
)

func TestLogObserverReceivesLifecycleEvents(t *testing.T) {
	bus := eventbus.NewInMemoryEventBus(2, 16)
	defer bus.Close()

	if err := AttachLogObserver(bus); err != nil {
		t.Fatalf("AttachLogObserver failed: %v", err)
	}

	for _, topic := range Topics() {
		if err := bus.Publish(&eventbus.Event{Topic: topic, Key: "run-1"}); err != nil {
			t.Fatalf("Publish(%s) failed: %v", topic, err)
		}
	}

	want := int64(len(Topics()))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if bus.GetStats().ProcessedCount == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("processed %d of %d events", bus.GetStats().ProcessedCount, want)
}
