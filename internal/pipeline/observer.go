package pipeline

import (
	"stellab.xyz/argus/internal/eventbus"
	"stellab.xyz/argus/internal/log"
)

// Topics lists every lifecycle topic a pipeline publishes during a run.
func Topics() []string {
	return []string{
		eventbus.TopicRunStart,
		eventbus.TopicBatchExtracted,
		eventbus.TopicBatchTransformed,
		eventbus.TopicBatchLoaded,
		eventbus.TopicStageError,
		eventbus.TopicRunComplete,
	}
}

// AttachLogObserver subscribes a debug-level logging handler to every
// lifecycle topic, so a run leaves an event trail without the pipeline
// knowing about its consumers.
func AttachLogObserver(bus eventbus.EventBus) error {
	logger := log.GetLogger()
	handler := func(ev *eventbus.Event) error {
		logger.WithFields(map[string]interface{}{
			"topic":   ev.Topic,
			"run_id":  ev.Key,
			"payload": ev.Payload,
		}).Debug("pipeline event")
		return nil
	}
	for _, topic := range Topics() {
		if err := bus.Subscribe(topic, handler); err != nil {
			return err
		}
	}
	return nil
}
