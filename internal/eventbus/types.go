package eventbus

import (
	"context"
)

// Pipeline lifecycle topics. Key is the run ID so all events of one run land
// on the same partition and stay ordered.
const (
	TopicRunStart         = "run.start"
	TopicBatchExtracted   = "batch.extracted"
	TopicBatchTransformed = "batch.transformed"
	TopicBatchLoaded      = "batch.loaded"
	TopicStageError       = "stage.error"
	TopicRunComplete      = "run.complete"
)

// Event is one bus message.
type Event struct {
	Topic   string      `json:"topic"`
	Key     string      `json:"key"`
	Payload interface{} `json:"payload"`
}

// Handler consumes events for a topic.
type Handler func(event *Event) error

type partition struct {
	id      int
	queue   chan *Event
	ctx     context.Context
	cancel  context.CancelFunc
	handler Handler
}
