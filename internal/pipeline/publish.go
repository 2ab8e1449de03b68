package pipeline

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// TopicPublisher adapts a Pub/Sub topic to the Publisher interface.
type TopicPublisher struct {
	topic *pubsub.Topic
}

// NewTopicPublisher wraps the topic used for audio-extraction fan-out.
func NewTopicPublisher(topic *pubsub.Topic) *TopicPublisher {
	return &TopicPublisher{topic: topic}
}

// Publish sends one message and waits for the server's acknowledgment, so
// a publish failure surfaces in the invocation that caused it.
func (tp *TopicPublisher) Publish(ctx context.Context, data []byte) error {
	res := tp.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", tp.topic.String(), err)
	}
	return nil
}
