package sinks

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

func newPubSubSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("pubsub block is missing")
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, cfg.PubSub.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(cfg.PubSub.Topic)
	release := func() error {
		topic.Stop()
		return client.Close()
	}
	return &sink{
		id:    cfg.ID,
		kind:  KindPubSub,
		send:  pubsubSender(topic),
		close: release,
		log:   orNop(log),
	}, nil
}

// pubsubSender waits for the server to acknowledge each message.
func pubsubSender(topic *pubsub.Topic) sendFunc {
	return func(ctx context.Context, payload []byte, attrs map[string]string) (string, error) {
		id, err := topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs}).Get(ctx)
		if err != nil {
			return "", fmt.Errorf("pubsub publish to %s: %w", topic.ID(), err)
		}
		return id, nil
	}
}
