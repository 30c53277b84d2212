package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type gcpPubSubPublisher struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

func newGCPPubSubPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.GCPPubSub == nil {
		return nil, fmt.Errorf("publisher %q missing gcp_pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.GCPPubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPPubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.GCPPubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubPublisher{
		id:     cfg.ID,
		client: client,
		topic:  client.Topic(cfg.GCPPubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (g *gcpPubSubPublisher) ID() string   { return g.id }
func (g *gcpPubSubPublisher) Type() string { return TypeGCPPubSub }

// Publish blocks until the server acknowledges the message.
func (g *gcpPubSubPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := evt.payload()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	res := g.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: evt.attributes(),
	})
	msgID, err := res.Get(ctx)
	if err != nil {
		g.log.ErrorObj("gcp pubsub publisher send failed", "publisher_gcp_error", map[string]any{
			"publisher_id": g.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	g.log.DebugObj("gcp pubsub publisher delivered event", "publisher_gcp_delivery", map[string]any{
		"publisher_id": g.id,
		"message_id":   msgID,
	})
	return nil
}

// Close flushes pending messages and closes the client.
func (g *gcpPubSubPublisher) Close() error {
	g.topic.Stop()
	return g.client.Close()
}
