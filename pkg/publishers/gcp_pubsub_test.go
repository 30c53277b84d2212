package publishers

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/olerom/formula/internal/domain"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "records"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newGCPPubSubPublisher(ctx, PublisherConfig{
		ID:        "gcp",
		Type:      TypeGCPPubSub,
		GCPPubSub: &GCPPubSubConfig{ProjectID: "test-project", Topic: "records"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	defer pub.(*gcpPubSubPublisher).Close()

	evt := NewEvent("constructors", domain.Record{Resource: "constructors", ID: "ferrari"})
	if err := pub.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on the server, got %d", len(msgs))
	}
	if msgs[0].Attributes["resource"] != "constructors" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
}
