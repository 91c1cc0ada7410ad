package pubsub

import (
	"context"
	"strings"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vaporhaus/storefront-backend/pkg/config"
)

func TestResourceName(t *testing.T) {
	cases := []struct {
		kind, name, want string
	}{
		{"topics", "storefront-domain-events", "projects/p1/topics/storefront-domain-events"},
		{"subscriptions", " worker ", "projects/p1/subscriptions/worker"},
		{"topics", "projects/other/topics/t", "projects/other/topics/t"},
		{"subscriptions", "projects/other/topics/t", "projects/p1/subscriptions/projects/other/topics/t"},
	}
	for _, tc := range cases {
		if got := resourceName("p1", tc.kind, tc.name); got != tc.want {
			t.Fatalf("resourceName(%q, %q) = %q, want %q", tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("t") != nil || c.DomainSubscription() != nil {
		t.Fatal("expected nil handles from nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func newFakeClient(t *testing.T, subscription string) (*Client, *pubsub.Client) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial fake pubsub: %v", err)
	}
	raw, err := pubsub.NewClient(context.Background(), "p1", option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("pubsub client: %v", err)
	}
	return &Client{
		client:     raw,
		projectID:  "p1",
		cfg:        config.PubSubConfig{DomainTopic: "domain", DomainSubscription: subscription},
		publishers: make(map[string]*pubsub.Publisher),
	}, raw
}

func TestPingReportsMissingSubscription(t *testing.T) {
	c, raw := newFakeClient(t, "storefront-worker")
	defer c.Close()
	ctx := context.Background()

	if err := c.Ping(ctx); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing subscription error, got %v", err)
	}

	if _, err := raw.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: "projects/p1/topics/domain"}); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	if _, err := raw.SubscriptionAdminClient.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:  "projects/p1/subscriptions/storefront-worker",
		Topic: "projects/p1/topics/domain",
	}); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping after create: %v", err)
	}
}

func TestPublisherIsSharedPerTopic(t *testing.T) {
	c, _ := newFakeClient(t, "storefront-worker")

	short := c.Publisher("domain")
	full := c.Publisher("projects/p1/topics/domain")
	if short == nil || short != full {
		t.Fatal("expected one shared handle for the topic")
	}
	if c.Publisher(" ") != nil {
		t.Fatal("blank topic must not yield a publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(c.publishers) != 0 {
		t.Fatal("close should drop cached publishers")
	}
}
