package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/stockbroker/internal/protocol"
)

func collect(t *testing.T, s *Subscription, n int) []protocol.Envelope {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make([]protocol.Envelope, 0, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Consume(ctx, func(e protocol.Envelope) {
			got = append(got, e)
			if len(got) == n {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("got %d envelopes, want %d", len(got), n)
	}
	return got
}

func TestTopicFanOut(t *testing.T) {
	topic := NewTopic("stock.MSFT", 16)
	defer topic.Close()

	alice := topic.Subscribe("alice")
	bob := topic.Subscribe("bob")

	dropped := topic.Publish(env("tick"))
	require.Zero(t, dropped)

	for _, sub := range []*Subscription{alice, bob} {
		got := collect(t, sub, 1)
		assert.Equal(t, "tick", got[0].ClientID)
	}
}

func TestTopicSubscribeIdempotent(t *testing.T) {
	topic := NewTopic("stock.MSFT", 16)
	defer topic.Close()

	first := topic.Subscribe("alice")
	second := topic.Subscribe("alice")

	assert.Same(t, first, second)
	assert.Equal(t, 1, topic.SubscriberCount())

	// One subscription means one delivery per publish.
	topic.Publish(env("tick"))
	got := collect(t, first, 1)
	assert.Len(t, got, 1)
}

func TestTopicUnsubscribeStopsDelivery(t *testing.T) {
	topic := NewTopic("stock.MSFT", 16)
	defer topic.Close()

	alice := topic.Subscribe("alice")
	bob := topic.Subscribe("bob")
	topic.Unsubscribe("alice")

	// One subscriber left: the closed buffer counts as a drop only if it
	// were still attached, which it is not.
	dropped := topic.Publish(env("tick"))
	assert.Zero(t, dropped)
	assert.Equal(t, 1, topic.SubscriberCount())

	got := collect(t, bob, 1)
	assert.Equal(t, "tick", got[0].ClientID)
	_ = alice
}

func TestTopicPublishCountsDrops(t *testing.T) {
	topic := NewTopic("stock.MSFT", 1)
	defer topic.Close()

	topic.Subscribe("slow")

	require.Zero(t, topic.Publish(env("first")))
	// Buffer of one is now full; the second publish drops for this
	// subscriber without blocking.
	assert.Equal(t, 1, topic.Publish(env("second")))
}

func TestTopicCloseDetachesAll(t *testing.T) {
	topic := NewTopic("stock.MSFT", 4)

	sub := topic.Subscribe("alice")
	topic.Close()

	assert.Zero(t, topic.SubscriberCount())

	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.Consume(context.Background(), func(protocol.Envelope) {})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber consumer did not stop after topic close")
	}
}

func TestSubscriptionCancel(t *testing.T) {
	topic := NewTopic("stock.MSFT", 4)
	defer topic.Close()

	sub := topic.Subscribe("alice")
	sub.Cancel()

	assert.Zero(t, topic.SubscriberCount())
}
