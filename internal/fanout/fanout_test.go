package fanout

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/transport"
)

func newTestFanout(t *testing.T) (*Fanout, *transport.Hub) {
	t.Helper()
	hub := transport.NewHub(16)
	t.Cleanup(hub.Close)
	return New(hub, []string{"MSFT", "AAPL"}, zap.NewNop()), hub
}

func TestWatch(t *testing.T) {
	f, _ := newTestFanout(t)

	already, err := f.Watch("alice", "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if already {
		t.Error("expected first watch to report a new subscription")
	}
	if !f.Watched("alice", "MSFT") {
		t.Error("expected alice to watch MSFT")
	}

	already, err = f.Watch("alice", "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !already {
		t.Error("expected repeated watch to report an existing subscription")
	}
}

func TestWatch_UnknownStock(t *testing.T) {
	f, _ := newTestFanout(t)

	if _, err := f.Watch("alice", "NVDA"); err != domain.ErrUnknownStock {
		t.Fatalf("got error %v, want ErrUnknownStock", err)
	}
	if f.Watched("alice", "NVDA") {
		t.Error("expected no subscription after refusal")
	}
}

func TestUnwatch(t *testing.T) {
	f, _ := newTestFanout(t)

	if _, err := f.Watch("alice", "MSFT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	was, err := f.Unwatch("alice", "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !was {
		t.Error("expected unwatch to report the removed subscription")
	}
	if f.Watched("alice", "MSFT") {
		t.Error("expected alice to no longer watch MSFT")
	}

	was, err = f.Unwatch("alice", "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if was {
		t.Error("expected repeated unwatch to report no subscription")
	}
}

func TestUnwatch_UnknownStock(t *testing.T) {
	f, _ := newTestFanout(t)

	if _, err := f.Unwatch("alice", "NVDA"); err != domain.ErrUnknownStock {
		t.Fatalf("got error %v, want ErrUnknownStock", err)
	}
}

func TestPublish_OnlyToMatchingTopic(t *testing.T) {
	f, hub := newTestFanout(t)

	msft := hub.Topic(protocol.TopicName("MSFT")).Subscribe("alice")
	aapl := hub.Topic(protocol.TopicName("AAPL")).Subscribe("alice")

	f.Publish("MSFT", protocol.StockEvent{
		Event:  protocol.EventPriceChanged,
		Symbol: "MSFT",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan protocol.Envelope, 1)
	go msft.Consume(ctx, func(e protocol.Envelope) { got <- e })
	go aapl.Consume(ctx, func(e protocol.Envelope) {
		t.Error("event delivered to the wrong symbol's topic")
	})

	select {
	case e := <-got:
		ev, ok := e.Msg.(protocol.StockEvent)
		if !ok {
			t.Fatalf("got message %T, want StockEvent", e.Msg)
		}
		if ev.Event != protocol.EventPriceChanged || ev.Symbol != "MSFT" {
			t.Errorf("got event %+v, want PRICE_CHANGED MSFT", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	// Give a misdelivery a moment to surface before the consumers stop.
	time.Sleep(20 * time.Millisecond)
}

func TestDropClient(t *testing.T) {
	f, hub := newTestFanout(t)

	if _, err := f.Watch("alice", "MSFT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Watch("alice", "AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hub.Topic(protocol.TopicName("MSFT")).Subscribe("alice")
	hub.Topic(protocol.TopicName("AAPL")).Subscribe("alice")

	f.DropClient("alice")

	if f.Watched("alice", "MSFT") || f.Watched("alice", "AAPL") {
		t.Error("expected all subscriptions removed")
	}
	if n := hub.Topic(protocol.TopicName("MSFT")).SubscriberCount(); n != 0 {
		t.Errorf("got %d MSFT subscribers, want 0", n)
	}
	if n := hub.Topic(protocol.TopicName("AAPL")).SubscriberCount(); n != 0 {
		t.Errorf("got %d AAPL subscribers, want 0", n)
	}
}
