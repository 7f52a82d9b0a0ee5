package transport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/stockbroker/internal/protocol"
)

func env(clientID string) protocol.Envelope {
	return protocol.Envelope{ClientID: clientID, Msg: protocol.RequestList{}}
}

func TestQueueSendConsumeOrder(t *testing.T) {
	q := NewQueue("alice.to-broker", 16)
	defer q.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Send(env(fmt.Sprintf("c%d", i))))
	}

	ctx, cancel := context.WithCancel(context.Background())
	got := make([]string, 0, 5)
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, func(e protocol.Envelope) {
			got = append(got, e.ClientID)
			if len(got) == 5 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not finish")
	}
	assert.Equal(t, []string{"c0", "c1", "c2", "c3", "c4"}, got)
}

func TestQueueSendFull(t *testing.T) {
	q := NewQueue("alice.to-broker", 2)
	defer q.Close()

	require.NoError(t, q.Send(env("a")))
	require.NoError(t, q.Send(env("b")))
	assert.ErrorIs(t, q.Send(env("c")), ErrQueueFull)
}

func TestQueueSendAfterClose(t *testing.T) {
	q := NewQueue("alice.to-broker", 2)
	q.Close()

	assert.ErrorIs(t, q.Send(env("a")), ErrQueueClosed)
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := NewQueue("alice.to-broker", 2)
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Send(env("a")), ErrQueueClosed)
}

func TestQueueConsumeStopsOnClose(t *testing.T) {
	q := NewQueue("alice.to-broker", 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(context.Background(), func(protocol.Envelope) {})
	}()

	q.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after close")
	}
}

func TestQueueConcurrentSendClose(t *testing.T) {
	// Sends racing a close must never panic; they return either nil or an
	// error, both acceptable during teardown.
	for i := 0; i < 50; i++ {
		q := NewQueue("alice.to-broker", 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 10; j++ {
				_ = q.Send(env("a"))
			}
		}()
		q.Close()
		<-done
	}
}
