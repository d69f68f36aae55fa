package websocket

import (
	"context"
	"testing"
	"time"

	"agentic-reasoning-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRoutesBySession(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := &Client{Hub: hub, SessionID: "a", Send: make(chan []byte, 1)}
	b := &Client{Hub: hub, SessionID: "b", Send: make(chan []byte, 1)}
	hub.register <- a
	hub.register <- b

	require.Eventually(t, func() bool { return hub.Watchers("a") == 1 && hub.Watchers("b") == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, hub.Send("a", []byte("hello")))
	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Empty(t, b.Send)
	assert.Zero(t, hub.Send("nobody", []byte("x")))
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &Client{Hub: hub, SessionID: "s", Send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.Watchers("s") == 1 }, time.Second, 5*time.Millisecond)

	assert.Zero(t, hub.Send("s", []byte("x")))
	require.Eventually(t, func() bool { return hub.Watchers("s") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubStopsBlockingAfterShutdown(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	watcher := &Client{Hub: hub, SessionID: "s", Send: make(chan []byte)}
	hub.Register(watcher)
	require.Eventually(t, func() bool { return hub.Watchers("s") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, open := <-watcher.Send
	assert.False(t, open)

	returned := make(chan struct{})
	late := &Client{Hub: hub, SessionID: "late", Send: make(chan []byte, 1)}
	go func() {
		hub.Register(late)
		hub.Unregister(watcher)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked on a stopped hub")
	}
	_, open = <-late.Send
	assert.False(t, open)
	assert.Zero(t, hub.Send("s", []byte("x")))
}
