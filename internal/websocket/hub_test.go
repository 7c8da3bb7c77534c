package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

func register(t *testing.T, h *Hub, client *Client) {
	t.Helper()
	before := h.GetConnectionCount()
	h.register <- client
	require.Eventually(t, func() bool {
		return h.GetConnectionCount() > before
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcastToOptimizationDelivers(t *testing.T) {
	h := testHub()
	go h.Run()

	client := &Client{OptimizationID: "run-1", Send: make(chan []byte, 4), Hub: h}
	other := &Client{OptimizationID: "run-2", Send: make(chan []byte, 4), Hub: h}
	register(t, h, client)
	register(t, h, other)

	h.BroadcastToOptimization("run-1", map[string]string{"stage": "solving"})

	select {
	case data := <-client.Send:
		var msg map[string]string
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "solving", msg["stage"])
	case <-time.After(time.Second):
		t.Fatal("subscribed client received no message")
	}
	assert.Empty(t, other.Send)
}

func TestBroadcastToAllEvictsSlowClientEverywhere(t *testing.T) {
	h := testHub()
	go h.Run()

	// Unbuffered send channel with no reader: the client cannot keep up.
	slow := &Client{OptimizationID: "run-1", Send: make(chan []byte), Hub: h}
	register(t, h, slow)

	h.BroadcastToAll(map[string]string{"event": "shutdown"})
	require.Eventually(t, func() bool {
		return h.GetConnectionCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The eviction must also clear the subscriber index, so routing a
	// progress update afterwards finds nothing instead of a closed channel.
	assert.NotPanics(t, func() {
		h.BroadcastToOptimization("run-1", map[string]string{"stage": "solving"})
	})

	h.mutex.RLock()
	_, subscribed := h.subscribers["run-1"]
	h.mutex.RUnlock()
	assert.False(t, subscribed)
}

func TestUnregisterRemovesSubscriber(t *testing.T) {
	h := testHub()
	go h.Run()

	client := &Client{OptimizationID: "run-1", Send: make(chan []byte, 4), Hub: h}
	register(t, h, client)

	h.unregister <- client
	require.Eventually(t, func() bool {
		return h.GetConnectionCount() == 0
	}, time.Second, 5*time.Millisecond)

	h.BroadcastToOptimization("run-1", map[string]string{"stage": "solving"})
	_, open := <-client.Send
	assert.False(t, open)
}
