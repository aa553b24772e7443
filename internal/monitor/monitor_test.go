package monitor_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/lightctl/internal/logger"
	"codeberg.org/mutker/lightctl/internal/monitor"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesSubscriber(t *testing.T) {
	s := monitor.NewServer("127.0.0.1:0", logger.Default())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens just after the handshake; keep broadcasting
	// until the subscriber sees a frame.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				s.Broadcast(map[string]string{"quality": "ultra"})
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ultra", got["quality"])
}

func TestBroadcastWithoutSubscribersIsHarmless(t *testing.T) {
	s := monitor.NewServer("127.0.0.1:0", logger.Default())

	s.Broadcast(map[string]int{"entities": 5})
	assert.NoError(t, s.Close())
}

func TestUnmarshalableSnapshotIsDropped(t *testing.T) {
	s := monitor.NewServer("127.0.0.1:0", logger.Default())
	defer s.Close()

	// Channels cannot be marshaled; the broadcast is skipped, not fatal.
	s.Broadcast(map[string]any{"bad": make(chan int)})
}

func TestCloseDisconnectsSubscribers(t *testing.T) {
	s := monitor.NewServer("127.0.0.1:0", logger.Default())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, s.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
