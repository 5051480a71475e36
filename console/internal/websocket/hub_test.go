package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/render"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readBoard(t *testing.T, conn *websocket.Conn) BoardMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg BoardMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsBoard(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	snap := render.NewBoard().Snapshot()
	snap.PatientID = "p002"
	snap.Status = "Loading…"
	hub.BroadcastBoard(snap)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readBoard(t, conn)
		require.Equal(t, "board", msg.Type)
		require.Equal(t, "p002", msg.Board.PatientID)
		require.Equal(t, "Loading…", msg.Board.Status)
	}
}

func TestHub_NewClientGetsLastSnapshot(t *testing.T) {
	hub, url := startHub(t)

	snap := render.NewBoard().Snapshot()
	snap.PatientID = "p003"
	hub.BroadcastBoard(snap)

	conn := dial(t, url)
	require.Equal(t, "p003", readBoard(t, conn).Board.PatientID)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
