package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"usermanagement_server/internal/service/notify"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, m *ConnManager) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		_ = m.Serve(w, r, id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, id int64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + strconv.FormatInt(id, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSendLiveDeliversToConnectedUser(t *testing.T) {
	m := NewConnManager()
	srv := newServer(t, m)
	conn := dial(t, srv, 5)
	require.Eventually(t, func() bool { return m.Connected(5) }, time.Second, 5*time.Millisecond)

	assert.False(t, m.SendLive(6, notify.NewMessage(notify.FriendRemoved{Name: "bob"})))
	require.True(t, m.SendLive(5, notify.NewMessage(notify.RequestReceived{From: "alice"})))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got notify.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, notify.RequestReceived{From: "alice"}, got.Payload)
}

func TestClosedConnectionIsUnregistered(t *testing.T) {
	m := NewConnManager()
	srv := newServer(t, m)
	conn := dial(t, srv, 9)
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, m.SendLive(9, notify.NewMessage(notify.FriendRemoved{Name: "x"})))
}

func TestNewConnectionReplacesOld(t *testing.T) {
	m := NewConnManager()
	srv := newServer(t, m)
	first := dial(t, srv, 3)
	require.Eventually(t, func() bool { return m.Connected(3) }, time.Second, 5*time.Millisecond)
	second := dial(t, srv, 3)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return m.SendLive(3, notify.NewMessage(notify.FriendRemoved{Name: "carol"}))
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = second.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	m.CloseAll()
	assert.Equal(t, 0, m.Count())
}
