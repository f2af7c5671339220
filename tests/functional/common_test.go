package functional_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const eventTimeout = 5 * time.Second

type ServerEvent struct {
	Type      string                 `json:"type"`
	EventID   string                 `json:"event_id"`
	SessionID string                 `json:"session_id"`
	Seq       uint64                 `json:"seq"`
	Session   map[string]interface{} `json:"session"`
	Item      map[string]interface{} `json:"item"`
	Error     struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		EventID string `json:"event_id"`
	} `json:"error"`
}

func ConnectRealtime(t *testing.T, clientID, query string) *gorilla.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("X-Client-Id", clientID)
	url := RealtimeUrl
	if query != "" {
		url += "?" + query
	}
	conn, resp, err := gorilla.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func SendEvent(t *testing.T, conn *gorilla.Conn, event map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, raw))
}

func ReadEvent(t *testing.T, conn *gorilla.Conn) ServerEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(eventTimeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev ServerEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	t.Logf("⬅ %s", ev.Type)
	return ev
}

// WaitForEvent reads until an event of the given type arrives.
func WaitForEvent(t *testing.T, conn *gorilla.Conn, eventType string) ServerEvent {
	t.Helper()
	deadline := time.Now().Add(eventTimeout)
	for time.Now().Before(deadline) {
		ev := ReadEvent(t, conn)
		if ev.Type == eventType {
			return ev
		}
	}
	t.Fatalf("❌ event %s not received", eventType)
	return ServerEvent{}
}

func sendRequest(t *testing.T, method, url string) (int, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &out), fmt.Sprintf("response body: %s", body))
	}
	return resp.StatusCode, out
}
