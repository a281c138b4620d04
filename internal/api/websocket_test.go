package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, url string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketJobProgress(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	conn, _, err := dialWS(t, ts.URL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	waitClients(t, s.Hub(), 1)

	_, out := call(t, ts, http.MethodPost, "/jobs", JobRequest{Rows: jobRows()})
	var created Job
	if err := json.Unmarshal(out.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var progress []int
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg ProgressMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error: %v", err)
		}
		if msg.JobID != created.ID {
			t.Fatalf("JobID = %q, want %q", msg.JobID, created.ID)
		}
		if msg.Type == MessageProgress {
			progress = append(progress, msg.Progress)
			continue
		}
		if msg.Type != MessageComplete {
			t.Fatalf("Type = %q, message %q", msg.Type, msg.Message)
		}
		if msg.Progress != 100 || msg.Data["run_id"] == nil {
			t.Errorf("complete message = %+v", msg)
		}
		break
	}

	if len(progress) != 2 || progress[0] != 50 || progress[1] != 100 {
		t.Errorf("progress = %v, want [50 100]", progress)
	}
}

func TestWebSocketOrigin(t *testing.T) {
	_, ts := newTestServer(t, Config{AllowedOrigins: []string{"https://ok.example"}})

	header := http.Header{"Origin": {"https://evil.example"}}
	if _, resp, err := dialWS(t, ts.URL, header); err == nil {
		t.Fatal("Dial() from a foreign origin succeeded")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	conn, _, err := dialWS(t, ts.URL, http.Header{"Origin": {"https://ok.example"}})
	if err != nil {
		t.Fatalf("Dial() from an allowed origin: %v", err)
	}
	conn.Close()
}

func TestWebSocketAPIKeyQuery(t *testing.T) {
	key := strings.Repeat("k", 20)
	_, ts := newTestServer(t, Config{Auth: AuthConfig{Enabled: true, APIKey: key}})

	if _, _, err := dialWS(t, ts.URL, nil); err == nil {
		t.Fatal("Dial() without a key succeeded")
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?api_key=" + key
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() with key: %v", err)
	}
	conn.Close()
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.Broadcast(ProgressMessage{Type: MessageProgress, JobID: "j"})
	}
	if len(h.broadcast) != cap(h.broadcast) {
		t.Errorf("queued %d, want %d", len(h.broadcast), cap(h.broadcast))
	}
}
