package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

// Broadcasts racing the ping ticker must all come through the write pump;
// every frame the client reads has to be an intact event envelope.
func TestHubBroadcastDuringPings(t *testing.T) {
	hub := NewHub()
	hub.pingEvery = 5 * time.Millisecond

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	const writers = 4
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				hub.Broadcast("import_progress", map[string]int{"imported": i})
				time.Sleep(time.Millisecond)
			}
		}()
	}

	received := 0
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && received < writers*perWriter {
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var envelope struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			t.Fatalf("corrupt frame %q: %v", msg, err)
		}
		if envelope.Event != "import_progress" {
			t.Fatalf("unexpected event %q", envelope.Event)
		}
		received++
	}
	wg.Wait()

	if received == 0 {
		t.Fatal("no frames received")
	}
}

func TestHubDropsClosedClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := len(hub.conns)
		hub.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("closed client still registered")
}
