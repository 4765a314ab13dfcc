package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

type mockFeed struct {
	mu     sync.Mutex
	builds []models.Build
	err    error
	lastN  int
}

func (m *mockFeed) RecentPublicBuilds(ctx context.Context, n int) ([]models.Build, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastN = n
	return m.builds, m.err
}

func sampleBuild(id string) models.Build {
	return models.Build{
		ID:     id,
		Name:   "Build " + id,
		Author: &models.Author{Username: "ace"},
		Configuration: models.ConfigurationPayload{
			Platform: &models.PlatformConfiguration{FirearmType: models.Rifle, SubType: models.AR15},
			Selection: models.Selection{
				models.CategoryBarrel: {ID: "faxon-16", Price: 16900},
				models.CategoryOptic:  models.SentinelPart(),
			},
			Total: 16900,
		},
		IsPublic: true,
	}
}

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewFeedItem(t *testing.T) {
	item := NewFeedItem(sampleBuild("b1"))
	if item.PartCount != 1 {
		t.Errorf("sentinel parts should not be counted, got %d", item.PartCount)
	}
	if item.Total != 16900 || item.Author.Username != "ace" {
		t.Errorf("unexpected item %+v", item)
	}

	data, _ := json.Marshal(item)
	if !strings.Contains(string(data), `"total":169.00`) {
		t.Errorf("expected dollar total in JSON, got %s", data)
	}
}

func TestServeWs_SendsSnapshotOnConnect(t *testing.T) {
	feed := &mockFeed{builds: []models.Build{sampleBuild("b2"), sampleBuild("b1")}}
	hub := New(logger.New(), feed)
	hub.Start()

	ws := dial(t, startServer(t, hub))
	msg := readMessage(t, ws)

	if msg.Type != TypeFeedSnapshot {
		t.Fatalf("expected %s, got %s", TypeFeedSnapshot, msg.Type)
	}
	items, ok := msg.Payload.([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 feed items, got %#v", msg.Payload)
	}
	first := items[0].(map[string]interface{})
	if first["id"] != "b2" {
		t.Errorf("expected newest build first, got %v", first["id"])
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()
	if feed.lastN != SnapshotSize {
		t.Errorf("expected snapshot of %d, requested %d", SnapshotSize, feed.lastN)
	}
}

func TestServeWs_SnapshotErrorIsSkipped(t *testing.T) {
	hub := New(logger.New(), &mockFeed{err: errors.New("db down")})
	hub.Start()

	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	hub.BroadcastBuildRemoved("gone")
	msg := readMessage(t, ws)
	if msg.Type != TypeBuildRemoved {
		t.Errorf("expected %s first when the snapshot fails, got %s", TypeBuildRemoved, msg.Type)
	}
}

func TestHub_BroadcastBuildPublished(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()
	url := startServer(t, hub)

	ws1 := dial(t, url)
	ws2 := dial(t, url)
	waitForClients(t, hub, 2)

	hub.BroadcastBuildPublished(sampleBuild("b9"))

	for _, ws := range []*websocket.Conn{ws1, ws2} {
		msg := readMessage(t, ws)
		if msg.Type != TypeBuildPublished {
			t.Errorf("expected %s, got %s", TypeBuildPublished, msg.Type)
			continue
		}
		payload := msg.Payload.(map[string]interface{})
		if payload["id"] != "b9" || payload["name"] != "Build b9" {
			t.Errorf("unexpected payload %v", payload)
		}
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()

	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	ws.Close()
	waitForClients(t, hub, 0)
}

func TestServeWs_IgnoresClientMessages(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()

	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	if err := ws.WriteJSON(models.WSMessage{Type: "hello"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ws.WriteMessage(websocket.TextMessage, []byte("not json"))

	hub.BroadcastBuildRemoved("x")
	if msg := readMessage(t, ws); msg.Type != TypeBuildRemoved {
		t.Errorf("connection should stay usable, got %s", msg.Type)
	}
}

func TestServeWs_UpgradeError(t *testing.T) {
	hub := New(logger.New(), nil)
	rr := httptest.NewRecorder()
	hub.ServeWs(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-websocket request, got %d", rr.Code)
	}
}

func TestStartPresence(t *testing.T) {
	hub := New(logger.New(), nil)
	hub.Start()

	ws := dial(t, startServer(t, hub))
	waitForClients(t, hub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.StartPresence(ctx, 20*time.Millisecond)
		close(done)
	}()

	msg := readMessage(t, ws)
	if msg.Type != TypePresence {
		t.Fatalf("expected %s, got %s", TypePresence, msg.Type)
	}
	if viewers := msg.Payload.(map[string]interface{})["viewers"]; viewers != float64(1) {
		t.Errorf("expected 1 viewer, got %v", viewers)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("StartPresence did not stop after cancel")
	}
}
