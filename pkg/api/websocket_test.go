package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/r3d91ll/relaxplot/pkg/config"
)

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.EnableLogging = false
	s := NewServer(Options{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "relaxplot.yaml"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	go s.Hub().Run()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Hub().Stop()
	})
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsEnvelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

// subscribe sends a subscribe followed by a ping; the pong confirms the
// subscription was processed.
func subscribe(t *testing.T, conn *websocket.Conn, channels ...string) []wsEnvelope {
	t.Helper()
	if err := conn.WriteJSON(WSMessage{Type: EventTypeSubscribe, Channels: channels}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(WSMessage{Type: EventTypePing}); err != nil {
		t.Fatal(err)
	}
	var before []wsEnvelope
	for {
		msg := readWS(t, conn)
		if msg.Type == EventTypePong {
			return before
		}
		before = append(before, msg)
	}
}

func TestWebSocket_PingPong(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)
	if err := conn.WriteJSON(WSMessage{Type: EventTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readWS(t, conn); msg.Type != EventTypePong {
		t.Errorf("got %q, want pong", msg.Type)
	}
}

func TestWebSocket_UnknownChannel(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	before := subscribe(t, conn, "sessions")
	if len(before) != 1 || before[0].Type != EventTypeError {
		t.Fatalf("expected one error message, got %+v", before)
	}
	var data map[string]string
	json.Unmarshal(before[0].Data, &data)
	if data["code"] != "unknown_channel" {
		t.Errorf("error code = %q", data["code"])
	}
}

func TestWebSocket_ExportEvents(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)
	if before := subscribe(t, conn, ChannelExports); len(before) != 0 {
		t.Fatalf("unexpected messages: %+v", before)
	}
	if s.Hub().ClientCount() != 1 {
		t.Errorf("client count = %d, want 1", s.Hub().ClientCount())
	}

	resp, err := http.Post(ts.URL+"/api/export", "application/json",
		strings.NewReader(exportBody(`{"exportType": "stat"}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	requestID := resp.Header.Get("X-Request-ID")

	started := readWS(t, conn)
	if started.Type != EventTypeExportStarted {
		t.Fatalf("first event = %q", started.Type)
	}
	var se ExportStartedEvent
	json.Unmarshal(started.Data, &se)
	if se.RequestID != requestID || se.Backend != "stat" || se.Residues != 2 || se.BarGroups != 1 {
		t.Errorf("started event = %+v", se)
	}

	completed := readWS(t, conn)
	if completed.Type != EventTypeExportCompleted {
		t.Fatalf("second event = %q", completed.Type)
	}
	var ce ExportCompletedEvent
	json.Unmarshal(completed.Data, &ce)
	if ce.RequestID != requestID || ce.Hash == "" || ce.Lines == 0 {
		t.Errorf("completed event = %+v", ce)
	}
}

func TestWebSocket_ExportFailedEvent(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)
	subscribe(t, conn, ChannelExports)

	resp, err := http.Post(ts.URL+"/api/export", "application/json",
		strings.NewReader(`{"config": {"exportType": "gnuplot"}}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	msg := readWS(t, conn)
	if msg.Type != EventTypeExportFailed {
		t.Fatalf("event = %q, want %q", msg.Type, EventTypeExportFailed)
	}
}

func TestWebSocket_Unsubscribed(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)
	subscribe(t, conn, ChannelExports)
	if err := conn.WriteJSON(WSMessage{Type: EventTypeUnsubscribe, Channels: []string{ChannelExports}}); err != nil {
		t.Fatal(err)
	}
	subscribe(t, conn) // empty subscribe answers with an error, then pong

	resp, err := http.Post(ts.URL+"/api/export", "application/json",
		strings.NewReader(exportBody(`{"exportType": "general"}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if err := conn.WriteJSON(WSMessage{Type: EventTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readWS(t, conn); msg.Type != EventTypePong {
		t.Errorf("unsubscribed client received %q", msg.Type)
	}
}

func TestHubEventBroadcaster_NoClients(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	b := NewHubEventBroadcaster(hub)
	if err := b.ExportStarted(&ExportStartedEvent{RequestID: "r1"}); err != nil {
		t.Errorf("broadcast without clients: %v", err)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.EnableLogging = false
	s := NewServer(Options{Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if !s.IsRunning() || s.ListenAddr() == "" {
		t.Fatal("server should be running with a bound address")
	}
	if err := s.Start(); err == nil {
		t.Error("second Start should fail")
	}

	resp, err := http.Get("http://" + s.ListenAddr() + "/api/backends")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.IsRunning() {
		t.Error("server still running after Shutdown")
	}
}
