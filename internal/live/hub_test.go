package live

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/claude/liftlog/internal/models"
)

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// TestHubBroadcast verifies connected clients receive start and update frames.
func TestHubBroadcast(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(hub)
	defer ts.Close()

	conn := dialHub(t, ts)

	// Wait for registration before broadcasting.
	waitForClients(t, hub, 1)

	hub.Start("Push Day")
	f := readFrame(t, conn)
	if f.Type != "start" || f.Label != "Push Day" {
		t.Errorf("frame = %+v, want start/Push Day", f)
	}

	hub.Update(models.LiveStatus{ExerciseName: "Bench Press", CompletedSets: 2})
	f = readFrame(t, conn)
	if f.Type != "update" {
		t.Fatalf("type = %q, want update", f.Type)
	}
	if f.Status == nil || f.Status.CompletedSets != 2 {
		t.Errorf("status = %+v, want completed_sets 2", f.Status)
	}
}

// TestHubReplaysLastFrame verifies a client connecting mid-session receives
// the most recent frame immediately.
func TestHubReplaysLastFrame(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(hub)
	defer ts.Close()

	hub.Start("Leg Day")
	hub.Update(models.LiveStatus{ExerciseName: "Squat", CompletedSets: 3})

	conn := dialHub(t, ts)
	f := readFrame(t, conn)
	if f.Type != "update" || f.Status == nil || f.Status.ExerciseName != "Squat" {
		t.Errorf("replayed frame = %+v, want latest update", f)
	}
}

// TestHubEndClearsReplay verifies no frame is replayed after the session ends.
func TestHubEndClearsReplay(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(hub)
	defer ts.Close()

	hub.Start("Workout")
	hub.End()

	conn := dialHub(t, ts)
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var f Frame
	if err := conn.ReadJSON(&f); err == nil {
		t.Errorf("unexpected replayed frame after end: %+v", f)
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
