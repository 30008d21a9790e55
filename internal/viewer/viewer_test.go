package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/transcript"
)

func rendered(runID string) models.DocumentRendered {
	return models.DocumentRendered{
		EventType: transcript.EventTypeRendered,
		RunID:     runID,
		Path:      "diarized",
		Markdown:  "# Transcript\n\n**Speaker 1:** Hi\n",
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startHub(t *testing.T, history int) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(history)
	go hub.Run(ctx)
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub, srv := startHub(t, DefaultHistory)
	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	if err := hub.Publish(context.Background(), rendered("run-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.DocumentRendered
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.RunID != "run-1" || got.Markdown != rendered("run-1").Markdown {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestHub_ReplaysRecentToNewClients(t *testing.T) {
	hub, srv := startHub(t, 2)
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := hub.Publish(context.Background(), rendered(id)); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	waitFor(t, func() bool { r := hub.Recent(); return len(r) == 2 && r[1].RunID == "run-3" })

	conn := dial(t, srv)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"run-2", "run-3"} {
		var got models.DocumentRendered
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read: %v", err)
		}
		if got.RunID != want {
			t.Errorf("expected %s, got %s", want, got.RunID)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, srv := startHub(t, 0)
	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 })
}

func TestHub_AfterRunReturnsNothingBlocks(t *testing.T) {
	hub := NewHub(DefaultHistory)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancel")
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if hub.join(nil) {
			t.Error("expected join to fail after Run returned")
		}
		hub.leave(nil)
		if err := hub.Publish(context.Background(), rendered("late")); !errors.Is(err, ErrHubClosed) {
			t.Errorf("expected ErrHubClosed, got %v", err)
		}
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}

	// The existing client was closed by Run.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the existing connection to be closed")
	}

	// A new client is accepted and closed at once.
	late := dial(t, srv)
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected a late connection to be closed")
	}
}

func TestHandler_RecentAndStatic(t *testing.T) {
	hub, srv := startHub(t, DefaultHistory)
	if err := hub.Publish(context.Background(), rendered("run-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitFor(t, func() bool { return len(hub.Recent()) == 1 })

	resp, err := http.Get(srv.URL + "/api/recent")
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	defer resp.Body.Close()
	var recent []models.DocumentRendered
	if err := json.NewDecoder(resp.Body).Decode(&recent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recent) != 1 || recent[0].RunID != "run-1" {
		t.Errorf("unexpected recent: %+v", recent)
	}

	page, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	defer page.Body.Close()
	body, _ := io.ReadAll(page.Body)
	if page.StatusCode != http.StatusOK || !strings.Contains(string(body), "Rendered transcripts") {
		t.Errorf("unexpected page: %d", page.StatusCode)
	}
}

type fakeReader struct {
	msgs []kafka.Message
	errs []error
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return kafka.Message{}, err
	}
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func TestConsume_ForwardsRenderedEvents(t *testing.T) {
	valid, _ := json.Marshal(rendered("run-1"))
	other, _ := json.Marshal(models.DocumentRendered{EventType: "transcript.other", RunID: "run-x"})
	r := &fakeReader{msgs: []kafka.Message{
		{Value: []byte("not json")},
		{Value: other},
		{Value: valid},
	}}

	hub := NewHub(DefaultHistory)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Consume(ctx, r, hub)
		close(done)
	}()

	select {
	case ev := <-hub.broadcast:
		if ev.RunID != "run-1" {
			t.Errorf("expected run-1, got %s", ev.RunID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not stop on cancel")
	}
	if len(hub.broadcast) != 0 {
		t.Errorf("expected only one forwarded event, got %d more", len(hub.broadcast))
	}
}

func TestConsume_StopsOnCancelDuringBackoff(t *testing.T) {
	r := &fakeReader{errs: []error{errors.New("broker down")}}
	hub := NewHub(0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Consume(ctx, r, hub)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not stop on cancel")
	}
}
