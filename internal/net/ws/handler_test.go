package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"newomega/server/internal/combat"
	"newomega/server/internal/journal"
	"newomega/server/internal/net/proto"
	"newomega/server/internal/store"
	"newomega/server/logging"
	"newomega/server/logging/network"
)

type fakeSource struct {
	record store.Record
}

func (f *fakeSource) Get(_ context.Context, id uuid.UUID) (store.Record, error) {
	if id != f.record.ID {
		return store.Record{}, store.ErrNotFound
	}
	return f.record, nil
}

func (f *fakeSource) Frames(_ context.Context, id uuid.UUID, from int) ([]journal.Keyframe, error) {
	if id != f.record.ID {
		return nil, store.ErrNotFound
	}
	j := journal.New(0)
	journal.Replay(j, f.record.Result)
	return j.Since(from - 1), nil
}

type eventChannel chan logging.Event

func (c eventChannel) Publish(_ context.Context, event logging.Event) {
	c <- event
}

func newSource(t *testing.T) *fakeSource {
	t.Helper()
	result, err := combat.Simulate(1337, combat.Input{
		SelectionLhs: combat.Selection{3, 3, 3, 3},
		SelectionRhs: combat.Selection{16, 16, 16, 16},
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return &fakeSource{record: store.Record{ID: uuid.New(), Checksum: "sum", Result: result}}
}

func serve(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/fights/{id}/replay", h.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, events eventChannel, eventType logging.EventType) logging.Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == eventType {
				return event
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func TestHandleStopsWhenClientLeaves(t *testing.T) {
	source := newSource(t)
	events := make(eventChannel, 16)
	h := NewHandler(source, HandlerConfig{Publisher: events})
	server := serve(t, h)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/fights/" + source.record.ID.String() + "/replay?interval_ms=60000"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	for _, want := range []string{proto.TypeHello, proto.TypeKeyframe} {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := proto.DecodeEnvelope(data)
		if err != nil || env.Type != want {
			t.Fatalf("expected %s frame, got %+v (%v)", want, env, err)
		}
	}
	opened := waitFor(t, events, network.EventReplayStreamOpened)
	if opened.FightID != source.record.ID.String() {
		t.Fatalf("expected fight id on the open event, got %q", opened.FightID)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	closed := waitFor(t, events, network.EventReplayStreamClosed)
	payload, ok := closed.Payload.(network.ReplayStreamPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", closed.Payload)
	}
	if payload.Reason != "client closed" || payload.Frames != 2 {
		t.Fatalf("expected the stream to stop after two frames, got %+v", payload)
	}
	if closed.Severity != logging.SeverityWarn {
		t.Fatalf("expected an early close to warn, got %s", closed.Severity)
	}
}

func TestHandleValidatesQueryBeforeUpgrade(t *testing.T) {
	source := newSource(t)
	server := serve(t, NewHandler(source, HandlerConfig{}))

	cases := map[string]int{
		"/fights/not-a-uuid/replay":                                      http.StatusBadRequest,
		"/fights/" + uuid.NewString() + "/replay":                        http.StatusNotFound,
		"/fights/" + source.record.ID.String() + "/replay?from=-1":       http.StatusBadRequest,
		"/fights/" + source.record.ID.String() + "/replay?interval_ms=x": http.StatusBadRequest,
	}
	for path, want := range cases {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestClampInterval(t *testing.T) {
	if got := clampInterval(-time.Second); got != 0 {
		t.Fatalf("expected negative interval to clamp to 0, got %s", got)
	}
	if got := clampInterval(time.Hour); got != MaxInterval {
		t.Fatalf("expected interval to clamp to %s, got %s", MaxInterval, got)
	}
}
