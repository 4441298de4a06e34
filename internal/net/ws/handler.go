// Package ws streams archived fights to playback clients over websockets.
package ws

import (
	"context"
	"errors"
	nethttp "net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"newomega/server/internal/journal"
	"newomega/server/internal/net/proto"
	"newomega/server/internal/store"
	"newomega/server/internal/telemetry"
	"newomega/server/logging"
	"newomega/server/logging/network"
)

// MaxInterval caps the client-requested delay between keyframes.
const MaxInterval = 5 * time.Second

const (
	metricStreamsOpen  = "replay_streams_open"
	metricStreamsTotal = "replay_streams_total"
)

// Source loads archived fights.
type Source interface {
	Get(ctx context.Context, id uuid.UUID) (store.Record, error)
	Frames(ctx context.Context, id uuid.UUID, from int) ([]journal.Keyframe, error)
}

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	// Interval is the default delay between keyframes.
	Interval     time.Duration
	WriteTimeout time.Duration
}

// Handler upgrades replay requests and streams keyframes.
type Handler struct {
	source       Source
	logger       telemetry.Logger
	publisher    logging.Publisher
	metrics      telemetry.Metrics
	open         atomic.Int64
	interval     time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

func NewHandler(source Source, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		source:       source,
		logger:       logger,
		publisher:    publisher,
		metrics:      cfg.Metrics,
		interval:     clampInterval(cfg.Interval),
		writeTimeout: cfg.WriteTimeout,
		upgrader:     upgrader,
	}
}

func clampInterval(interval time.Duration) time.Duration {
	if interval < 0 {
		return 0
	}
	if interval > MaxInterval {
		return MaxInterval
	}
	return interval
}

// Handle serves GET /fights/{id}/replay.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		nethttp.Error(w, "invalid fight id", nethttp.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	from := 0
	if raw := query.Get("from"); raw != "" {
		from, err = strconv.Atoi(raw)
		if err != nil || from < 0 {
			nethttp.Error(w, "invalid from round", nethttp.StatusBadRequest)
			return
		}
	}
	interval := h.interval
	if raw := query.Get("interval_ms"); raw != "" {
		millis, err := strconv.Atoi(raw)
		if err != nil || millis < 0 {
			nethttp.Error(w, "invalid interval", nethttp.StatusBadRequest)
			return
		}
		interval = clampInterval(time.Duration(millis) * time.Millisecond)
	}

	ctx := r.Context()
	record, err := h.source.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			nethttp.Error(w, "fight not found", nethttp.StatusNotFound)
			return
		}
		h.logger.Printf("replay %s: load failed: %v", id, err)
		nethttp.Error(w, "failed to load fight", nethttp.StatusInternalServerError)
		return
	}
	frames, err := h.source.Frames(ctx, id, from)
	if err != nil {
		h.logger.Printf("replay %s: rebuild failed: %v", id, err)
		nethttp.Error(w, "failed to rebuild fight", nethttp.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for replay %s: %v", id, err)
		return
	}
	sess := newSession(conn, h.writeTimeout)
	h.trackOpen(1)
	defer h.trackOpen(-1)

	fightID := id.String()
	pub := logging.WithFight(h.publisher, fightID)
	client := logging.EntityRef{ID: r.RemoteAddr, Kind: logging.EntityKindClient}
	network.ReplayStreamOpened(ctx, pub, client, network.ReplayStreamPayload{FromRound: from, Frames: len(frames)}, nil)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	reason := h.stream(sess, closed, fightID, from, interval, frames, record)
	network.ReplayStreamClosed(ctx, pub, client, network.ReplayStreamPayload{FromRound: from, Frames: sess.Sent(), Reason: reason}, nil)
	if reason == "" {
		sess.Close(websocket.CloseNormalClosure, "replay complete")
	} else {
		sess.Close(websocket.CloseGoingAway, reason)
	}
}

func (h *Handler) trackOpen(delta int64) {
	open := h.open.Add(delta)
	if h.metrics == nil {
		return
	}
	if delta > 0 {
		h.metrics.Add(metricStreamsTotal, uint64(delta))
	}
	h.metrics.Store(metricStreamsOpen, uint64(open))
}

// Open reports how many replay streams are being served.
func (h *Handler) Open() int {
	return int(h.open.Load())
}

// stream writes the hello, keyframe and complete frames. It returns a
// non-empty reason when the stream ended early.
func (h *Handler) stream(sess *session, closed <-chan struct{}, fightID string, from int, interval time.Duration, frames []journal.Keyframe, record store.Record) string {
	hello, err := proto.EncodeHello(fightID, from, len(frames))
	if err != nil {
		return "encode failed"
	}
	if err := sess.WriteMessage(websocket.TextMessage, hello); err != nil {
		return "write failed"
	}

	for i, frame := range frames {
		if i > 0 && interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-closed:
				timer.Stop()
				return "client closed"
			case <-timer.C:
			}
		}
		data, err := proto.EncodeKeyframe(fightID, frame)
		if err != nil {
			h.logger.Printf("replay %s: failed to marshal round %d: %v", fightID, frame.Round, err)
			return "encode failed"
		}
		if err := sess.WriteMessage(websocket.TextMessage, data); err != nil {
			return "write failed"
		}
	}

	done, err := proto.EncodeComplete(fightID, record.Result, record.Checksum)
	if err != nil {
		return "encode failed"
	}
	if err := sess.WriteMessage(websocket.TextMessage, done); err != nil {
		return "write failed"
	}
	return ""
}
