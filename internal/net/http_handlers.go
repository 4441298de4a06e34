package net

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"newomega/server/internal/combat"
	"newomega/server/internal/fights"
	"newomega/server/internal/journal"
	"newomega/server/internal/modules"
	"newomega/server/internal/net/intake"
	"newomega/server/internal/net/ws"
	"newomega/server/internal/observability"
	"newomega/server/internal/ships"
	"newomega/server/internal/stats"
	"newomega/server/internal/store"
	"newomega/server/internal/telemetry"
	"newomega/server/logging"
)

// Service is the fight API served over HTTP.
type Service interface {
	Simulate(req fights.Request) (combat.Result, error)
	Run(ctx context.Context, req fights.Request) (store.Record, error)
	Get(ctx context.Context, id uuid.UUID) (store.Record, error)
	List(ctx context.Context, limit int) ([]store.Header, error)
	Verify(ctx context.Context, id uuid.UUID) (fights.Verification, error)
	VerifyRecent(ctx context.Context, limit int) ([]fights.Verification, error)
	Frames(ctx context.Context, id uuid.UUID, from int) ([]journal.Keyframe, error)
	Summary(ctx context.Context, id uuid.UUID) (stats.Summary, error)
}

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Publisher     logging.Publisher
	Metrics       *logging.Metrics
	Observability observability.Config
	MaxBodyBytes  int64
	// ReplayInterval is the default delay between streamed keyframes.
	ReplayInterval time.Duration
}

type catalogResponse struct {
	Ships     [ships.Count]ships.Def `json:"ships"`
	Modules   []modules.Definition   `json:"modules"`
	Targeting []string               `json:"targeting"`
	MaxRounds int                    `json:"defaultMaxRounds"`
}

type fightResponse struct {
	ID        uuid.UUID     `json:"id"`
	Checksum  string        `json:"checksum"`
	CreatedAt time.Time     `json:"created_at"`
	Result    combat.Result `json:"result"`
	Summary   stats.Summary `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func NewHTTPHandler(svc Service, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Telemetry  map[string]uint64 `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Telemetry:  cfg.Metrics.Snapshot(),
		}
		writeJSON(w, logger, nethttp.StatusOK, payload)
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/catalog", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		policies := combat.TargetingPolicies()
		names := make([]string, len(policies))
		for i, policy := range policies {
			names[i] = policy.String()
		}
		writeJSON(w, logger, nethttp.StatusOK, catalogResponse{
			Ships:     ships.All(),
			Modules:   modules.Catalog(),
			Targeting: names,
			MaxRounds: combat.DefaultMaxRounds,
		})
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/simulate", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		req, err := intake.DecodeRequest(r.Body, cfg.MaxBodyBytes)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		result, err := svc.Simulate(req)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, result)
	}).Methods(nethttp.MethodPost)

	router.HandleFunc("/fights", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		req, err := intake.DecodeRequest(r.Body, cfg.MaxBodyBytes)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		record, err := svc.Run(r.Context(), req)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Location", "/fights/"+record.ID.String())
		writeJSON(w, logger, nethttp.StatusCreated, newFightResponse(record))
	}).Methods(nethttp.MethodPost)

	router.HandleFunc("/fights", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		limit, ok := parseCount(w, logger, r.URL.Query().Get("limit"), "invalid limit")
		if !ok {
			return
		}
		headers, err := svc.List(r.Context(), limit)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, struct {
			Fights []store.Header `json:"fights"`
		}{Fights: headers})
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/fights/verify", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		limit, ok := parseCount(w, logger, r.URL.Query().Get("limit"), "invalid limit")
		if !ok {
			return
		}
		reports, err := svc.VerifyRecent(r.Context(), limit)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		status := nethttp.StatusOK
		for _, report := range reports {
			if !report.OK {
				status = nethttp.StatusConflict
				break
			}
		}
		writeJSON(w, logger, status, struct {
			Fights []fights.Verification `json:"fights"`
		}{Fights: reports})
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/fights/{id}", withFightID(logger, func(w nethttp.ResponseWriter, r *nethttp.Request, id uuid.UUID) {
		record, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, newFightResponse(record))
	})).Methods(nethttp.MethodGet)

	router.HandleFunc("/fights/{id}/summary", withFightID(logger, func(w nethttp.ResponseWriter, r *nethttp.Request, id uuid.UUID) {
		summary, err := svc.Summary(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, summary)
	})).Methods(nethttp.MethodGet)

	router.HandleFunc("/fights/{id}/frames", withFightID(logger, func(w nethttp.ResponseWriter, r *nethttp.Request, id uuid.UUID) {
		from, ok := parseCount(w, logger, r.URL.Query().Get("from"), "invalid from round")
		if !ok {
			return
		}
		frames, err := svc.Frames(r.Context(), id, from)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, struct {
			Frames []journal.Keyframe `json:"frames"`
		}{Frames: frames})
	})).Methods(nethttp.MethodGet)

	router.HandleFunc("/fights/{id}/verify", withFightID(logger, func(w nethttp.ResponseWriter, r *nethttp.Request, id uuid.UUID) {
		report, err := svc.Verify(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		status := nethttp.StatusOK
		if !report.OK {
			status = nethttp.StatusConflict
		}
		writeJSON(w, logger, status, report)
	})).Methods(nethttp.MethodGet)

	replay := ws.NewHandler(svc, ws.HandlerConfig{
		Logger:    logger,
		Publisher: cfg.Publisher,
		Metrics:   telemetry.WrapMetrics(cfg.Metrics),
		Interval:  cfg.ReplayInterval,
	})
	router.HandleFunc("/fights/{id}/replay", replay.Handle).Methods(nethttp.MethodGet)

	observability.Register(router, cfg.Observability)

	return router
}

func newFightResponse(record store.Record) fightResponse {
	return fightResponse{
		ID:        record.ID,
		Checksum:  record.Checksum,
		CreatedAt: record.CreatedAt,
		Result:    record.Result,
		Summary:   stats.Summarize(record.Result),
	}
}

func withFightID(logger telemetry.Logger, next func(nethttp.ResponseWriter, *nethttp.Request, uuid.UUID)) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			writeJSON(w, logger, nethttp.StatusBadRequest, errorResponse{Error: "invalid fight id"})
			return
		}
		next(w, r, id)
	}
}

// parseCount reads an optional non-negative query value, answering 400 when
// it is malformed.
func parseCount(w nethttp.ResponseWriter, logger telemetry.Logger, raw, message string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		writeJSON(w, logger, nethttp.StatusBadRequest, errorResponse{Error: message})
		return 0, false
	}
	return value, true
}

func writeError(w nethttp.ResponseWriter, logger telemetry.Logger, err error) {
	var invalid *combat.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, logger, nethttp.StatusBadRequest, errorResponse{Error: invalid.Reason, Field: invalid.Field})
	case errors.Is(err, combat.ErrInvalidInput), errors.Is(err, intake.ErrMalformed):
		writeJSON(w, logger, nethttp.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, logger, nethttp.StatusNotFound, errorResponse{Error: "fight not found"})
	default:
		logger.Printf("request failed: %v", err)
		writeJSON(w, logger, nethttp.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
