package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Matttaylor8910/generals-events-sub000/internal/batch"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

const (
	maxBlobBytes  = 32 << 20
	maxBatchBytes = 1 << 20
	maxBatchSize  = 256
)

// Handler serves replay scoring over HTTP.
type Handler struct {
	runner *batch.Runner
	sim    *simulation.Simulator
	logger zerolog.Logger
}

func NewHandler(runner *batch.Runner, sim *simulation.Simulator, logger zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		sim:    sim,
		logger: logger.With().Str("component", "HTTPHandler").Logger(),
	}
}

// NewRouter wires the handler's routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1/replays").Subrouter()
	v1.HandleFunc("/simulate", h.Simulate).Methods(http.MethodPost)
	v1.HandleFunc("/batch", h.Batch).Methods(http.MethodPost)
	v1.HandleFunc("/{server}/{id}", h.ScoreReplay).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ScoreReplay fetches a stored replay and simulates it.
func (h *Handler) ScoreReplay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item := h.runner.RunOne(r.Context(), batch.Request{Server: vars["server"], ID: vars["id"]})
	if item.Err != nil {
		h.writeError(w, item.Err)
		return
	}
	writeJSON(w, http.StatusOK, item.Result)
}

// Simulate scores a replay uploaded in the request body. A JSON content
// type means the body is the already decompressed payload.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBlobBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	var rep *replay.Replay
	if r.Header.Get("Content-Type") == "application/json" {
		rep, err = replay.Parse(body)
	} else {
		rep, err = replay.Decode(body)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.sim.Run(rep)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type batchItem struct {
	batch.Request
	Result *simulation.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Batch scores a list of stored replays under the batch deadline.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var reqs []batch.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBatchBytes)).Decode(&reqs); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(reqs) == 0 || len(reqs) > maxBatchSize {
		http.Error(w, "batch must hold between 1 and 256 replays", http.StatusBadRequest)
		return
	}

	items, err := h.runner.Run(r.Context(), reqs)
	out := make([]batchItem, len(items))
	for i, it := range items {
		out[i] = batchItem{Request: it.Request, Result: it.Result}
		if it.Err != nil {
			out[i].Error = it.Err.Error()
		}
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]any{"items": out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps engine and fetch errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, replay.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, replay.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, replay.ErrUnknownServer):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
