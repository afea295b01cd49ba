// Package rest exposes the voting and sync services over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/projector"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/voting"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	healthTimeout   = 5 * time.Second
	maxBodyBytes    = 1 << 20
)

// Handler serves the REST API.
type Handler struct {
	voting    Voting
	projector Projector
	events    LedgerEvents
	checks    map[string]Pinger
	logger    *zap.Logger
}

// NewHandler builds a Handler. events may be nil when the journal is disabled.
func NewHandler(v Voting, p Projector, events LedgerEvents, checks map[string]Pinger, logger *zap.Logger) (*Handler, error) {
	if v == nil {
		return nil, errors.New("rest voting service is required")
	}
	if p == nil {
		return nil, errors.New("rest projector is required")
	}
	return &Handler{
		voting:    v,
		projector: p,
		events:    events,
		checks:    checks,
		logger:    logger.Named("rest"),
	}, nil
}

// Router returns the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID, h.logRequests)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/votes/cast", h.cast).Methods(http.MethodPost)
	api.HandleFunc("/votes/verify", h.verify).Methods(http.MethodPost)
	api.HandleFunc("/votes/results", h.results).Methods(http.MethodGet)
	api.HandleFunc("/votes/history", h.history).Methods(http.MethodGet)
	api.HandleFunc("/votes/chain-results/{position_code}", h.chainResults).Methods(http.MethodGet)
	api.HandleFunc("/elections/{code}/chain-results", h.electionChainResults).Methods(http.MethodGet)
	api.HandleFunc("/elections/{code}/sync", h.sync).Methods(http.MethodPost)
	if h.events != nil {
		api.HandleFunc("/ledger/events/{tx_hash}", h.ledgerEvents).Methods(http.MethodGet)
	}
	return r
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
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
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(started)),
			zap.String("request_id", w.Header().Get(requestIDHeader)),
		)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body[name] = err.Error()
			continue
		}
		body[name] = "ok"
	}
	h.writeJSON(w, status, body)
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Retryable: status == http.StatusServiceUnavailable,
	})
}

func statusOf(err error) int {
	var revert *chain.RevertError
	switch {
	case voting.IsValidation(err), errors.Is(err, chain.ErrArrayLengthMismatch), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, projector.ErrParentNotSynced), errors.Is(err, projector.ErrParentMismatch):
		return http.StatusConflict
	case errors.As(err, &revert):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chain.ErrConnectionUnavailable), errors.Is(err, chain.ErrContractUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
