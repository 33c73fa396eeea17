package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"buste/internal/core"
	"buste/internal/storage"
)

// asOfLayout is the accepted format of the optional as_of query
// parameter. Supplying it bypasses the cache and pins "now", which
// makes responses reproducible.
const asOfLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveNow returns the effective "now" and whether it was pinned by
// the caller.
func (s *Server) resolveNow(r *http.Request) (time.Time, bool, error) {
	asOf := r.URL.Query().Get("as_of")
	if asOf == "" {
		return s.clock(), false, nil
	}
	t, err := time.Parse(asOfLayout, asOf)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	now, pinned, err := s.resolveNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
		return
	}

	if !pinned && s.allCache != nil {
		if cached, ok := s.allCache.Get("all"); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	preds, err := s.predictions.PredictAll(r.Context(), now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute predictions", "error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	if !pinned && s.allCache != nil {
		s.allCache.Set("all", preds)
	}
	writeJSON(w, http.StatusOK, preds)
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid envelope id")
		return
	}

	now, pinned, err := s.resolveNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
		return
	}

	cacheKey := strconv.FormatInt(id, 10)
	if !pinned && s.oneCache != nil {
		if cached, ok := s.oneCache.Get(cacheKey); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	pred, err := s.predictions.PredictEnvelope(r.Context(), id, now)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "envelope not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to compute prediction",
			"envelope_id", id,
			"error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	if !pinned && s.oneCache != nil {
		s.oneCache.Set(cacheKey, pred)
	}
	writeJSON(w, http.StatusOK, pred)
}

type applyPaymentRequest struct {
	// Amount is a positive decimal string, e.g. "120.00".
	Amount string `json:"amount"`
}

func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid envelope id")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var req applyPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid payment amount")
		return
	}

	res, err := s.payments.ApplyPayment(r.Context(), id, core.NewMoney(cents), s.clock())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to apply payment",
			"envelope_id", id,
			"amount_cents", cents,
			"error", err)
		writeError(w, http.StatusInternalServerError, "payment failed")
		return
	}

	// Balances changed; cached projections are now stale.
	if s.allCache != nil {
		s.allCache.Purge()
	}
	if s.oneCache != nil {
		s.oneCache.Purge()
	}

	writeJSON(w, http.StatusOK, res)
}
