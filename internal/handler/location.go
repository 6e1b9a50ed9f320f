package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waymark-io/waymark/internal/ingest"
	"github.com/waymark-io/waymark/internal/model"
	"github.com/waymark-io/waymark/internal/service"
	"github.com/waymark-io/waymark/internal/store"
)

// maxHistoryLimit bounds the page size a client may request.
const maxHistoryLimit = 10000

// LocationHandler serves the ingestion endpoint and the history queries.
type LocationHandler struct {
	store   *store.Store
	history *service.HistoryService
	logger  *slog.Logger
}

func NewLocationHandler(st *store.Store, history *service.HistoryService, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{store: st, history: history, logger: logger}
}

// Status answers the root health check.
func (h *LocationHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.StatusResponse{
		Status:  "running",
		Message: "Location logger is active",
	})
}

// Publish ingests a location ping. The response body is always an empty
// array: OwnTracks clients only check the HTTP status, and this endpoint
// is unauthenticated at this layer, so failures surface as a generic 500
// with details logged server-side only.
func (h *LocationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read ping body", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	loc, err := ingest.Parse(body, time.Now())
	if err != nil {
		h.logger.Error("failed to parse ping", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := h.store.CreateLocation(r.Context(), loc); err != nil {
		h.logger.Error("failed to store ping", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, []interface{}{})
}

// History returns a page of the full history. limit is optional; when
// present it must be in (0, 10000] and offset must be >= 0.
func (h *LocationHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := queryString(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 10000")
			return
		}
		limit = n
	}

	offset := 0
	if raw := queryString(r, "offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	page, err := h.history.History(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HistoryByDate returns all locations received on one calendar day. The
// query_date parameter must be a strict YYYY-MM-DD string.
func (h *LocationHandler) HistoryByDate(w http.ResponseWriter, r *http.Request) {
	raw := queryString(r, "query_date")
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	result, err := h.history.HistoryByDate(r.Context(), day)
	if err != nil {
		h.logger.Error("history by date query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HistoryByDevice returns the entire history of one device.
func (h *LocationHandler) HistoryByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	result, err := h.history.HistoryByDevice(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("history by device query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
