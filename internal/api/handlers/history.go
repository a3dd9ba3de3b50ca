package handlers

import (
	"appliance-intake-service/internal/api/dto"
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/ports"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type HistoryHandler struct {
	Store    ports.HistoryStore
	Sessions Sessions
	Now      func() time.Time
}

// History serves the session's selection log: GET lists, POST appends a
// card click, DELETE clears.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.append(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST, DELETE")
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.Sessions.Existing(r)
	if !ok {
		writeJSON(w, r, http.StatusOK, toHistoryResponse(nil))
		return
	}

	entries, err := h.Store.List(r.Context(), sid)
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toHistoryResponse(entries))
}

func (h *HistoryHandler) append(w http.ResponseWriter, r *http.Request) {
	var req dto.AppendHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		writeError(w, r, http.StatusBadRequest, "label is required")
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	sid := h.Sessions.ID(w, r)
	entries, err := h.Store.Append(r.Context(), sid, domain.HistoryEntry{
		Label:       label,
		URL:         strings.TrimSpace(req.URL),
		TimestampMs: now().UnixMilli(),
	})
	if err != nil {
		h.fail(w, r, "append", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toHistoryResponse(entries))
}

func (h *HistoryHandler) clear(w http.ResponseWriter, r *http.Request) {
	if sid, ok := h.Sessions.Existing(r); ok {
		if err := h.Store.Clear(r.Context(), sid); err != nil {
			h.fail(w, r, "clear", err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, toHistoryResponse(nil))
}

func (h *HistoryHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.L().Error("history_failed",
		"req_id", middleware.GetReqID(r.Context()),
		"op", op,
		"err", err,
	)
	writeError(w, r, http.StatusServiceUnavailable, "history unavailable")
}

func toHistoryResponse(entries []domain.HistoryEntry) dto.HistoryResponse {
	out := dto.HistoryResponse{Entries: make([]dto.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.HistoryEntry{Label: e.Label, URL: e.URL, TS: e.TimestampMs})
	}
	return out
}
