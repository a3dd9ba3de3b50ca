package handlers

import (
	"appliance-intake-service/internal/api/dto"
	"appliance-intake-service/internal/ports"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

const AdminTokenHeader = "x-admin-token"

// IntakesHandler lists recorded leads for staff. Disabled when Token is empty.
type IntakesHandler struct {
	Repo  ports.IntakeRepository
	Token string
}

func (h *IntakesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	if !h.authorized(r) {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.Repo.ListIntakes(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to list intakes")
		return
	}

	res := dto.ListIntakesResponse{Intakes: make([]dto.IntakeRecordResponse, 0, len(records))}
	for _, rec := range records {
		res.Intakes = append(res.Intakes, dto.IntakeRecordResponse{
			ID:            rec.ID,
			SessionID:     rec.SessionID,
			Query:         rec.Query,
			ConsultType:   rec.ConsultType,
			Outcome:       string(rec.Outcome),
			Label:         rec.Label,
			X:             rec.X,
			Y:             rec.Y,
			DirectionsURL: rec.DirectionsURL,
			NextURL:       rec.NextURL,
			CreatedAt:     rec.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *IntakesHandler) authorized(r *http.Request) bool {
	if h.Token == "" {
		return false
	}
	got := r.Header.Get(AdminTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) == 1
}
