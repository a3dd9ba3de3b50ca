package handlers

import (
	"appliance-intake-service/internal/api/dto"
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/ports"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgAddressRequired = "주소를 입력해주세요."
	msgNoResult        = "검색 결과가 없습니다. 주소를 더 정확히 입력해주세요."
	msgServerError     = "서버 에러가 발생했습니다."
)

type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

// Geocode proxies one lookup to the map provider. Nothing is cached.
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	address := domain.NormalizeQuery(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, r, http.StatusBadRequest, msgAddressRequired)
		return
	}

	res, err := h.Geocoder.Geocode(r.Context(), address)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, msgNoResult)
		return
	case err != nil:
		logging.L().Error("geocode_failed",
			"req_id", middleware.GetReqID(r.Context()),
			"address", address,
			"err", err,
		)
		writeError(w, r, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeResponse{
		X:           res.X,
		Y:           res.Y,
		AddressName: res.Label,
	})
}
