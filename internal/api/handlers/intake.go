package handlers

import (
	"appliance-intake-service/internal/adapters/navigator"
	"appliance-intake-service/internal/api/dto"
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/services"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

const msgBusy = "검색중입니다. 잠시만 기다려주세요."

type IntakeHandler struct {
	Resolver *services.Resolver
	Sessions Sessions
}

type resolveFunc func(context.Context, services.SearchRequest, *navigator.Recorder) (*services.Decision, error)

// Search runs the address resolution flow and returns the navigation the
// page should perform.
func (h *IntakeHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, true, func(ctx context.Context, req services.SearchRequest, nav *navigator.Recorder) (*services.Decision, error) {
		return h.Resolver.Search(ctx, req, nav)
	})
}

// Skip moves to the next step without a map search.
func (h *IntakeHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, false, func(ctx context.Context, req services.SearchRequest, nav *navigator.Recorder) (*services.Decision, error) {
		return h.Resolver.Skip(ctx, req, nav)
	})
}

// requireQuery rejects a blank query before any cookie is written.
func (h *IntakeHandler) handle(w http.ResponseWriter, r *http.Request, requireQuery bool, resolve resolveFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	req, err := parseIntakeRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Query = domain.NormalizeQuery(req.Query)
	if requireQuery && req.Query == "" {
		writeError(w, r, http.StatusBadRequest, services.EmptyInputPrompt)
		return
	}

	sid := h.Sessions.ID(w, r)
	consultType := h.Sessions.ConsultType(w, r, req.Type)

	popup := true
	if req.Popup != nil {
		popup = *req.Popup
	}
	nav := navigator.NewRecorder(popup)

	d, err := resolve(r.Context(), services.SearchRequest{
		SessionID:   sid,
		Query:       req.Query,
		ConsultType: consultType,
	}, nav)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, r, http.StatusBadRequest, services.EmptyInputPrompt)
		return
	case errors.Is(err, domain.ErrBusy):
		writeError(w, r, http.StatusConflict, msgBusy)
		return
	case err != nil:
		logging.L().Warn("intake_failed",
			"req_id", middleware.GetReqID(r.Context()),
			"session", sid,
			"err", err,
		)
		writeError(w, r, http.StatusBadGateway, services.FailureMessage(err))
		return
	}

	writeJSON(w, r, http.StatusOK, toIntakeResponse(d, nav.Actions()))
}

func parseIntakeRequest(r *http.Request) (dto.IntakeRequest, error) {
	var req dto.IntakeRequest
	if isJSON(r) {
		err := decodeJSON(r, &req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid form body")
	}
	req.Query = r.Form.Get("q")
	req.Type = r.Form.Get("type")
	if v := r.Form.Get("popup"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.New("popup must be a boolean")
		}
		req.Popup = &b
	}
	return req, nil
}

func toIntakeResponse(d *services.Decision, actions []navigator.Action) dto.IntakeResponse {
	res := dto.IntakeResponse{
		Status:     string(d.Outcome),
		Opened:     d.Opened,
		NavigateTo: d.NavigateTo,
		NextURL:    d.NextURL,
		Label:      d.Label,
		Actions:    make([]dto.NavigatorAction, 0, len(actions)),
	}
	if d.Opened {
		res.OpenURL = d.DirectionsURL
	}
	for _, a := range actions {
		res.Actions = append(res.Actions, dto.NavigatorAction{Kind: a.Kind, URL: a.URL})
	}
	return res
}
