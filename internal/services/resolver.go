package services

import (
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/platform/metrics"
	"appliance-intake-service/internal/platform/obs"
	"appliance-intake-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	DefaultResolveTimeout = 8 * time.Second

	EmptyInputPrompt = "고객 주소(지역/주소)를 입력해주세요."
	failurePrefix    = "처리 중 오류가 발생했어요.\n"
)

type SearchRequest struct {
	SessionID   string
	Query       string
	ConsultType string
}

// Decision is what the host page should do after a search or skip.
//
// NavigateTo is where the current context goes. For an in-service result
// whose secondary context was refused, NavigateTo is the directions URL and
// NextURL still carries the next-step page.
type Decision struct {
	Outcome       domain.Outcome
	Query         string
	ConsultType   string
	Label         string
	Keyword       string
	Coordinates   domain.Coordinates
	DirectionsURL string
	Opened        bool
	NavigateTo    string
	NextURL       string
}

type ResolverOptions struct {
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Resolver runs the address resolution flow: geocode, classify against
// the service area, pick the navigation target, record history and persist
// the intake. One Resolver serves every session.
type Resolver struct {
	geocoder ports.Geocoder
	history  ports.HistoryStore
	intakes  ports.IntakeRepository
	nav      domain.NavigationConfig
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time

	companyMu sync.Mutex
	company   *domain.CompanyCoords

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewResolver(
	geocoder ports.Geocoder,
	history ports.HistoryStore,
	intakes ports.IntakeRepository,
	nav domain.NavigationConfig,
	opts ResolverOptions,
) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultResolveTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.L()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		geocoder: geocoder,
		history:  history,
		intakes:  intakes,
		nav:      nav,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      opts.Now,
		inflight: map[string]struct{}{},
	}
}

// Search resolves req.Query and drives navigator accordingly.
//
// Errors: domain.ErrEmptyInput before any lookup, domain.ErrBusy while the
// same session is still resolving, *domain.CompanyLookupError or a wrapped
// *domain.UpstreamError when the flow failed. A failed flow navigates
// nowhere and writes no history.
func (r *Resolver) Search(ctx context.Context, req SearchRequest, navigator ports.Navigator) (*Decision, error) {
	q := domain.NormalizeQuery(req.Query)
	if q == "" {
		return nil, domain.ErrEmptyInput
	}

	release, err := r.acquire(req.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.resolve(ctx, req, q, navigator)
}

// resolve runs one admitted search; only these are timed.
func (r *Resolver) resolve(ctx context.Context, req SearchRequest, q string, navigator ports.Navigator) (_ *Decision, err error) {
	defer obs.Time(ctx, "resolver.Search")(&err)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	company, err := r.companyCoords(ctx)
	if err != nil {
		r.metrics.ObserveResolution("failed")
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	customer, err := r.geocoder.Geocode(ctx, q)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.outOfService(ctx, req, q, navigator), nil
	case err != nil:
		r.metrics.ObserveResolution("failed")
		return nil, fmt.Errorf("resolve address %q: %w", q, err)
	}

	keyword, ok := domain.MatchServiceArea(domain.AreaText(customer.Label, q))
	if !ok {
		d := r.outOfService(ctx, req, q, navigator)
		d.Label = customer.Label
		d.Coordinates = customer.Coordinates
		return d, nil
	}

	d := &Decision{
		Outcome:       domain.OutcomeInService,
		Query:         q,
		ConsultType:   req.ConsultType,
		Label:         customer.Label,
		Keyword:       keyword,
		Coordinates:   customer.Coordinates,
		DirectionsURL: domain.DirectionsURL(*company, customer),
		NextURL:       r.nav.InServiceURL(q, req.ConsultType),
	}

	d.Opened = navigator.OpenSecondary(d.DirectionsURL)
	r.metrics.ObservePopup(d.Opened)
	r.pushHistory(ctx, req.SessionID, "지역(서비스내): "+q, d.DirectionsURL)
	r.pushHistory(ctx, req.SessionID, "다음단계 이동: "+q, d.NextURL)

	if d.Opened {
		d.NavigateTo = d.NextURL
	} else {
		// The directions must not be lost; the page follows NextURL afterwards.
		d.NavigateTo = d.DirectionsURL
	}
	navigator.Navigate(d.NavigateTo)

	r.record(ctx, req.SessionID, d)
	return d, nil
}

func (r *Resolver) outOfService(ctx context.Context, req SearchRequest, q string, navigator ports.Navigator) *Decision {
	d := &Decision{
		Outcome:     domain.OutcomeOutOfService,
		Query:       q,
		ConsultType: req.ConsultType,
		NextURL:     r.nav.OutsideURL(q, req.ConsultType),
	}
	d.NavigateTo = d.NextURL

	r.pushHistory(ctx, req.SessionID, "지역(서비스외): "+q, d.NextURL)
	navigator.Navigate(d.NavigateTo)
	r.record(ctx, req.SessionID, d)
	return d
}

// Skip moves to the next-step page without a map search.
func (r *Resolver) Skip(ctx context.Context, req SearchRequest, navigator ports.Navigator) (*Decision, error) {
	q := domain.NormalizeQuery(req.Query)

	release, err := r.acquire(req.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	d := &Decision{
		Outcome:     domain.OutcomeSkipped,
		Query:       q,
		ConsultType: req.ConsultType,
		NextURL:     r.nav.SkipURL(q, req.ConsultType),
	}
	d.NavigateTo = d.NextURL

	label := "지도 검색 건너뜀"
	if q != "" {
		label = "지역 입력(지도 건너뜀): " + q
	}
	r.pushHistory(ctx, req.SessionID, label, d.NextURL)
	navigator.Navigate(d.NavigateTo)
	r.record(ctx, req.SessionID, d)
	return d, nil
}

// FailureMessage renders a failed flow for the user.
func FailureMessage(err error) string {
	return failurePrefix + err.Error()
}

func (r *Resolver) acquire(sessionID string) (func(), error) {
	if sessionID == "" {
		return func() {}, nil
	}

	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	if _, busy := r.inflight[sessionID]; busy {
		return nil, domain.ErrBusy
	}
	r.inflight[sessionID] = struct{}{}

	return func() {
		r.inflightMu.Lock()
		delete(r.inflight, sessionID)
		r.inflightMu.Unlock()
	}, nil
}

// companyCoords geocodes the company address once per process. The cache is
// only ever set to a complete, finite pair; failures leave it unset so the
// next search retries.
func (r *Resolver) companyCoords(ctx context.Context) (*domain.CompanyCoords, error) {
	r.companyMu.Lock()
	defer r.companyMu.Unlock()

	if r.company != nil {
		return r.company, nil
	}

	addr := r.nav.Company.Address
	res, err := r.geocoder.Geocode(ctx, addr)
	if err != nil {
		return nil, &domain.CompanyLookupError{Address: addr, Err: err}
	}
	if !res.Valid() {
		return nil, &domain.CompanyLookupError{Address: addr, Err: errors.New("non-finite coordinates")}
	}

	r.company = &domain.CompanyCoords{Coordinates: res.Coordinates, Name: r.nav.Company.Name}
	r.log.Info("company_coords_ready", "name", r.company.Name, "x", r.company.X, "y", r.company.Y)
	return r.company, nil
}

// History failures never change the outcome.
func (r *Resolver) pushHistory(ctx context.Context, sessionID, label, url string) {
	if r.history == nil || sessionID == "" {
		return
	}
	e := domain.HistoryEntry{Label: label, URL: url, TimestampMs: r.now().UnixMilli()}
	if _, err := r.history.Append(ctx, sessionID, e); err != nil {
		r.metrics.ObserveHistoryError()
		r.log.Warn("history_append_failed", "session", sessionID, "label", label, "err", err)
	}
}

func (r *Resolver) record(ctx context.Context, sessionID string, d *Decision) {
	r.metrics.ObserveResolution(string(d.Outcome))
	r.log.Info("intake_decided",
		"req_id", middleware.GetReqID(ctx),
		"outcome", d.Outcome,
		"type", d.ConsultType,
		"keyword", d.Keyword,
		"opened", d.Opened,
	)

	if r.intakes == nil || sessionID == "" {
		return
	}
	rec := &domain.IntakeRecord{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Query:         d.Query,
		ConsultType:   d.ConsultType,
		Outcome:       d.Outcome,
		Label:         d.Label,
		X:             d.Coordinates.X,
		Y:             d.Coordinates.Y,
		DirectionsURL: d.DirectionsURL,
		NextURL:       d.NextURL,
		CreatedAt:     r.now().UTC(),
	}
	if err := r.intakes.SaveIntake(ctx, rec); err != nil {
		r.log.Warn("intake_save_failed", "session", sessionID, "outcome", d.Outcome, "err", err)
	}
}
