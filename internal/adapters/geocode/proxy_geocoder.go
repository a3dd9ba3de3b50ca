package geocode

import (
	"appliance-intake-service/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ProxyGeocoder implements ports.Geocoder by calling a deployed
// GET /api/geocode endpoint instead of the provider directly.
type ProxyGeocoder struct {
	session *http.Client
	baseURL string
}

func NewProxyGeocoder(baseURL string, timeout time.Duration) (*ProxyGeocoder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("proxy base url is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ProxyGeocoder{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

// flexFloat accepts both JSON numbers and numeric strings.
type flexFloat struct {
	value float64
	ok    bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.value, f.ok = v, true
	return nil
}

type proxyResponse struct {
	X           flexFloat `json:"x"`
	Y           flexFloat `json:"y"`
	AddressName string    `json:"address_name"`
	Error       string    `json:"error"`
	Message     string    `json:"message"`
}

func (p *ProxyGeocoder) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	const op = "geocode proxy"

	query := domain.NormalizeQuery(address)
	if query == "" {
		return domain.GeocodeResult{}, domain.ErrEmptyInput
	}

	endpoint := p.baseURL + "/api/geocode?address=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := p.session.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, &domain.UpstreamError{Op: op, Kind: domain.UpstreamTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.GeocodeResult{}, &domain.UpstreamError{Op: op, Kind: domain.UpstreamTransport, Status: resp.StatusCode, Err: err}
	}

	var data proxyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.GeocodeResult{}, &domain.UpstreamError{
			Op:     op,
			Kind:   domain.UpstreamNonJSON,
			Status: resp.StatusCode,
			Err:    errors.New("GEOCODE_NON_JSON_RESPONSE"),
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.GeocodeResult{}, fmt.Errorf("%s %q: %w", op, query, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := data.Message
		if msg == "" {
			msg = data.Error
		}
		if msg == "" {
			msg = "API error"
		}
		return domain.GeocodeResult{}, &domain.UpstreamError{
			Op:     op,
			Kind:   domain.UpstreamStatus,
			Status: resp.StatusCode,
			Err:    errors.New(msg),
		}
	}

	c := domain.Coordinates{X: data.X.value, Y: data.Y.value}
	if !data.X.ok || !data.Y.ok || !c.Valid() {
		return domain.GeocodeResult{}, fmt.Errorf("%s %q: unusable coordinates: %w", op, query, domain.ErrNotFound)
	}

	label := data.AddressName
	if label == "" {
		label = query
	}

	return domain.GeocodeResult{Coordinates: c, Label: label}, nil
}
