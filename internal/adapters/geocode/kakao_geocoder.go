package geocode

import (
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/metrics"
	"appliance-intake-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	stepAddress = "address"
	stepKeyword = "keyword"
)

type searchResponse struct {
	Documents []searchDocument `json:"documents"`
}

// Address search fills AddressName; keyword search fills PlaceName.
type searchDocument struct {
	X           string `json:"x"`
	Y           string `json:"y"`
	AddressName string `json:"address_name"`
	PlaceName   string `json:"place_name"`
}

// KakaoGeocoder implements ports.Geocoder using Kakao Local search.
//
// A lookup tries structured address search first and falls back to
// keyword (place) search only when the first step has no documents.
// There is no retry and no caching; each call is a fresh lookup bounded
// by the client timeout. Safe for concurrent use.
type KakaoGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	metrics *metrics.Metrics
}

func NewKakaoGeocoder(
	apiKey string,
	baseURL string,
	timeout time.Duration,
	m *metrics.Metrics,
) (*KakaoGeocoder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("kakao rest api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://dapi.kakao.com"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &KakaoGeocoder{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: m,
	}, nil
}

func (k *KakaoGeocoder) Geocode(ctx context.Context, address string) (_ domain.GeocodeResult, err error) {
	defer obs.Time(ctx, "kakao.Geocode")(&err)

	query := domain.NormalizeQuery(address)
	if query == "" {
		return domain.GeocodeResult{}, domain.ErrEmptyInput
	}

	docs, err := k.search(ctx, stepAddress, query)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(docs) > 0 {
		return toResult(stepAddress, docs[0], docs[0].AddressName)
	}

	docs, err = k.search(ctx, stepKeyword, query)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(docs) > 0 {
		return toResult(stepKeyword, docs[0], docs[0].PlaceName)
	}

	return domain.GeocodeResult{}, fmt.Errorf("geocode %q: %w", query, domain.ErrNotFound)
}

func (k *KakaoGeocoder) search(ctx context.Context, step, query string) ([]searchDocument, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v2/local/search/%s.json", k.baseURL, step)
	op := "kakao " + step + " search"

	req, err := k.newRequest(ctx, endpoint, query)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Kind: domain.UpstreamTransport, Err: err}
	}

	var decoded searchResponse
	if err := k.getJSON(req, op, &decoded); err != nil {
		k.metrics.ObserveGeocode(step, "error", time.Since(start).Seconds())
		return nil, err
	}

	result := "miss"
	if len(decoded.Documents) > 0 {
		result = "hit"
	}
	k.metrics.ObserveGeocode(step, result, time.Since(start).Seconds())

	return decoded.Documents, nil
}

// Kakao encodes coordinates as decimal strings.
func toResult(step string, doc searchDocument, label string) (domain.GeocodeResult, error) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(doc.X), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(doc.Y), 64)
	c := domain.Coordinates{X: x, Y: y}
	if errX != nil || errY != nil || !c.Valid() {
		return domain.GeocodeResult{}, &domain.UpstreamError{
			Op:   "kakao " + step + " search",
			Kind: domain.UpstreamMalformed,
			Err:  fmt.Errorf("invalid coordinate format x=%q y=%q", doc.X, doc.Y),
		}
	}

	return domain.GeocodeResult{Coordinates: c, Label: label}, nil
}
