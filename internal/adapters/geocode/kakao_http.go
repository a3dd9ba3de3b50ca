package geocode

import (
	"appliance-intake-service/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Upper bound on how much of an error body is kept for diagnostics.
const maxErrorBody = 4 << 10

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (k *KakaoGeocoder) newRequest(
	ctx context.Context,
	endpoint string,
	query string,
) (*http.Request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// getJSON executes req once and decodes a 2xx body into out.
// Redirects the client did not follow count as status failures.
// Every failure is reported as a *domain.UpstreamError.
func (k *KakaoGeocoder) getJSON(req *http.Request, op string, out any) error {
	resp, err := k.session.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: op, Kind: domain.UpstreamTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.UpstreamError{
			Op:     op,
			Kind:   domain.UpstreamStatus,
			Status: resp.StatusCode,
			Err: &httpStatusError{
				Code: resp.StatusCode,
				Body: strings.TrimSpace(string(b)),
			},
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Op: op, Kind: domain.UpstreamNonJSON, Status: resp.StatusCode, Err: err}
	}

	return nil
}
